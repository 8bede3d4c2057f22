package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderItemParams struct {
	ProductName string          `binding:"required,min=1,max=255" json:"productName"`
	UnitPrice   decimal.Decimal `binding:"required"               json:"unitPrice"`
	Quantity    int64           `binding:"required,min=1"         json:"quantity"`
	OnSale      bool            `json:"onSale"`
	CampaignID  *int64          `json:"campaignId"`
}

type OrderCreateParams struct {
	Items []OrderItemParams `binding:"required,min=1,dive" json:"items"`
}

// Create POST RouteGroup + OrdersRoute.
func (o *OrdersHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	items := make([]repoargs.OrderItemCreate, len(params.Items))
	for i, item := range params.Items {
		items[i] = repoargs.OrderItemCreate{
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			OnSale:      item.OnSale,
			CampaignID:  item.CampaignID,
		}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, currentUserID, items)
	if createErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, createErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Index GET RouteGroup + OrdersRoute.
func (o *OrdersHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()
	orders, err := o.orderSvs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]*OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, response)
}

type OrderCompleteParams struct {
	CouponCode  string `binding:"omitempty,max=32" json:"couponCode"`
	PointsToUse int64  `binding:"omitempty,min=1"  json:"pointsToUse"`
}

type PointsAwardedResponse struct {
	BasePoints  int64 `json:"basePoints"`
	BonusPoints int64 `json:"bonusPoints"`
	TotalPoints int64 `json:"totalPoints"`
}

type OrderCompleteResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message,omitempty"`
	Order          *OrderResponse         `json:"order,omitempty"`
	Points         *PointsAwardedResponse `json:"points,omitempty"`
	Coupon         *CouponResponse        `json:"coupon,omitempty"`
	Discount       float64                `json:"discount,omitempty"`
	PointsRedeemed int64                  `json:"pointsRedeemed,omitempty"`
}

// Complete POST RouteGroup + OrdersRoute + /:id/complete. Завершает заказ, применяет
// купон и списывает баллы. Бизнес-отказы (купон не прошел проверку, не хватает баллов)
// возвращаются со статусом 200 и success=false.
func (o *OrdersHandler) Complete(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	orderID, idErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if idErr != nil {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	var params OrderCompleteParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil && !errors.Is(bindErr, io.EOF) {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, completeErr := o.orderSvs.Complete(reqCtx, currentUserID, orderID, service.CompleteOrderArgs{
		CouponCode:  params.CouponCode,
		PointsToUse: params.PointsToUse,
	})
	if completeErr != nil {
		o.abortCompleteErr(c, completeErr)
		return
	}

	resp := OrderCompleteResponse{
		Success:        true,
		Order:          newOrderResponse(result.Order),
		Discount:       result.Discount.InexactFloat64(),
		PointsRedeemed: result.PointsRedeemed,
	}
	if result.Points != nil {
		resp.Points = &PointsAwardedResponse{
			BasePoints:  result.Points.Calculation.BasePoints,
			BonusPoints: result.Points.Calculation.BonusPoints,
			TotalPoints: result.Points.Calculation.TotalPoints,
		}
	}
	if result.Coupon != nil && result.Coupon.CouponIssued {
		resp.Coupon = newCouponResponse(result.Coupon.Coupon)
	}
	c.JSON(http.StatusOK, &resp)
}

func (o *OrdersHandler) abortCompleteErr(c *gin.Context, err error) {
	var couponRejected *domain.CouponRejectedError

	switch {
	case errors.As(err, &couponRejected):
		c.JSON(http.StatusOK, &OrderCompleteResponse{Success: false, Message: couponRejected.Message})
	case errors.Is(err, domain.ErrNotEnoughPoints):
		c.JSON(http.StatusOK, &OrderCompleteResponse{Success: false, Message: "not enough points"})
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrOwnerConflict):
		c.AbortWithStatus(http.StatusForbidden)
	case errors.Is(err, domain.ErrOrderNotNew):
		c.AbortWithStatus(http.StatusConflict)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

type OrderCancelResponse struct {
	Success bool           `json:"success"`
	Order   *OrderResponse `json:"order,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Cancel POST RouteGroup + OrdersRoute + /:id/cancel.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	orderID, idErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if idErr != nil {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, cancelErr := o.orderSvs.Cancel(reqCtx, currentUserID, orderID)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(cancelErr, domain.ErrOwnerConflict):
			c.AbortWithStatus(http.StatusForbidden)
		case errors.Is(cancelErr, domain.ErrOrderNotNew):
			c.AbortWithStatus(http.StatusConflict)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, cancelErr).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	resp := OrderCancelResponse{Success: true, Order: newOrderResponse(result.Order)}
	if result.Points != nil && result.Points.Message != "" {
		resp.Message = result.Points.Message
	}
	c.JSON(http.StatusOK, &resp)
}
