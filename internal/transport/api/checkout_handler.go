package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutHandler чекаут-проверки купона и баллов. Все бизнес-отказы возвращаются
// со статусом 200: несработавший купон не транспортная ошибка, а нормальный исход.
type CheckoutHandler struct {
	coupons CouponServicer
	points  PointsServicer
}

func NewCheckoutHandler(coupons CouponServicer, points PointsServicer) *CheckoutHandler {
	return &CheckoutHandler{
		coupons: coupons,
		points:  points,
	}
}

type ValidateCouponParams struct {
	Code     string          `binding:"required,min=1,max=32" json:"code"`
	Subtotal decimal.Decimal `binding:"required"              json:"subtotal"`
}

type ValidateCouponResponse struct {
	Valid    bool            `json:"valid"`
	Message  string          `json:"message"`
	Coupon   *CouponResponse `json:"coupon,omitempty"`
	Discount float64         `json:"discount,omitempty"`
}

// ValidateCoupon POST RouteGroup + ValidateCouponRoute.
func (h *CheckoutHandler) ValidateCoupon(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params ValidateCouponParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	validation, err := h.coupons.Validate(reqCtx, currentUserID, params.Code, params.Subtotal)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	resp := ValidateCouponResponse{
		Valid:   validation.Valid,
		Message: validation.Message,
	}
	if validation.Valid {
		resp.Coupon = newCouponResponse(validation.Coupon)
		resp.Discount = validation.Discount.InexactFloat64()
	}
	c.JSON(http.StatusOK, &resp)
}

type ApplyPointsParams struct {
	PointsToUse int64 `binding:"required" json:"pointsToUse"`
	// OrderID принимается для совместимости с клиентом чекаута, проверка баллов
	// от заказа не зависит.
	OrderID int64 `json:"orderId"`
}

type ApplyPointsResponse struct {
	Success         bool   `json:"success"`
	ValidatedPoints int64  `json:"validatedPoints"`
	Message         string `json:"message"`
}

// ApplyPoints POST RouteGroup + ApplyPointsRoute. Только проверяет, что баллы можно
// списать. Само списание происходит при завершении заказа.
func (h *CheckoutHandler) ApplyPoints(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params ApplyPointsParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	validation, err := h.points.ValidateUse(reqCtx, currentUserID, params.PointsToUse)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	resp := ApplyPointsResponse{
		Success: validation.Valid,
		Message: validation.Message,
	}
	if validation.Valid {
		resp.ValidatedPoints = validation.Requested
	}
	c.JSON(http.StatusOK, &resp)
}
