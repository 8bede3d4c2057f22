package api

import (
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

type CouponResponse struct {
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountType    string    `json:"discountType"`
	DiscountValue   float64   `json:"discountValue"`
	MinimumPurchase *float64  `json:"minimumPurchase,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
	IsUsed          bool      `json:"isUsed"`
}

func newCouponResponse(coupon *domain.Coupon) *CouponResponse {
	if coupon == nil {
		return nil
	}
	resp := &CouponResponse{
		Code:          coupon.Code,
		Description:   coupon.Description,
		DiscountType:  string(coupon.DiscountType),
		DiscountValue: coupon.DiscountValue.InexactFloat64(),
		ExpiresAt:     coupon.ExpiresAt,
		IsUsed:        coupon.IsUsed,
	}
	if coupon.MinimumPurchase != nil {
		minPurchase := coupon.MinimumPurchase.InexactFloat64()
		resp.MinimumPurchase = &minPurchase
	}
	return resp
}

type OrderItemResponse struct {
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int64   `json:"quantity"`
	OnSale      bool    `json:"onSale"`
	CampaignID  *int64  `json:"campaignId,omitempty"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	CreatedAt     time.Time           `json:"createdAt"`
	Status        string              `json:"status"`
	PointsAwarded bool                `json:"pointsAwarded"`
	Subtotal      float64             `json:"subtotal"`
	Items         []OrderItemResponse `json:"items"`
}

func newOrderResponse(order *domain.Order) *OrderResponse {
	if order == nil {
		return nil
	}
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Quantity:    item.Quantity,
			OnSale:      item.OnSale,
			CampaignID:  item.CampaignID,
		}
	}
	return &OrderResponse{
		ID:            order.ID,
		CreatedAt:     order.CreatedAt,
		Status:        string(order.Status),
		PointsAwarded: order.PointsAwarded,
		Subtotal:      order.Subtotal().InexactFloat64(),
		Items:         items,
	}
}
