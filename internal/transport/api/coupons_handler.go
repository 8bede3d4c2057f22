package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CouponsHandler struct {
	coupons CouponServicer
}

func NewCouponsHandler(coupons CouponServicer) *CouponsHandler {
	return &CouponsHandler{
		coupons: coupons,
	}
}

// Index GET RouteGroup + CouponsRoute.
func (h *CouponsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	coupons, err := h.coupons.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(coupons) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]*CouponResponse, len(coupons))
	for i := range coupons {
		response[i] = newCouponResponse(&coupons[i])
	}
	c.JSON(http.StatusOK, response)
}

type CouponClaimResponse struct {
	CouponIssued bool            `json:"couponIssued"`
	Coupon       *CouponResponse `json:"coupon,omitempty"`
	Message      string          `json:"message"`
}

// Claim POST RouteGroup + CouponsClaimRoute. Оценивает купонные триггеры по запросу
// юзера (витрина дергает эндпоинт при заходе в личный кабинет).
func (h *CouponsHandler) Claim(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.coupons.EvaluateTriggers(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	resp := CouponClaimResponse{
		CouponIssued: result.CouponIssued,
		Message:      result.Message,
	}
	if result.CouponIssued {
		resp.Coupon = newCouponResponse(result.Coupon)
	}
	c.JSON(http.StatusOK, &resp)
}
