package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type CouponCheck struct {
	Valid    bool
	Message  string
	Discount decimal.Decimal
}

// CheckCoupon проверяет применимость купона к корзине на момент now. Чистая функция,
// общая для чекаут-валидации и завершения заказа.
//
// Порядок проверок: использованность, срок действия, минимальная сумма покупки,
// принадлежность юзеру. Граница минимальной суммы включительная: subtotal ==
// minimumPurchase проходит.
func CheckCoupon(coupon *domain.Coupon, userID int64, subtotal decimal.Decimal, now time.Time) CouponCheck {
	switch {
	case coupon.IsUsed:
		return CouponCheck{Message: "coupon already used"}
	case coupon.ExpiresAt.Before(now):
		return CouponCheck{Message: "coupon expired"}
	case coupon.MinimumPurchase != nil && subtotal.LessThan(*coupon.MinimumPurchase):
		return CouponCheck{
			Message: fmt.Sprintf("minimum purchase of %s not met", coupon.MinimumPurchase.StringFixed(2)),
		}
	case coupon.UserID != userID:
		return CouponCheck{Message: "coupon belongs to another user"}
	}

	return CouponCheck{
		Valid:    true,
		Message:  "coupon is valid",
		Discount: couponDiscount(coupon, subtotal),
	}
}

// couponDiscount считает размер скидки. Фиксированная скидка не может превышать
// сумму корзины.
func couponDiscount(coupon *domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon.DiscountType == domain.DiscountPercentage {
		return subtotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).RoundDown(2)
	}
	if coupon.DiscountValue.GreaterThan(subtotal) {
		return subtotal
	}
	return coupon.DiscountValue
}
