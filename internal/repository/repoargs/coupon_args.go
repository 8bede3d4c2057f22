package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type CouponCreate struct {
	UserID          int64
	Code            string
	TemplateKey     domain.CouponTemplateKey
	Description     string
	DiscountType    domain.DiscountType
	DiscountValue   decimal.Decimal
	MinimumPurchase *decimal.Decimal
	ExpiresAt       time.Time
}
