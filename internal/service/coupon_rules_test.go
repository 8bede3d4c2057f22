package service

import (
	"testing"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CouponRulesTestSuite struct {
	suite.Suite
	now time.Time
}

func TestCouponRulesSuite(t *testing.T) {
	suite.Run(t, new(CouponRulesTestSuite))
}

func (s *CouponRulesTestSuite) SetupTest() {
	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func (s *CouponRulesTestSuite) validCoupon() *domain.Coupon {
	minPurchase := decimal.NewFromInt(5000)
	return &domain.Coupon{
		ID:              1,
		UserID:          123,
		Code:            "FIRST-ABCD2345",
		TemplateKey:     domain.CouponTemplateFirstOrder,
		DiscountType:    domain.DiscountFixed,
		DiscountValue:   decimal.NewFromInt(1000),
		MinimumPurchase: &minPurchase,
		ExpiresAt:       s.now.Add(24 * time.Hour),
	}
}

func (s *CouponRulesTestSuite) TestCheckCoupon() {
	cases := []struct {
		name        string
		mutate      func(c *domain.Coupon)
		userID      int64
		subtotal    decimal.Decimal
		wantValid   bool
		wantMessage string
	}{
		{
			name:      "valid",
			mutate:    func(*domain.Coupon) {},
			userID:    123,
			subtotal:  decimal.NewFromInt(6000),
			wantValid: true,
		}, {
			name:        "already used",
			mutate:      func(c *domain.Coupon) { c.IsUsed = true },
			userID:      123,
			subtotal:    decimal.NewFromInt(6000),
			wantMessage: "coupon already used",
		}, {
			name:        "expired",
			mutate:      func(c *domain.Coupon) { c.ExpiresAt = s.now.Add(-time.Minute) },
			userID:      123,
			subtotal:    decimal.NewFromInt(6000),
			wantMessage: "coupon expired",
		}, {
			name:        "below minimum purchase",
			mutate:      func(*domain.Coupon) {},
			userID:      123,
			subtotal:    decimal.NewFromInt(4999),
			wantMessage: "minimum purchase of 5000.00 not met",
		}, {
			name:      "subtotal equal to minimum passes",
			mutate:    func(*domain.Coupon) {},
			userID:    123,
			subtotal:  decimal.NewFromInt(5000),
			wantValid: true,
		}, {
			name:        "foreign coupon",
			mutate:      func(*domain.Coupon) {},
			userID:      777,
			subtotal:    decimal.NewFromInt(6000),
			wantMessage: "coupon belongs to another user",
		}, {
			// использованность проверяется раньше принадлежности.
			name: "used check wins over owner check",
			mutate: func(c *domain.Coupon) {
				c.IsUsed = true
			},
			userID:      777,
			subtotal:    decimal.NewFromInt(6000),
			wantMessage: "coupon already used",
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			coupon := s.validCoupon()
			t.mutate(coupon)

			check := CheckCoupon(coupon, t.userID, t.subtotal, s.now)

			s.Equal(t.wantValid, check.Valid)
			if t.wantMessage != "" {
				s.Equal(t.wantMessage, check.Message)
			}
		})
	}
}

func (s *CouponRulesTestSuite) TestDiscountPercentage() {
	coupon := s.validCoupon()
	coupon.DiscountType = domain.DiscountPercentage
	coupon.DiscountValue = decimal.NewFromInt(10)

	check := CheckCoupon(coupon, 123, decimal.NewFromInt(5500), s.now)

	s.Require().True(check.Valid)
	s.True(check.Discount.Equal(decimal.NewFromInt(550)), "got %s", check.Discount)
}

func (s *CouponRulesTestSuite) TestDiscountPercentageRoundsDown() {
	coupon := s.validCoupon()
	coupon.DiscountType = domain.DiscountPercentage
	coupon.DiscountValue = decimal.NewFromInt(15)

	check := CheckCoupon(coupon, 123, decimal.NewFromFloat(5000.33), s.now)

	s.Require().True(check.Valid)
	// 15% от 5000.33 это 750.0495, округляем вниз до копеек.
	s.True(check.Discount.Equal(decimal.NewFromFloat(750.04)), "got %s", check.Discount)
}

func (s *CouponRulesTestSuite) TestFixedDiscountCappedBySubtotal() {
	coupon := s.validCoupon()
	coupon.MinimumPurchase = nil
	coupon.DiscountValue = decimal.NewFromInt(1000)

	check := CheckCoupon(coupon, 123, decimal.NewFromInt(600), s.now)

	s.Require().True(check.Valid)
	s.True(check.Discount.Equal(decimal.NewFromInt(600)), "got %s", check.Discount)
}

func (s *CouponRulesTestSuite) TestExpiredCouponNeverApplies() {
	// просроченный купон не проходит даже при идеальной корзине.
	coupon := s.validCoupon()
	coupon.ExpiresAt = s.now.Add(-365 * 24 * time.Hour)

	for _, subtotal := range []int64{100, 5000, 1000000} {
		check := CheckCoupon(coupon, 123, decimal.NewFromInt(subtotal), s.now)
		s.False(check.Valid)
		s.Equal("coupon expired", check.Message)
	}
}
