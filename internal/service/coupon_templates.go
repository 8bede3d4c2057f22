package service

import (
	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/shopspring/decimal"
)

// CouponTemplate фиксированная конфигурация купона для конкретного жизненного триггера.
type CouponTemplate struct {
	Key             domain.CouponTemplateKey
	CodePrefix      string
	Description     string
	DiscountType    domain.DiscountType
	DiscountValue   decimal.Decimal
	MinimumPurchase *decimal.Decimal
	ExpireMonths    int
}

func mustMinPurchase(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// couponTemplates таблица шаблонов. Только чтение, никакой мутации в рантайме.
var couponTemplates = map[domain.CouponTemplateKey]CouponTemplate{
	domain.CouponTemplateWelcome: {
		Key:             domain.CouponTemplateWelcome,
		CodePrefix:      "WELCOME-",
		Description:     "Скидка 10% для новых покупателей",
		DiscountType:    domain.DiscountPercentage,
		DiscountValue:   decimal.NewFromInt(10),
		MinimumPurchase: mustMinPurchase(2000),
		ExpireMonths:    1,
	},
	domain.CouponTemplateFirstOrder: {
		Key:             domain.CouponTemplateFirstOrder,
		CodePrefix:      "FIRST-",
		Description:     "1000 за первый заказ",
		DiscountType:    domain.DiscountFixed,
		DiscountValue:   decimal.NewFromInt(1000),
		MinimumPurchase: mustMinPurchase(5000),
		ExpireMonths:    2,
	},
	domain.CouponTemplateReactivation: {
		Key:             domain.CouponTemplateReactivation,
		CodePrefix:      "COMEBACK-",
		Description:     "Скидка 20% — мы скучали",
		DiscountType:    domain.DiscountPercentage,
		DiscountValue:   decimal.NewFromInt(20),
		MinimumPurchase: mustMinPurchase(3000),
		ExpireMonths:    1,
	},
	domain.CouponTemplateBirthday: {
		Key:           domain.CouponTemplateBirthday,
		CodePrefix:    "BDAY-",
		Description:   "Скидка 15% в честь дня рождения",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(15),
		ExpireMonths:  1,
	},
	domain.CouponTemplateLaunch: {
		Key:             domain.CouponTemplateLaunch,
		CodePrefix:      "LAUNCH-",
		Description:     "Скидка 15% в честь запуска магазина",
		DiscountType:    domain.DiscountPercentage,
		DiscountValue:   decimal.NewFromInt(15),
		MinimumPurchase: mustMinPurchase(3000),
		ExpireMonths:    1,
	},
}

// CouponTemplateByKey возвращает шаблон по ключу. Второе значение false, если
// шаблон не известен.
func CouponTemplateByKey(key domain.CouponTemplateKey) (CouponTemplate, bool) {
	t, ok := couponTemplates[key]
	return t, ok
}
