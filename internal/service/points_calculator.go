package service

import (
	"strings"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	pointsBaseDivisor   = decimal.NewFromInt(100) // 1% от суммы позиции
	campaignBonusFactor = decimal.NewFromFloat(0.05)
)

type PointsCalculation struct {
	BasePoints  int64
	BonusPoints int64
	TotalPoints int64
	Breakdown   []PointsBreakdownItem
}

type PointsBreakdownItem struct {
	ProductName string
	BasePoints  int64
	BonusPoints int64
	Reason      string
}

// CalculateOrderPoints считает баллы лояльности по позициям заказа. Функция чистая,
// никаких обращений к базе.
//
// Правила:
//   - база: 1% от суммы позиции (цена × количество), дробная часть отбрасывается;
//   - позиция по распродаже (on_sale): бонус равен базе, т.е. баллы удваиваются;
//   - позиция из кампании (campaign_id): дополнительно 5% от суммы позиции,
//     бонусы складываются независимо друг от друга.
//
// Для заказа без позиций возвращается нулевой результат.
func CalculateOrderPoints(items []domain.OrderItem) PointsCalculation {
	var calc PointsCalculation
	calc.Breakdown = make([]PointsBreakdownItem, 0, len(items))

	for _, item := range items {
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		base := subtotal.Div(pointsBaseDivisor).Floor().IntPart()

		var bonus int64
		var reasons []string
		if item.OnSale {
			bonus += base
			reasons = append(reasons, "sale item: base points doubled")
		}
		if item.CampaignID != nil {
			bonus += subtotal.Mul(campaignBonusFactor).Floor().IntPart()
			reasons = append(reasons, "campaign bonus 5%")
		}

		calc.BasePoints += base
		calc.BonusPoints += bonus
		calc.Breakdown = append(calc.Breakdown, PointsBreakdownItem{
			ProductName: item.ProductName,
			BasePoints:  base,
			BonusPoints: bonus,
			Reason:      strings.Join(reasons, ", "),
		})
	}

	calc.TotalPoints = calc.BasePoints + calc.BonusPoints
	return calc
}
