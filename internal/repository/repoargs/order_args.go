package repoargs

import "github.com/shopspring/decimal"

type OrderCreate struct {
	UserID int64
	Items  []OrderItemCreate
}

type OrderItemCreate struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int64
	OnSale      bool
	CampaignID  *int64
}
