package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Email          string
	Name           string
	PasswordDigest string
	// Birthdate опционален, нужен только для триггера купона ко дню рождения.
	Birthdate *time.Time
}

type Order struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        int64
	Status        OrderStatusType
	PointsAwarded bool
	Items         []OrderItem
}

// Subtotal возвращает сумму всех позиций заказа (цена × количество).
func (o *Order) Subtotal() decimal.Decimal {
	var sum decimal.Decimal
	for _, item := range o.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return sum
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int64
	OnSale      bool
	CampaignID  *int64
}

// PointEntry строка леджера баллов лояльности. Записи не изменяются и не удаляются,
// отмена и списание оформляются новыми записями с отрицательной суммой.
type PointEntry struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	OrderID   *int64
	Amount    int64
	Reason    string
	ExpiresAt time.Time
}

type Coupon struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	Code            string
	TemplateKey     CouponTemplateKey
	Description     string
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	MinimumPurchase *decimal.Decimal
	ExpiresAt       time.Time
	IsUsed          bool
}

type Notification struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    int64
	Kind      NotificationKind
	Subject   string
	Body      string
	HTMLBody  string
	Status    NotificationStatus
	Error     string
	SentAt    *time.Time
}
