package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) (*domain.Order, error)
	SetPointsAwarded(ctx context.Context, id int64) error
	CountByUserIDAndStatus(ctx context.Context, userID int64, status domain.OrderStatusType) (int64, error)
	LastOrderAt(ctx context.Context, userID int64) (*time.Time, error)
}

type PointEntryRepository interface {
	Create(ctx context.Context, args repoargs.PointEntryCreate) (*domain.PointEntry, error)
	GetPositiveByOrderID(ctx context.Context, orderID int64) ([]domain.PointEntry, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.PointEntry, error)
	SumActiveByUserID(ctx context.Context, userID int64, now time.Time) (int64, error)
	LockUser(ctx context.Context, userID int64) error
}

type CouponRepository interface {
	Create(ctx context.Context, args repoargs.CouponCreate) (*domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Coupon, error)
	MarkUsed(ctx context.Context, id int64) (*domain.Coupon, error)
	ExistsByTemplate(
		ctx context.Context,
		userID int64,
		key domain.CouponTemplateKey,
		issuedAfter *time.Time,
	) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, args repoargs.NotificationCreate) (*domain.Notification, error)
	GetPending(ctx context.Context, limit uint) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// LoyaltyServicer и CouponIssuer нужны сервису заказов: после завершения или отмены
// заказа он дергает бухгалтерию лояльности, не зная деталей её реализации.
type LoyaltyServicer interface {
	Award(ctx context.Context, order domain.Order) (*AwardResult, error)
	Cancel(ctx context.Context, orderID int64, reason string) (*CancelResult, error)
}

type CouponIssuer interface {
	EvaluateTriggers(ctx context.Context, userID int64) (*IssueResult, error)
}
