package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type OrderServicer interface {
	Create(ctx context.Context, userID int64, items []repoargs.OrderItemCreate) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	Complete(
		ctx context.Context,
		userID int64,
		orderID int64,
		args service.CompleteOrderArgs,
	) (*service.CompleteOrderResult, error)
	Cancel(ctx context.Context, userID int64, orderID int64) (*service.CancelOrderResult, error)
}

type PointsServicer interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64) ([]domain.PointEntry, error)
	ValidateUse(ctx context.Context, userID int64, amount int64) (*service.PointsValidation, error)
}

type CouponServicer interface {
	Validate(
		ctx context.Context,
		userID int64,
		code string,
		subtotal decimal.Decimal,
	) (*service.CouponValidation, error)
	EvaluateTriggers(ctx context.Context, userID int64) (*service.IssueResult, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Coupon, error)
}
