package api

import (
	"time"

	"github.com/fsdevblog/groph-shop/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup          = "/api"
	RegisterRoute       = "/user/register"
	LoginRoute          = "/user/login"
	OrdersRoute         = "/orders"
	OrderCompleteRoute  = "/orders/:id/complete"
	OrderCancelRoute    = "/orders/:id/cancel"
	ValidateCouponRoute = "/checkout/validate-coupon"
	ApplyPointsRoute    = "/checkout/apply-points"
	PointsBalanceRoute  = "/points/balance"
	PointsHistoryRoute  = "/points/history"
	CouponsRoute        = "/coupons"
	CouponsClaimRoute   = "/coupons/claim"
)

type RouterArgs struct {
	Logger        *logrus.Logger
	UserService   UserServicer
	OrderService  OrderServicer
	PointsService PointsServicer
	CouponService CouponServicer
	JWTSecretKey  []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	logger := args.Logger
	if logger == nil {
		logger = logrus.New()
	}

	authHandler := NewAuthHandler(args.UserService, args.CouponService, logger)
	ordersHandler := NewOrdersHandler(args.OrderService)
	checkoutHandler := NewCheckoutHandler(args.CouponService, args.PointsService)
	pointsHandler := NewPointsHandler(args.PointsService)
	couponsHandler := NewCouponsHandler(args.CouponService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.POST(OrderCompleteRoute, ordersHandler.Complete)
	api.POST(OrderCancelRoute, ordersHandler.Cancel)

	api.POST(ValidateCouponRoute, checkoutHandler.ValidateCoupon)
	api.POST(ApplyPointsRoute, checkoutHandler.ApplyPoints)

	api.GET(PointsBalanceRoute, pointsHandler.Balance)
	api.GET(PointsHistoryRoute, pointsHandler.History)

	api.GET(CouponsRoute, couponsHandler.Index)
	api.POST(CouponsClaimRoute, couponsHandler.Claim)
	return r
}
