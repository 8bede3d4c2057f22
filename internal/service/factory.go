package service

import (
	"fmt"

	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService         *UserService
	OrderService        *OrderService
	PointsService       *PointsService
	CouponService       *CouponService
	NotificationService *NotificationService
}

type FactoryArgs struct {
	UOW                uow.UOW
	JWTSecret          []byte
	LaunchPromoEnabled bool
	Logger             *logrus.Logger
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UOW, args.JWTSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	pointsService, pointsServiceErr := NewPointsService(args.UOW)
	if pointsServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", pointsServiceErr.Error())
	}

	couponService, couponServiceErr := NewCouponService(args.UOW, args.LaunchPromoEnabled)
	if couponServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", couponServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(args.UOW, pointsService, couponService, args.Logger)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	notificationService, notificationServiceErr := NewNotificationService(args.UOW)
	if notificationServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", notificationServiceErr.Error())
	}

	return &AppServices{
		UserService:         userService,
		OrderService:        orderService,
		PointsService:       pointsService,
		CouponService:       couponService,
		NotificationService: notificationService,
	}, nil
}
