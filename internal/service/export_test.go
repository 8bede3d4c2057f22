package service

import "time"

// Тестовые шлюзы к неэкспортируемым полям: внешний пакет service_test
// не может обращаться к ним напрямую.

const WelcomeSignupWindow = welcomeSignupWindow

func SetCouponServiceNow(s *CouponService, f func() time.Time) { s.now = f }

func SetOrderServiceNow(s *OrderService, f func() time.Time) { s.now = f }

func SetPointsServiceNow(s *PointsService, f func() time.Time) { s.now = f }
