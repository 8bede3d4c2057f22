package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrNotEnoughPoints = errors.New("not enough points")
	ErrOwnerConflict   = errors.New("owner conflict")
	ErrOrderNotNew     = errors.New("order is not in NEW status")
)

// CouponRejectedError бизнес-отказ в применении купона при завершении заказа
// (использован, просрочен, не добрана минимальная сумма, чужой).
type CouponRejectedError struct {
	Code    string
	Message string
}

func NewCouponRejectedError(code, message string) error {
	return &CouponRejectedError{Code: code, Message: message}
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Message)
}

// PointsAlreadyAwardedError возвращается при попытке повторного начисления баллов
// за заказ, у которого уже выставлен флаг points_awarded.
type PointsAlreadyAwardedError struct {
	OrderID int64
}

func NewPointsAlreadyAwardedError(orderID int64) error {
	return &PointsAlreadyAwardedError{OrderID: orderID}
}

func (e *PointsAlreadyAwardedError) Error() string {
	return fmt.Sprintf("points for order with id %d already awarded", e.OrderID)
}
