package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/logger"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	loyalty   LoyaltyServicer
	coupons   CouponIssuer
	l         *logrus.Entry
	now       func() time.Time
}

func NewOrderService(
	u uow.UOW,
	loyalty LoyaltyServicer,
	coupons CouponIssuer,
	l *logrus.Logger,
) (*OrderService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		loyalty:   loyalty,
		coupons:   coupons,
		l:         logger.WithComponent(l, "order_service"),
		now:       time.Now,
	}, nil
}

// Create создает заказ со статусом NEW вместе с позициями.
func (s *OrderService) Create(
	ctx context.Context,
	userID int64,
	items []repoargs.OrderItemCreate,
) (*domain.Order, error) {
	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.OrderCreate{UserID: userID, Items: items})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера по убыванию даты создания.
func (s *OrderService) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

type CompleteOrderArgs struct {
	CouponCode  string
	PointsToUse int64
}

type CompleteOrderResult struct {
	Order          *domain.Order
	Points         *AwardResult
	Coupon         *IssueResult
	CouponUsed     *domain.Coupon
	PointsRedeemed int64
	Discount       decimal.Decimal
}

// Complete завершает заказ. В одной транзакции: проверка владельца и статуса,
// применение купона (повторная проверка правил и установка is_used), списание баллов
// под advisory lock'ом юзера и перевод заказа в COMPLETED.
//
// После коммита выполняется бухгалтерия лояльности: начисление баллов (если флаг
// points_awarded еще не выставлен) и оценка купонных триггеров. Её ошибки заказ
// не откатывают: они логируются, а соответствующие поля результата остаются
// пустыми. Это осознанное поведение, деградируем молча.
func (s *OrderService) Complete(
	ctx context.Context,
	userID int64,
	orderID int64,
	args CompleteOrderArgs,
) (*CompleteOrderResult, error) {
	var result CompleteOrderResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		order, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if order.UserID != userID {
			return domain.ErrOwnerConflict
		}
		if order.Status != domain.OrderStatusNew {
			return domain.ErrOrderNotNew
		}

		if args.CouponCode != "" {
			if couponErr := s.applyCoupon(c, tx, order, args.CouponCode, &result); couponErr != nil {
				return couponErr
			}
		}

		if args.PointsToUse > 0 {
			if redeemErr := s.redeemPoints(c, tx, order, args.PointsToUse); redeemErr != nil {
				return redeemErr
			}
			result.PointsRedeemed = args.PointsToUse
		}

		updated, updateErr := orderRepo.UpdateStatus(c, order.ID, domain.OrderStatusCompleted)
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}
		updated.Items = order.Items
		result.Order = updated
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("completing order %d: %w", orderID, txErr)
	}

	s.runLoyaltyBookkeeping(ctx, &result)
	return &result, nil
}

// applyCoupon повторно прогоняет правила купона на момент завершения заказа и
// выставляет is_used. Скидка считается от суммы позиций заказа.
func (s *OrderService) applyCoupon(
	ctx context.Context,
	tx uow.TX,
	order *domain.Order,
	code string,
	result *CompleteOrderResult,
) error {
	couponRepo, couponRepoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(repoargs.CouponRepoName))
	if couponRepoErr != nil {
		return couponRepoErr //nolint:wrapcheck
	}

	coupon, findErr := couponRepo.FindByCode(ctx, code)
	if findErr != nil {
		// несуществующий код считается таким же бизнес-отказом, как просроченный
		// или чужой купон, а не отсутствием заказа
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			return domain.NewCouponRejectedError(code, "invalid coupon code")
		}
		return findErr //nolint:wrapcheck
	}

	check := CheckCoupon(coupon, order.UserID, order.Subtotal(), s.now())
	if !check.Valid {
		return domain.NewCouponRejectedError(code, check.Message)
	}

	used, usedErr := couponRepo.MarkUsed(ctx, coupon.ID)
	if usedErr != nil {
		return usedErr //nolint:wrapcheck
	}
	result.CouponUsed = used
	result.Discount = check.Discount
	return nil
}

// redeemPoints списывает баллы при завершении заказа. Проверка баланса и запись
// списания идут под pg_advisory_xact_lock юзера, гонка проверка-потом-списание
// между параллельными чекаутами исключена.
func (s *OrderService) redeemPoints(ctx context.Context, tx uow.TX, order *domain.Order, amount int64) error {
	pointRepo, pointRepoErr := uow.GetAs[PointEntryRepository](tx, uow.RepositoryName(repoargs.PointEntryRepoName))
	if pointRepoErr != nil {
		return pointRepoErr //nolint:wrapcheck
	}

	if lockErr := pointRepo.LockUser(ctx, order.UserID); lockErr != nil {
		return lockErr //nolint:wrapcheck
	}

	now := s.now()
	available, sumErr := pointRepo.SumActiveByUserID(ctx, order.UserID, now)
	if sumErr != nil {
		return sumErr //nolint:wrapcheck
	}
	if amount > available {
		return domain.ErrNotEnoughPoints
	}

	if _, createErr := pointRepo.Create(ctx, repoargs.PointEntryCreate{
		UserID:    order.UserID,
		OrderID:   &order.ID,
		Amount:    -amount,
		Reason:    fmt.Sprintf("points redeemed at checkout of order #%d", order.ID),
		ExpiresAt: now.Add(PointsExpirePeriod),
	}); createErr != nil {
		return createErr //nolint:wrapcheck
	}
	return nil
}

func (s *OrderService) runLoyaltyBookkeeping(ctx context.Context, result *CompleteOrderResult) {
	order := result.Order

	if !order.PointsAwarded {
		award, awardErr := s.loyalty.Award(ctx, *order)
		if awardErr != nil {
			s.l.WithError(awardErr).WithField("orderID", order.ID).Error("award points")
		} else {
			result.Points = award
			order.PointsAwarded = true
		}
	}

	issue, issueErr := s.coupons.EvaluateTriggers(ctx, order.UserID)
	if issueErr != nil {
		s.l.WithError(issueErr).WithField("userID", order.UserID).Error("evaluate coupon triggers")
	} else {
		result.Coupon = issue
	}
}

type CancelOrderResult struct {
	Order  *domain.Order
	Points *CancelResult
}

// Cancel переводит заказ в CANCELED и отменяет начисленные за него баллы.
// Ошибка отмены баллов, как и при завершении, заказ не откатывает.
func (s *OrderService) Cancel(ctx context.Context, userID int64, orderID int64) (*CancelOrderResult, error) {
	var result CancelOrderResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		order, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if order.UserID != userID {
			return domain.ErrOwnerConflict
		}
		if order.Status == domain.OrderStatusCanceled {
			return domain.ErrOrderNotNew
		}

		updated, updateErr := orderRepo.UpdateStatus(c, order.ID, domain.OrderStatusCanceled)
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}
		updated.Items = order.Items
		result.Order = updated
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling order %d: %w", orderID, txErr)
	}

	if result.Order.PointsAwarded {
		points, cancelErr := s.loyalty.Cancel(ctx, orderID, fmt.Sprintf("order #%d canceled", orderID))
		if cancelErr != nil {
			s.l.WithError(cancelErr).WithField("orderID", orderID).Error("cancel points")
		} else {
			result.Points = points
		}
	}
	return &result, nil
}
