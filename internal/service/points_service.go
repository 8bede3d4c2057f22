package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// PointsExpirePeriod срок жизни начисленных баллов. Отсчитывается от момента
// начисления, а не от даты заказа.
const PointsExpirePeriod = 365 * 24 * time.Hour

type PointsService struct {
	uow       uow.UOW
	pointRepo PointEntryRepository
	now       func() time.Time
}

func NewPointsService(u uow.UOW) (*PointsService, error) {
	rName := uow.RepositoryName(repoargs.PointEntryRepoName)
	pointRepo, pointRepoErr := uow.GetRepositoryAs[PointEntryRepository](u, rName)
	if pointRepoErr != nil {
		return nil, pointRepoErr
	}
	return &PointsService{
		uow:       u,
		pointRepo: pointRepo,
		now:       time.Now,
	}, nil
}

type AwardResult struct {
	Entry       *domain.PointEntry
	Calculation PointsCalculation
}

// Award начисляет баллы за завершенный заказ: считает их калькулятором, пишет строку
// леджера, выставляет у заказа флаг points_awarded и создает уведомление. Все четыре
// шага выполняются в одной транзакции.
//
// Повторное начисление блокируется по флагу points_awarded: если он уже выставлен,
// возвращается PointsAlreadyAwardedError без обращения к базе.
func (s *PointsService) Award(ctx context.Context, order domain.Order) (*AwardResult, error) {
	if order.PointsAwarded {
		return nil, domain.NewPointsAlreadyAwardedError(order.ID)
	}

	calc := CalculateOrderPoints(order.Items)
	expiresAt := s.now().Add(PointsExpirePeriod)

	var entry *domain.PointEntry
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		pointRepo, pointRepoErr := uow.GetAs[PointEntryRepository](tx, uow.RepositoryName(repoargs.PointEntryRepoName))
		if pointRepoErr != nil {
			return pointRepoErr //nolint:wrapcheck
		}
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		notificationRepo, nRepoErr :=
			uow.GetAs[NotificationRepository](tx, uow.RepositoryName(repoargs.NotificationRepoName))
		if nRepoErr != nil {
			return nRepoErr //nolint:wrapcheck
		}

		var entryErr error
		entry, entryErr = pointRepo.Create(c, repoargs.PointEntryCreate{
			UserID:    order.UserID,
			OrderID:   &order.ID,
			Amount:    calc.TotalPoints,
			Reason:    fmt.Sprintf("order #%d completed", order.ID),
			ExpiresAt: expiresAt,
		})
		if entryErr != nil {
			return entryErr //nolint:wrapcheck
		}

		if flagErr := orderRepo.SetPointsAwarded(c, order.ID); flagErr != nil {
			return flagErr //nolint:wrapcheck
		}

		subject, body := pointsAwardedNotification(calc, expiresAt)
		if _, notifyErr := notificationRepo.Create(c, repoargs.NotificationCreate{
			UserID:  order.UserID,
			Kind:    domain.NotificationKindPointsAwarded,
			Subject: subject,
			Body:    body,
		}); notifyErr != nil {
			return notifyErr //nolint:wrapcheck
		}
		return nil
	})

	if txErr != nil {
		return nil, fmt.Errorf("awarding points for order %d: %w", order.ID, txErr)
	}
	return &AwardResult{Entry: entry, Calculation: calc}, nil
}

type CancelResult struct {
	Entries []domain.PointEntry
	Message string
}

// Cancel отменяет начисления за заказ. Для каждой положительной записи леджера
// создается новая запись с той же датой сгорания и отрицательной суммой. Если
// начислений не было, возвращается успешный no-op результат с пояснением.
//
// Леджер не следит за тем, чтобы итоговый баланс юзера оставался неотрицательным:
// отмены могут превысить начисления, это осознанно разрешенное поведение.
func (s *PointsService) Cancel(ctx context.Context, orderID int64, reason string) (*CancelResult, error) {
	var result CancelResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		pointRepo, pointRepoErr := uow.GetAs[PointEntryRepository](tx, uow.RepositoryName(repoargs.PointEntryRepoName))
		if pointRepoErr != nil {
			return pointRepoErr //nolint:wrapcheck
		}

		earned, earnedErr := pointRepo.GetPositiveByOrderID(c, orderID)
		if earnedErr != nil {
			return earnedErr //nolint:wrapcheck
		}
		if len(earned) == 0 {
			result.Message = fmt.Sprintf("no points awarded for order %d, nothing to cancel", orderID)
			return nil
		}

		var canceledTotal int64
		for _, e := range earned {
			entry, entryErr := pointRepo.Create(c, repoargs.PointEntryCreate{
				UserID:    e.UserID,
				OrderID:   e.OrderID,
				Amount:    -e.Amount,
				Reason:    reason,
				ExpiresAt: e.ExpiresAt,
			})
			if entryErr != nil {
				return entryErr //nolint:wrapcheck
			}
			result.Entries = append(result.Entries, *entry)
			canceledTotal += e.Amount
		}

		notificationRepo, nRepoErr :=
			uow.GetAs[NotificationRepository](tx, uow.RepositoryName(repoargs.NotificationRepoName))
		if nRepoErr != nil {
			return nRepoErr //nolint:wrapcheck
		}
		subject, body := pointsCanceledNotification(canceledTotal, reason)
		if _, notifyErr := notificationRepo.Create(c, repoargs.NotificationCreate{
			UserID:  earned[0].UserID,
			Kind:    domain.NotificationKindPointsCanceled,
			Subject: subject,
			Body:    body,
		}); notifyErr != nil {
			return notifyErr //nolint:wrapcheck
		}
		return nil
	})

	if txErr != nil {
		return nil, fmt.Errorf("cancelling points for order %d: %w", orderID, txErr)
	}
	return &result, nil
}

// Balance возвращает сумму несгоревших баллов юзера.
func (s *PointsService) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.pointRepo.SumActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return balance, nil
}

// History возвращает леджер юзера по убыванию даты создания.
func (s *PointsService) History(ctx context.Context, userID int64) ([]domain.PointEntry, error) {
	entries, err := s.pointRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return entries, nil
}

type PointsValidation struct {
	Valid     bool
	Message   string
	Available int64
	Requested int64
}

// ValidateUse проверяет, что юзер может списать amount баллов. Только проверка,
// списания не происходит: оно выполняется при завершении заказа под блокировкой.
func (s *PointsService) ValidateUse(ctx context.Context, userID int64, amount int64) (*PointsValidation, error) {
	available, err := s.pointRepo.SumActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	validation := &PointsValidation{Available: available, Requested: amount}
	switch {
	case amount <= 0:
		validation.Message = "points amount must be positive"
	case amount > available:
		validation.Message = fmt.Sprintf("not enough points: requested %d, available %d", amount, available)
	default:
		validation.Valid = true
		validation.Message = fmt.Sprintf("%d points can be used", amount)
	}
	return validation, nil
}

func pointsAwardedNotification(calc PointsCalculation, expiresAt time.Time) (subject, body string) {
	subject = "Баллы за заказ начислены"
	body = fmt.Sprintf(
		"Здравствуйте!\n\nВам начислено %d баллов за заказ (база: %d, бонус: %d).\n"+
			"Баллы действительны до %s.\n\nСпасибо за покупку!",
		calc.TotalPoints, calc.BasePoints, calc.BonusPoints, expiresAt.Format("02.01.2006"),
	)
	return subject, body
}

func pointsCanceledNotification(total int64, reason string) (subject, body string) {
	subject = "Баллы за заказ отменены"
	body = fmt.Sprintf(
		"Здравствуйте!\n\nНачисление %d баллов отменено. Причина: %s.",
		total, reason,
	)
	return subject, body
}
