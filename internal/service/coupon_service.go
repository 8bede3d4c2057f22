package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/mailer"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/shopspring/decimal"
)

const (
	// welcomeSignupWindow окно выдачи приветственного купона. Сравнение строгое:
	// юзер зарегистрированный ровно 7 суток назад купон уже не получает.
	welcomeSignupWindow = 7 * 24 * time.Hour

	// reactivationAfterDays дней без заказов, после которых юзер считается уснувшим.
	reactivationAfterDays = 90

	// maxCodeAttempts попыток сгенерировать уникальный код перед тем как сдаться.
	maxCodeAttempts = 5
)

type CouponService struct {
	uow                uow.UOW
	couponRepo         CouponRepository
	userRepo           UserRepository
	orderRepo          OrderRepository
	launchPromoEnabled bool
	now                func() time.Time
}

func NewCouponService(u uow.UOW, launchPromoEnabled bool) (*CouponService, error) {
	couponRepo, couponRepoErr := uow.GetRepositoryAs[CouponRepository](u, uow.RepositoryName(repoargs.CouponRepoName))
	if couponRepoErr != nil {
		return nil, couponRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	return &CouponService{
		uow:                u,
		couponRepo:         couponRepo,
		userRepo:           userRepo,
		orderRepo:          orderRepo,
		launchPromoEnabled: launchPromoEnabled,
		now:                time.Now,
	}, nil
}

type IssueResult struct {
	CouponIssued bool
	Coupon       *domain.Coupon
	Message      string
}

// couponTrigger пара предикат/шаблон. Триггеры проверяются в фиксированном порядке,
// выдается купон первого сработавшего: порядок списка задает бизнес-приоритет.
type couponTrigger struct {
	key     domain.CouponTemplateKey
	applies func(ctx context.Context, user *domain.User, now time.Time) (bool, error)
}

func (s *CouponService) triggers() []couponTrigger {
	return []couponTrigger{
		{key: domain.CouponTemplateWelcome, applies: s.welcomeApplies},
		{key: domain.CouponTemplateFirstOrder, applies: s.firstOrderApplies},
		{key: domain.CouponTemplateReactivation, applies: s.reactivationApplies},
		{key: domain.CouponTemplateBirthday, applies: s.birthdayApplies},
		{key: domain.CouponTemplateLaunch, applies: s.launchApplies},
	}
}

// EvaluateTriggers проверяет жизненные триггеры юзера и выдает купон по первому
// сработавшему. Если ни один не сработал, возвращается успешный результат с
// CouponIssued=false.
func (s *CouponService) EvaluateTriggers(ctx context.Context, userID int64) (*IssueResult, error) {
	user, userErr := s.userRepo.FindByID(ctx, userID)
	if userErr != nil {
		return nil, fmt.Errorf("evaluating coupon triggers: %w", userErr)
	}

	now := s.now()
	for _, trigger := range s.triggers() {
		applies, appliesErr := trigger.applies(ctx, user, now)
		if appliesErr != nil {
			return nil, fmt.Errorf("evaluating coupon triggers: %w", appliesErr)
		}
		if !applies {
			continue
		}
		template, ok := CouponTemplateByKey(trigger.key)
		if !ok {
			return nil, fmt.Errorf("evaluating coupon triggers: no template for key %s", trigger.key)
		}
		coupon, issueErr := s.issue(ctx, user, template, now)
		if issueErr != nil {
			return nil, fmt.Errorf("evaluating coupon triggers: %w", issueErr)
		}
		return &IssueResult{
			CouponIssued: true,
			Coupon:       coupon,
			Message:      fmt.Sprintf("coupon %s issued", coupon.TemplateKey),
		}, nil
	}

	return &IssueResult{Message: "no coupon triggers matched"}, nil
}

func (s *CouponService) welcomeApplies(ctx context.Context, user *domain.User, now time.Time) (bool, error) {
	if now.Sub(user.CreatedAt) >= welcomeSignupWindow {
		return false, nil
	}
	exists, err := s.couponRepo.ExistsByTemplate(ctx, user.ID, domain.CouponTemplateWelcome, nil)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	return !exists, nil
}

func (s *CouponService) firstOrderApplies(ctx context.Context, user *domain.User, _ time.Time) (bool, error) {
	count, err := s.orderRepo.CountByUserIDAndStatus(ctx, user.ID, domain.OrderStatusCompleted)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	return count == 1, nil
}

func (s *CouponService) reactivationApplies(ctx context.Context, user *domain.User, now time.Time) (bool, error) {
	last, err := s.orderRepo.LastOrderAt(ctx, user.ID)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	if last == nil {
		return false, nil
	}
	return now.Sub(*last) > reactivationAfterDays*24*time.Hour, nil
}

func (s *CouponService) birthdayApplies(ctx context.Context, user *domain.User, now time.Time) (bool, error) {
	if user.Birthdate == nil || user.Birthdate.Month() != now.Month() {
		return false, nil
	}
	// не чаще раза в календарный год
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	exists, err := s.couponRepo.ExistsByTemplate(ctx, user.ID, domain.CouponTemplateBirthday, &yearStart)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	return !exists, nil
}

func (s *CouponService) launchApplies(ctx context.Context, user *domain.User, _ time.Time) (bool, error) {
	if !s.launchPromoEnabled {
		return false, nil
	}
	exists, err := s.couponRepo.ExistsByTemplate(ctx, user.ID, domain.CouponTemplateLaunch, nil)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	return !exists, nil
}

// issue минтит купон по шаблону: код, запись в базе и уведомление для почтовой
// рассылки в одной транзакции. Коллизия кода откатывает транзакцию целиком,
// после чего попытка повторяется с новым кодом.
func (s *CouponService) issue(
	ctx context.Context,
	user *domain.User,
	template CouponTemplate,
	now time.Time,
) (*domain.Coupon, error) {
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		coupon, err := s.issueWithCode(ctx, user, template, generateCouponCode(template.CodePrefix), now)
		if err == nil {
			return coupon, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("issuing coupon %s after %d code attempts: %w", template.Key, maxCodeAttempts, lastErr)
}

func (s *CouponService) issueWithCode(
	ctx context.Context,
	user *domain.User,
	template CouponTemplate,
	code string,
	now time.Time,
) (*domain.Coupon, error) {
	var coupon *domain.Coupon
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		couponRepo, couponRepoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(repoargs.CouponRepoName))
		if couponRepoErr != nil {
			return couponRepoErr //nolint:wrapcheck
		}
		notificationRepo, nRepoErr :=
			uow.GetAs[NotificationRepository](tx, uow.RepositoryName(repoargs.NotificationRepoName))
		if nRepoErr != nil {
			return nRepoErr //nolint:wrapcheck
		}

		var createErr error
		coupon, createErr = couponRepo.Create(c, repoargs.CouponCreate{
			UserID:          user.ID,
			Code:            code,
			TemplateKey:     template.Key,
			Description:     template.Description,
			DiscountType:    template.DiscountType,
			DiscountValue:   template.DiscountValue,
			MinimumPurchase: template.MinimumPurchase,
			ExpiresAt:       now.AddDate(0, template.ExpireMonths, 0),
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		content, renderErr := mailer.RenderCouponIssued(user.Name, coupon)
		if renderErr != nil {
			return renderErr //nolint:wrapcheck
		}
		if _, notifyErr := notificationRepo.Create(c, repoargs.NotificationCreate{
			UserID:   user.ID,
			Kind:     domain.NotificationKindCouponIssued,
			Subject:  content.Subject,
			Body:     content.Text,
			HTMLBody: content.HTML,
		}); notifyErr != nil {
			return notifyErr //nolint:wrapcheck
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return coupon, nil
}

type CouponValidation struct {
	Valid    bool
	Message  string
	Coupon   *domain.Coupon
	Discount decimal.Decimal
}

// Validate чекаут-проверка купона по коду. Несуществующий код это бизнес-исход,
// а не ошибка: вернется Valid=false с сообщением.
func (s *CouponService) Validate(
	ctx context.Context,
	userID int64,
	code string,
	subtotal decimal.Decimal,
) (*CouponValidation, error) {
	coupon, findErr := s.couponRepo.FindByCode(ctx, code)
	if findErr != nil {
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			return &CouponValidation{Message: "invalid coupon code"}, nil
		}
		return nil, fmt.Errorf("validating coupon `%s`: %w", code, findErr)
	}

	check := CheckCoupon(coupon, userID, subtotal, s.now())
	validation := &CouponValidation{
		Valid:   check.Valid,
		Message: check.Message,
	}
	if check.Valid {
		validation.Coupon = coupon
		validation.Discount = check.Discount
	}
	return validation, nil
}

// GetByUserID возвращает купоны юзера по убыванию даты выдачи.
func (s *CouponService) GetByUserID(ctx context.Context, userID int64) ([]domain.Coupon, error) {
	coupons, err := s.couponRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return coupons, nil
}
