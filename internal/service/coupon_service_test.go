package service_test

import (
	. "github.com/fsdevblog/groph-shop/internal/service"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/internal/service/mocks"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-shop/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CouponServiceTestSuite struct {
	suite.Suite
	mockCtrl             *gomock.Controller
	mockUOW              *uowmocks.MockUOW
	mockTX               *uowmocks.MockTX
	mockCouponRepo       *mocks.MockCouponRepository
	mockUserRepo         *mocks.MockUserRepository
	mockOrderRepo        *mocks.MockOrderRepository
	mockNotificationRepo *mocks.MockNotificationRepository
	service              *CouponService
	now                  time.Time
}

func TestCouponServiceSuite(t *testing.T) {
	suite.Run(t, new(CouponServiceTestSuite))
}

func (s *CouponServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCouponRepo = mocks.NewMockCouponRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockNotificationRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	var err error
	s.service, err = NewCouponService(s.mockUOW, false)
	s.Require().NoError(err)

	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	SetCouponServiceNow(s.service, func() time.Time { return s.now })
}

func (s *CouponServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CouponServiceTestSuite) user(createdAt time.Time) *domain.User {
	return &domain.User{
		ID:        123,
		CreatedAt: createdAt,
		Email:     "user@example.com",
		Name:      "Иван",
	}
}

// expectIssueTransaction настраивает транзакцию выдачи купона: создание записи
// и уведомления для рассылки.
func (s *CouponServiceTestSuite) expectIssueTransaction(times int) {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil).Times(times)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotificationRepo, nil).Times(times)
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	).Times(times)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_Welcome() {
	// юзер зарегистрирован вчера.
	user := s.user(s.now.Add(-24 * time.Hour))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockCouponRepo.EXPECT().
		ExistsByTemplate(gomock.Any(), user.ID, domain.CouponTemplateWelcome, nil).
		Return(false, nil)

	// приветственный триггер приоритетнее остальных: до заказов дело не доходит.
	s.mockOrderRepo.EXPECT().CountByUserIDAndStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), gomock.Any()).Times(0)

	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			s.Equal(user.ID, args.UserID)
			s.Equal(domain.CouponTemplateWelcome, args.TemplateKey)
			s.True(strings.HasPrefix(args.Code, "WELCOME-"))
			s.Equal(domain.DiscountPercentage, args.DiscountType)
			s.True(args.DiscountValue.Equal(decimal.NewFromInt(10)))
			s.Require().NotNil(args.MinimumPurchase)
			s.True(args.MinimumPurchase.Equal(decimal.NewFromInt(2000)))
			s.Equal(s.now.AddDate(0, 1, 0), args.ExpiresAt)
			return &domain.Coupon{
				ID:          1,
				UserID:      args.UserID,
				Code:        args.Code,
				TemplateKey: args.TemplateKey,
				ExpiresAt:   args.ExpiresAt,
			}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.NotificationCreate) (*domain.Notification, error) {
			s.Equal(domain.NotificationKindCouponIssued, args.Kind)
			s.NotEmpty(args.Subject)
			s.NotEmpty(args.Body)
			s.NotEmpty(args.HTMLBody)
			return &domain.Notification{}, nil
		})
	s.expectIssueTransaction(1)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Require().NotNil(result.Coupon)
	s.Equal(domain.CouponTemplateWelcome, result.Coupon.TemplateKey)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_WelcomeWindowIsStrict() {
	// регистрация ровно 7 суток назад: окно уже закрыто.
	user := s.user(s.now.Add(-WelcomeSignupWindow))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(0), nil)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), user.ID).Return(nil, nil)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.False(result.CouponIssued)
	s.Equal("no coupon triggers matched", result.Message)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_WelcomeAlreadyIssued() {
	user := s.user(s.now.Add(-24 * time.Hour))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockCouponRepo.EXPECT().
		ExistsByTemplate(gomock.Any(), user.ID, domain.CouponTemplateWelcome, nil).
		Return(true, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(0), nil)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), user.ID).Return(nil, nil)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.False(result.CouponIssued)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_FirstOrder() {
	user := s.user(s.now.AddDate(-1, 0, 0))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(1), nil)

	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			s.Equal(domain.CouponTemplateFirstOrder, args.TemplateKey)
			s.Equal(domain.DiscountFixed, args.DiscountType)
			s.True(args.DiscountValue.Equal(decimal.NewFromInt(1000)))
			return &domain.Coupon{ID: 2, TemplateKey: args.TemplateKey}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{}, nil)
	s.expectIssueTransaction(1)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Equal(domain.CouponTemplateFirstOrder, result.Coupon.TemplateKey)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_Reactivation() {
	user := s.user(s.now.AddDate(-1, 0, 0))
	lastOrder := s.now.AddDate(0, 0, -120)

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(5), nil)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), user.ID).Return(&lastOrder, nil)

	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			s.Equal(domain.CouponTemplateReactivation, args.TemplateKey)
			s.True(strings.HasPrefix(args.Code, "COMEBACK-"))
			return &domain.Coupon{ID: 3, TemplateKey: args.TemplateKey}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{}, nil)
	s.expectIssueTransaction(1)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Equal(domain.CouponTemplateReactivation, result.Coupon.TemplateKey)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_Birthday() {
	birthdate := time.Date(1990, s.now.Month(), 2, 0, 0, 0, 0, time.UTC)
	user := s.user(s.now.AddDate(-1, 0, 0))
	user.Birthdate = &birthdate
	yearStart := time.Date(s.now.Year(), time.January, 1, 0, 0, 0, 0, s.now.Location())

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(5), nil)
	lastOrder := s.now.AddDate(0, 0, -10)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), user.ID).Return(&lastOrder, nil)
	s.mockCouponRepo.EXPECT().
		ExistsByTemplate(gomock.Any(), user.ID, domain.CouponTemplateBirthday, &yearStart).
		Return(false, nil)

	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			s.Equal(domain.CouponTemplateBirthday, args.TemplateKey)
			// у купона на день рождения нет минимальной суммы.
			s.Nil(args.MinimumPurchase)
			return &domain.Coupon{ID: 4, TemplateKey: args.TemplateKey}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{}, nil)
	s.expectIssueTransaction(1)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Equal(domain.CouponTemplateBirthday, result.Coupon.TemplateKey)
}

func (s *CouponServiceTestSuite) TestEvaluateTriggers_LaunchPromo() {
	var err error
	s.service, err = NewCouponService(s.mockUOW, true)
	s.Require().NoError(err)
	SetCouponServiceNow(s.service, func() time.Time { return s.now })

	user := s.user(s.now.AddDate(-1, 0, 0))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockOrderRepo.EXPECT().
		CountByUserIDAndStatus(gomock.Any(), user.ID, domain.OrderStatusCompleted).
		Return(int64(5), nil)
	lastOrder := s.now.AddDate(0, 0, -10)
	s.mockOrderRepo.EXPECT().LastOrderAt(gomock.Any(), user.ID).Return(&lastOrder, nil)
	s.mockCouponRepo.EXPECT().
		ExistsByTemplate(gomock.Any(), user.ID, domain.CouponTemplateLaunch, nil).
		Return(false, nil)

	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			s.Equal(domain.CouponTemplateLaunch, args.TemplateKey)
			return &domain.Coupon{ID: 5, TemplateKey: args.TemplateKey}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{}, nil)
	s.expectIssueTransaction(1)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Equal(domain.CouponTemplateLaunch, result.Coupon.TemplateKey)
}

func (s *CouponServiceTestSuite) TestIssue_RetriesOnDuplicateCode() {
	user := s.user(s.now.Add(-24 * time.Hour))

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
	s.mockCouponRepo.EXPECT().
		ExistsByTemplate(gomock.Any(), user.ID, domain.CouponTemplateWelcome, nil).
		Return(false, nil)

	var codes []string
	first := s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			codes = append(codes, args.Code)
			return nil, domain.ErrDuplicateKey
		})
	s.mockCouponRepo.EXPECT().Create(gomock.Any(), gomock.Any()).After(first).
		DoAndReturn(func(_ context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
			codes = append(codes, args.Code)
			return &domain.Coupon{ID: 1, Code: args.Code, TemplateKey: args.TemplateKey}, nil
		})
	s.mockNotificationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{}, nil)
	s.expectIssueTransaction(2)

	result, err := s.service.EvaluateTriggers(context.Background(), user.ID)
	s.Require().NoError(err)
	s.True(result.CouponIssued)
	s.Require().Len(codes, 2)
	// после коллизии генерируется новый код.
	s.NotEqual(codes[0], codes[1])
}

func (s *CouponServiceTestSuite) TestValidate_UnknownCode() {
	s.mockCouponRepo.EXPECT().FindByCode(gomock.Any(), "NOPE-12345678").
		Return(nil, domain.ErrRecordNotFound)

	validation, err := s.service.Validate(context.Background(), 123, "NOPE-12345678", decimal.NewFromInt(5000))
	s.Require().NoError(err)
	s.False(validation.Valid)
	s.Equal("invalid coupon code", validation.Message)
}

func (s *CouponServiceTestSuite) TestValidate_Valid() {
	coupon := &domain.Coupon{
		ID:            1,
		UserID:        123,
		Code:          "BDAY-ABCD2345",
		TemplateKey:   domain.CouponTemplateBirthday,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(15),
		ExpiresAt:     s.now.Add(24 * time.Hour),
	}
	s.mockCouponRepo.EXPECT().FindByCode(gomock.Any(), coupon.Code).Return(coupon, nil)

	validation, err := s.service.Validate(context.Background(), 123, coupon.Code, decimal.NewFromInt(1000))
	s.Require().NoError(err)
	s.True(validation.Valid)
	s.True(validation.Discount.Equal(decimal.NewFromInt(150)), "got %s", validation.Discount)
}
