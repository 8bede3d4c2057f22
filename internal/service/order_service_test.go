package service_test

import (
	. "github.com/fsdevblog/groph-shop/internal/service"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/logger"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/internal/service/mocks"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-shop/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockOrderRepo  *mocks.MockOrderRepository
	mockCouponRepo *mocks.MockCouponRepository
	mockPointRepo  *mocks.MockPointEntryRepository
	mockLoyalty    *mocks.MockLoyaltyServicer
	mockCoupons    *mocks.MockCouponIssuer
	service        *OrderService
	now            time.Time
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockCouponRepo = mocks.NewMockCouponRepository(s.mockCtrl)
	s.mockPointRepo = mocks.NewMockPointEntryRepository(s.mockCtrl)
	s.mockLoyalty = mocks.NewMockLoyaltyServicer(s.mockCtrl)
	s.mockCoupons = mocks.NewMockCouponIssuer(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	var err error
	s.service, err = NewOrderService(s.mockUOW, s.mockLoyalty, s.mockCoupons, logger.New(os.Stdout))
	s.Require().NoError(err)

	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	SetOrderServiceNow(s.service, func() time.Time { return s.now })
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) expectTransaction() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	)
}

func (s *OrderServiceTestSuite) newOrder() *domain.Order {
	return &domain.Order{
		ID:     10,
		UserID: 123,
		Status: domain.OrderStatusNew,
		Items: []domain.OrderItem{
			{ProductName: "mug", UnitPrice: decimal.NewFromInt(3000), Quantity: 2},
		},
	}
}

func (s *OrderServiceTestSuite) TestComplete() {
	order := s.newOrder()
	completed := *order
	completed.Status = domain.OrderStatusCompleted

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusCompleted).
		Return(&completed, nil)
	s.expectTransaction()

	award := &AwardResult{Calculation: PointsCalculation{BasePoints: 60, TotalPoints: 60}}
	s.mockLoyalty.EXPECT().Award(gomock.Any(), gomock.Any()).Return(award, nil)
	s.mockCoupons.EXPECT().EvaluateTriggers(gomock.Any(), order.UserID).
		Return(&IssueResult{Message: "no coupon triggers matched"}, nil)

	result, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, result.Order.Status)
	s.Equal(award, result.Points)
	s.NotNil(result.Coupon)
	s.Nil(result.CouponUsed)
	s.Zero(result.PointsRedeemed)
}

func (s *OrderServiceTestSuite) TestComplete_WithCouponAndPoints() {
	order := s.newOrder() // сумма позиций 6000
	completed := *order
	completed.Status = domain.OrderStatusCompleted

	coupon := &domain.Coupon{
		ID:            1,
		UserID:        order.UserID,
		Code:          "BDAY-ABCD2345",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(15),
		ExpiresAt:     s.now.Add(24 * time.Hour),
	}
	usedCoupon := *coupon
	usedCoupon.IsUsed = true

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.PointEntryRepoName)).
		Return(s.mockPointRepo, nil)

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)

	s.mockCouponRepo.EXPECT().FindByCode(gomock.Any(), coupon.Code).Return(coupon, nil)
	s.mockCouponRepo.EXPECT().MarkUsed(gomock.Any(), coupon.ID).Return(&usedCoupon, nil)

	s.mockPointRepo.EXPECT().LockUser(gomock.Any(), order.UserID).Return(nil)
	s.mockPointRepo.EXPECT().SumActiveByUserID(gomock.Any(), order.UserID, s.now).
		Return(int64(100), nil)
	s.mockPointRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.PointEntryCreate) (*domain.PointEntry, error) {
			s.Equal(int64(-50), args.Amount)
			s.Equal("points redeemed at checkout of order #10", args.Reason)
			return &domain.PointEntry{Amount: args.Amount}, nil
		})

	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusCompleted).
		Return(&completed, nil)
	s.expectTransaction()

	s.mockLoyalty.EXPECT().Award(gomock.Any(), gomock.Any()).
		Return(&AwardResult{}, nil)
	s.mockCoupons.EXPECT().EvaluateTriggers(gomock.Any(), order.UserID).
		Return(&IssueResult{}, nil)

	result, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{
		CouponCode:  coupon.Code,
		PointsToUse: 50,
	})
	s.Require().NoError(err)
	s.True(result.CouponUsed.IsUsed)
	s.Equal(int64(50), result.PointsRedeemed)
	// 15% от 6000.
	s.True(result.Discount.Equal(decimal.NewFromInt(900)), "got %s", result.Discount)
}

func (s *OrderServiceTestSuite) TestComplete_NotEnoughPoints() {
	order := s.newOrder()

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.PointEntryRepoName)).
		Return(s.mockPointRepo, nil)

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockPointRepo.EXPECT().LockUser(gomock.Any(), order.UserID).Return(nil)
	s.mockPointRepo.EXPECT().SumActiveByUserID(gomock.Any(), order.UserID, s.now).
		Return(int64(30), nil)
	// списания и смены статуса быть не должно.
	s.mockPointRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.expectTransaction()

	// бухгалтерия после отката не запускается.
	s.mockLoyalty.EXPECT().Award(gomock.Any(), gomock.Any()).Times(0)
	s.mockCoupons.EXPECT().EvaluateTriggers(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{
		PointsToUse: 50,
	})
	s.Require().ErrorIs(err, domain.ErrNotEnoughPoints)
	s.Nil(result)
}

func (s *OrderServiceTestSuite) TestComplete_CouponRejected() {
	order := s.newOrder()
	coupon := &domain.Coupon{
		ID:        1,
		UserID:    order.UserID,
		Code:      "WELCOME-ABCD2345",
		ExpiresAt: s.now.Add(-time.Hour),
	}

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil)

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockCouponRepo.EXPECT().FindByCode(gomock.Any(), coupon.Code).Return(coupon, nil)
	s.mockCouponRepo.EXPECT().MarkUsed(gomock.Any(), gomock.Any()).Times(0)
	s.expectTransaction()

	_, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{
		CouponCode: coupon.Code,
	})
	var rejected *domain.CouponRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal("coupon expired", rejected.Message)
}

func (s *OrderServiceTestSuite) TestComplete_UnknownCouponCode() {
	order := s.newOrder()

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CouponRepoName)).
		Return(s.mockCouponRepo, nil)

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockCouponRepo.EXPECT().FindByCode(gomock.Any(), "NOSUCH-00000000").
		Return(nil, domain.ErrRecordNotFound)
	s.mockCouponRepo.EXPECT().MarkUsed(gomock.Any(), gomock.Any()).Times(0)
	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.expectTransaction()

	_, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{
		CouponCode: "NOSUCH-00000000",
	})
	var rejected *domain.CouponRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal("invalid coupon code", rejected.Message)
	s.NotErrorIs(err, domain.ErrRecordNotFound)
}

func (s *OrderServiceTestSuite) TestComplete_OwnerConflict() {
	order := s.newOrder()

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.expectTransaction()

	_, err := s.service.Complete(context.Background(), 777, order.ID, CompleteOrderArgs{})
	s.Require().ErrorIs(err, domain.ErrOwnerConflict)
}

func (s *OrderServiceTestSuite) TestComplete_AlreadyCompleted() {
	order := s.newOrder()
	order.Status = domain.OrderStatusCompleted

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.expectTransaction()

	_, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{})
	s.Require().ErrorIs(err, domain.ErrOrderNotNew)
}

func (s *OrderServiceTestSuite) TestComplete_LoyaltyFailureDoesNotFailOrder() {
	order := s.newOrder()
	completed := *order
	completed.Status = domain.OrderStatusCompleted

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusCompleted).
		Return(&completed, nil)
	s.expectTransaction()

	// начисление упало, триггеры при этом все равно прогоняются.
	s.mockLoyalty.EXPECT().Award(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("db gone"))
	s.mockCoupons.EXPECT().EvaluateTriggers(gomock.Any(), order.UserID).
		Return(&IssueResult{}, nil)

	result, err := s.service.Complete(context.Background(), order.UserID, order.ID, CompleteOrderArgs{})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, result.Order.Status)
	s.Nil(result.Points)
	s.NotNil(result.Coupon)
}

func (s *OrderServiceTestSuite) TestCancel() {
	order := s.newOrder()
	order.Status = domain.OrderStatusCompleted
	order.PointsAwarded = true
	canceled := *order
	canceled.Status = domain.OrderStatusCanceled

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusCanceled).
		Return(&canceled, nil)
	s.expectTransaction()

	s.mockLoyalty.EXPECT().Cancel(gomock.Any(), order.ID, "order #10 canceled").
		Return(&CancelResult{}, nil)

	result, err := s.service.Cancel(context.Background(), order.UserID, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCanceled, result.Order.Status)
	s.NotNil(result.Points)
}

func (s *OrderServiceTestSuite) TestCancel_NoPointsAwarded() {
	order := s.newOrder()
	canceled := *order
	canceled.Status = domain.OrderStatusCanceled

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusCanceled).
		Return(&canceled, nil)
	s.expectTransaction()

	// баллы не начислялись, отменять нечего.
	s.mockLoyalty.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.Cancel(context.Background(), order.UserID, order.ID)
	s.Require().NoError(err)
	s.Nil(result.Points)
}
