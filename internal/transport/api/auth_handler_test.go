package api

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/logger"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/fsdevblog/groph-shop/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-shop/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-shop/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockUserService   *mocks.MockUserServicer
	mockCouponService *mocks.MockCouponServicer
	jwtSecret         []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.mockCouponService = mocks.NewMockCouponServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		UserService:   s.mockUserService,
		CouponService: s.mockCouponService,
		JWTSecretKey:  s.jwtSecret,
	})
}

func (s *AuthHandlerTestSuite) TestRegister() {
	user := &domain.User{ID: 1, Email: "user@example.com", Name: "Иван"}
	takenEmail := "taken@example.com"

	s.mockUserService.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.RegisterUserArgs) (*domain.User, string, error) {
			if args.Email == takenEmail {
				return nil, "", domain.ErrDuplicateKey
			}
			s.Require().NotNil(args.Birthdate)
			s.Equal("1990-06-02", args.Birthdate.Format("2006-01-02"))
			return user, "jwt-token", nil
		}).Times(2)

	// после успешной регистрации прогоняются купонные триггеры.
	s.mockCouponService.EXPECT().
		EvaluateTriggers(gomock.Any(), user.ID).
		Return(&service.IssueResult{CouponIssued: true}, nil).Times(1)

	validPayload := []byte(`{"email":"user@example.com","name":"Иван","password":"secret123","birthdate":"1990-06-02"}`)

	cases := []struct {
		name       string
		payload    []byte
		wantStatus int
		wantAuth   bool
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			wantStatus: http.StatusOK,
			wantAuth:   true,
		}, {
			name:       "email taken",
			payload:    []byte(`{"email":"taken@example.com","name":"Иван","password":"secret123"}`),
			wantStatus: http.StatusConflict,
		}, {
			name:       "invalid email",
			payload:    []byte(`{"email":"not-an-email","name":"Иван","password":"secret123"}`),
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "short password",
			payload:    []byte(`{"email":"user@example.com","name":"Иван","password":"123"}`),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
				Body:   bytes.NewReader(t.payload),
			}, testutils.WithHeader("Content-Type", "application/json"))
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantAuth {
				s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))
			}
		})
	}
}

func (s *AuthHandlerTestSuite) TestRegister_AlreadyAuthorized() {
	jwtToken, tokenErr := tokens.GenerateUserJWT(1, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	s.mockUserService.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + RegisterRoute,
		Body:   bytes.NewReader([]byte(`{"email":"user@example.com","name":"Иван","password":"secret123"}`)),
	},
		testutils.WithHeader("Authorization", "Bearer "+jwtToken),
		testutils.WithHeader("Content-Type", "application/json"),
	)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *AuthHandlerTestSuite) TestLogin() {
	user := &domain.User{ID: 1, Email: "user@example.com", Name: "Иван"}

	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Email: user.Email, Password: "secret123"}).
		Return(user, "jwt-token", nil)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Email: user.Email, Password: "wrongpass"}).
		Return(nil, "", domain.ErrPasswordMissMatch)

	cases := []struct {
		name       string
		payload    []byte
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    []byte(`{"email":"user@example.com","password":"secret123"}`),
			wantStatus: http.StatusOK,
		}, {
			name:       "wrong password",
			payload:    []byte(`{"email":"user@example.com","password":"wrongpass"}`),
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "malformed payload",
			payload:    []byte(`{"email":"user@example.com"}`),
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
				Body:   bytes.NewReader(t.payload),
			}, testutils.WithHeader("Content-Type", "application/json"))
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
