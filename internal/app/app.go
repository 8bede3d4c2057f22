package app

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"

	"github.com/fsdevblog/groph-shop/internal/mailer"
	"github.com/fsdevblog/groph-shop/internal/transport/outbox"

	"github.com/fsdevblog/groph-shop/pkg/uow"

	"github.com/fsdevblog/groph-shop/internal/config"
	"github.com/fsdevblog/groph-shop/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/fsdevblog/groph-shop/internal/transport/api"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	"os/signal"
	"syscall"

	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:                unitOfWork,
		JWTSecret:          []byte(a.Config.JWTUserSecret),
		LaunchPromoEnabled: a.Config.LaunchPromoEnabled,
		Logger:             a.Logger,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:        a.Logger,
		UserService:   services.UserService,
		OrderService:  services.OrderService,
		PointsService: services.PointsService,
		CouponService: services.CouponService,
		JWTSecretKey:  []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	sender := mailer.NewSMTPSender(
		a.Config.SMTPHost,
		a.Config.SMTPPort,
		a.Config.SMTPUser,
		a.Config.SMTPPass,
		a.Config.SMTPFrom,
	)

	processor := outbox.New(services.NotificationService, sender, a.Logger).
		SetSendWorkers(5).       //nolint:mnd
		SetLimitPerIteration(50) //nolint:mnd

	go processor.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	type repoEntry struct {
		name      repoargs.RepositoryName
		factoryFn uow.RepositoryFactory
	}

	repos := []repoEntry{
		{repoargs.UserRepoName, func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		}},
		{repoargs.OrderRepoName, func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		}},
		{repoargs.PointEntryRepoName, func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPointEntryRepository(dbtx)
		}},
		{repoargs.CouponRepoName, func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCouponRepository(dbtx)
		}},
		{repoargs.NotificationRepoName, func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewNotificationRepository(dbtx)
		}},
	}

	for _, entry := range repos {
		if regErr := unitOfWork.Register(uow.RepositoryName(entry.name), entry.factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
