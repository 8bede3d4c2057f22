package service

import (
	"context"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/google/uuid"
)

// NotificationService тонкая прослойка над репозиторием уведомлений для диспетчера
// почтовой рассылки.
type NotificationService struct {
	uow              uow.UOW
	notificationRepo NotificationRepository
	userRepo         UserRepository
}

func NewNotificationService(u uow.UOW) (*NotificationService, error) {
	rName := uow.RepositoryName(repoargs.NotificationRepoName)
	notificationRepo, nRepoErr := uow.GetRepositoryAs[NotificationRepository](u, rName)
	if nRepoErr != nil {
		return nil, nRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &NotificationService{
		uow:              u,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}, nil
}

func (s *NotificationService) Pending(ctx context.Context, limit uint) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.GetPending(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return notifications, nil
}

// RecipientEmail возвращает адрес получателя уведомления.
func (s *NotificationService) RecipientEmail(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return user.Email, nil
}

func (s *NotificationService) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.notificationRepo.MarkSent(ctx, id) //nolint:wrapcheck
}

func (s *NotificationService) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return s.notificationRepo.MarkFailed(ctx, id, errMsg) //nolint:wrapcheck
}
