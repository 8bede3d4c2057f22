package outbox

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/google/uuid"
)

type Servicer interface {
	Pending(ctx context.Context, limit uint) ([]domain.Notification, error)
	RecipientEmail(ctx context.Context, userID int64) (string, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
