package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/google/uuid"
)

const notificationColumns = "id, created_at, user_id, kind, subject, body, html_body, status, error, sent_at"

type NotificationRepository struct {
	db uow.DBTX
}

func NewNotificationRepository(db uow.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	args repoargs.NotificationCreate,
) (*domain.Notification, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, subject, body, html_body, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+notificationColumns,
		uuid.New(), args.UserID, args.Kind, args.Subject, args.Body, args.HTMLBody,
		domain.NotificationStatusPending)

	notification, err := scanNotification(row)
	if err != nil {
		return nil, convertErr(err, "creating notification for user `%d`", args.UserID)
	}
	return notification, nil
}

// GetPending возвращает неотправленные уведомления в порядке создания.
// Используется диспетчером почтовой рассылки.
func (r *NotificationRepository) GetPending(ctx context.Context, limit uint) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE status = $1 ORDER BY created_at LIMIT $2`,
		domain.NotificationStatusPending, int64(limit)) //nolint:gosec
	if err != nil {
		return nil, convertErr(err, "getting pending notifications")
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		notification, scanErr := scanNotification(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting pending notifications")
		}
		notifications = append(notifications, *notification)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting pending notifications")
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE notifications SET status = $1, sent_at = now() WHERE id = $2`,
		domain.NotificationStatusSent, id); err != nil {
		return convertErr(err, "marking notification `%s` as sent", id)
	}
	return nil
}

// MarkFailed фиксирует неудачную отправку. Повторных попыток диспетчер не делает,
// ошибка остается в записи для разбора руками.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE notifications SET status = $1, error = $2 WHERE id = $3`,
		domain.NotificationStatusFailed, errMsg, id); err != nil {
		return convertErr(err, "marking notification `%s` as failed", id)
	}
	return nil
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var notification domain.Notification
	err := row.Scan(
		&notification.ID,
		&notification.CreatedAt,
		&notification.UserID,
		&notification.Kind,
		&notification.Subject,
		&notification.Body,
		&notification.HTMLBody,
		&notification.Status,
		&notification.Error,
		&notification.SentAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &notification, nil
}
