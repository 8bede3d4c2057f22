package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

const pointEntryColumns = "id, created_at, user_id, order_id, amount, reason, expires_at"

type PointEntryRepository struct {
	db uow.DBTX
}

func NewPointEntryRepository(db uow.DBTX) *PointEntryRepository {
	return &PointEntryRepository{db: db}
}

func (r *PointEntryRepository) Create(
	ctx context.Context,
	args repoargs.PointEntryCreate,
) (*domain.PointEntry, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO point_entries (user_id, order_id, amount, reason, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+pointEntryColumns,
		args.UserID, args.OrderID, args.Amount, args.Reason, args.ExpiresAt)

	entry, err := scanPointEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating point entry for user `%d`", args.UserID)
	}
	return entry, nil
}

// GetPositiveByOrderID возвращает записи начислений (amount > 0) привязанные к заказу.
func (r *PointEntryRepository) GetPositiveByOrderID(ctx context.Context, orderID int64) ([]domain.PointEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pointEntryColumns+` FROM point_entries WHERE order_id = $1 AND amount > 0 ORDER BY id`, orderID)
	if err != nil {
		return nil, convertErr(err, "getting positive point entries of order `%d`", orderID)
	}
	defer rows.Close()

	var entries []domain.PointEntry
	for rows.Next() {
		entry, scanErr := scanPointEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting positive point entries of order `%d`", orderID)
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting positive point entries of order `%d`", orderID)
	}
	return entries, nil
}

// GetByUserID возвращает весь леджер юзера по убыванию даты создания.
func (r *PointEntryRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.PointEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pointEntryColumns+` FROM point_entries WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, convertErr(err, "getting point entries of user `%d`", userID)
	}
	defer rows.Close()

	var entries []domain.PointEntry
	for rows.Next() {
		entry, scanErr := scanPointEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting point entries of user `%d`", userID)
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting point entries of user `%d`", userID)
	}
	return entries, nil
}

// SumActiveByUserID возвращает сумму непросроченных записей юзера на момент now.
// Сумма может быть отрицательной: леджер не запрещает отменам превышать начисления.
func (r *PointEntryRepository) SumActiveByUserID(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT coalesce(sum(amount), 0) FROM point_entries WHERE user_id = $1 AND expires_at > $2`,
		userID, now).Scan(&sum)
	if err != nil {
		return 0, convertErr(err, "summing point entries of user `%d`", userID)
	}
	return sum, nil
}

// LockUser берет advisory lock на юзера в рамках текущей транзакции. Используется
// чтобы закрыть гонку проверка-потом-списание при списании баллов. Вне транзакции
// вызов бессмысленен.
func (r *PointEntryRepository) LockUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return convertErr(err, "locking points of user `%d`", userID)
	}
	return nil
}

func scanPointEntry(row rowScanner) (*domain.PointEntry, error) {
	var entry domain.PointEntry
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UserID,
		&entry.OrderID,
		&entry.Amount,
		&entry.Reason,
		&entry.ExpiresAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &entry, nil
}
