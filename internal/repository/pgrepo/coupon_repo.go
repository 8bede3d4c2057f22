package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

const couponColumns = "id, created_at, updated_at, user_id, code, template_key, description, " +
	"discount_type, discount_value, minimum_purchase, expires_at, is_used"

type CouponRepository struct {
	db uow.DBTX
}

func NewCouponRepository(db uow.DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create вставляет купон. При коллизии кода вернется domain.ErrDuplicateKey,
// вызывающая сторона перегенерирует код.
func (r *CouponRepository) Create(ctx context.Context, args repoargs.CouponCreate) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO coupons
			(user_id, code, template_key, description, discount_type, discount_value, minimum_purchase, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+couponColumns,
		args.UserID, args.Code, args.TemplateKey, args.Description,
		args.DiscountType, args.DiscountValue, args.MinimumPurchase, args.ExpiresAt)

	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "creating coupon `%s` for user `%d`", args.Code, args.UserID)
	}
	return coupon, nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "finding coupon by code `%s`", code)
	}
	return coupon, nil
}

func (r *CouponRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Coupon, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "getting coupons of user `%d`", userID)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		coupon, scanErr := scanCoupon(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting coupons of user `%d`", userID)
		}
		coupons = append(coupons, *coupon)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting coupons of user `%d`", userID)
	}
	return coupons, nil
}

// MarkUsed выставляет is_used. Единственная мутация купона за весь его жизненный цикл.
func (r *CouponRepository) MarkUsed(ctx context.Context, id int64) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE coupons SET is_used = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING `+couponColumns, id)

	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "marking coupon `%d` as used", id)
	}
	return coupon, nil
}

// ExistsByTemplate проверяет наличие у юзера купона по шаблону. Если issuedAfter не nil,
// учитываются только купоны созданные после этой даты (нужно для BIRTHDAY: раз в календарный год).
func (r *CouponRepository) ExistsByTemplate(
	ctx context.Context,
	userID int64,
	key domain.CouponTemplateKey,
	issuedAfter *time.Time,
) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM coupons
			WHERE user_id = $1 AND template_key = $2 AND ($3::timestamptz IS NULL OR created_at >= $3)
		)`,
		userID, key, issuedAfter).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking coupons `%s` of user `%d`", key, userID)
	}
	return exists, nil
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := row.Scan(
		&coupon.ID,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
		&coupon.UserID,
		&coupon.Code,
		&coupon.TemplateKey,
		&coupon.Description,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MinimumPurchase,
		&coupon.ExpiresAt,
		&coupon.IsUsed,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &coupon, nil
}
