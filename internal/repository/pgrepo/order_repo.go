package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/repository/repoargs"
	"github.com/fsdevblog/groph-shop/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const orderColumns = "id, created_at, updated_at, user_id, status, points_awarded"
const orderItemColumns = "id, order_id, product_name, unit_price, quantity, on_sale, campaign_id"

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create создает заказ вместе с позициями. Предполагается вызов внутри транзакции UOW,
// иначе заказ без позиций может остаться в базе при обрыве в середине вставки.
func (r *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, status)
		VALUES ($1, $2)
		RETURNING `+orderColumns,
		args.UserID, domain.OrderStatusNew)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for user `%d`", args.UserID)
	}

	batch := new(pgx.Batch)
	for _, item := range args.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_name, unit_price, quantity, on_sale, campaign_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+orderItemColumns,
			order.ID, item.ProductName, item.UnitPrice, item.Quantity, item.OnSale, item.CampaignID)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	order.Items = make([]domain.OrderItem, 0, len(args.Items))
	for range args.Items {
		item, scanErr := scanOrderItem(results.QueryRow())
		if scanErr != nil {
			return nil, convertErr(scanErr, "creating items for order `%d`", order.ID)
		}
		order.Items = append(order.Items, *item)
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id `%d`", id)
	}

	items, itemsErr := r.itemsByOrderIDs(ctx, []int64{order.ID})
	if itemsErr != nil {
		return nil, itemsErr
	}
	order.Items = items[order.ID]
	return order, nil
}

// GetByUserID возвращает заказы юзера с позициями, отсортированные по дате создания по убыванию.
func (r *OrderRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "getting orders by userID `%d`", userID)
	}
	defer rows.Close()

	var orders []domain.Order
	var orderIDs []int64
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting orders by userID `%d`", userID)
		}
		orders = append(orders, *order)
		orderIDs = append(orderIDs, order.ID)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting orders by userID `%d`", userID)
	}

	items, itemsErr := r.itemsByOrderIDs(ctx, orderIDs)
	if itemsErr != nil {
		return nil, itemsErr
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatus меняет статус заказа и возвращает обновленную запись (без позиций).
func (r *OrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+orderColumns,
		status, id)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order `%d`", id)
	}
	return order, nil
}

func (r *OrderRepository) SetPointsAwarded(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET points_awarded = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "setting points_awarded for order `%d`", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "setting points_awarded for order `%d`", id)
	}
	return nil
}

func (r *OrderRepository) CountByUserIDAndStatus(
	ctx context.Context,
	userID int64,
	status domain.OrderStatusType,
) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id = $1 AND status = $2`, userID, status).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting orders of user `%d`", userID)
	}
	return count, nil
}

// LastOrderAt возвращает дату самого свежего заказа юзера или nil, если заказов нет.
func (r *OrderRepository) LastOrderAt(ctx context.Context, userID int64) (*time.Time, error) {
	var last *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT max(created_at) FROM orders WHERE user_id = $1`, userID).Scan(&last)
	if err != nil {
		return nil, convertErr(err, "getting last order date of user `%d`", userID)
	}
	return last, nil
}

func (r *OrderRepository) itemsByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	items := make(map[int64][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`, orderIDs)
	if err != nil {
		return nil, convertErr(err, "getting items for orders `%v`", orderIDs)
	}
	defer rows.Close()

	for rows.Next() {
		item, scanErr := scanOrderItem(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting items for orders `%v`", orderIDs)
		}
		items[item.OrderID] = append(items[item.OrderID], *item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting items for orders `%v`", orderIDs)
	}
	return items, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.UserID,
		&order.Status,
		&order.PointsAwarded,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &order, nil
}

func scanOrderItem(row rowScanner) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductName,
		&item.UnitPrice,
		&item.Quantity,
		&item.OnSale,
		&item.CampaignID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &item, nil
}
