package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medistore/internal/common"
	"medistore/internal/domain/model"
)

type OrderRepository interface {
	Save(ctx context.Context, order *model.Order) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
}

type pgOrderRepository struct {
	db *sql.DB
}

func NewPgOrderRepository(db *sql.DB) OrderRepository {
	return &pgOrderRepository{db: db}
}

// Save upserts the order row and inserts its line items on first save.
// Line items are immutable after placement, so conflicts on re-save are
// ignored.
func (r *pgOrderRepository) Save(ctx context.Context, order *model.Order) (*model.Order, error) {
	query := `INSERT INTO orders (id, user_id, status)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE SET
	              status = EXCLUDED.status,
	              updated_at = CURRENT_TIMESTAMP
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, order.ID, order.UserID, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("pgOrderRepository.Save order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, quantity)
	              VALUES ($1, $2, $3)
	              ON CONFLICT (order_id, product_id) DO NOTHING`
	for _, item := range order.Items {
		if _, err := r.db.ExecContext(ctx, itemQuery, order.ID, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("pgOrderRepository.Save item %s: %w", item.ProductID, err)
		}
	}
	return order, nil
}

func (r *pgOrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT id, user_id, status, created_at, updated_at
	          FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *pgOrderRepository) FindByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT id, user_id, status, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *pgOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT id, user_id, status, created_at, updated_at
	          FROM orders WHERE id = $1`
	order := &model.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgOrderRepository.FindByID: %w", err)
	}
	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgOrderRepository.queryOrders query: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgOrderRepository.queryOrders scan: %w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgOrderRepository.queryOrders rows.Err: %w", err)
	}

	for i := range orders {
		if orders[i].Items, err = r.loadItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *pgOrderRepository) loadItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	query := `SELECT product_id, quantity FROM order_items WHERE order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("pgOrderRepository.loadItems query: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("pgOrderRepository.loadItems scan: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgOrderRepository.loadItems rows.Err: %w", err)
	}
	return items, nil
}
