package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"resto-pos/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	UpdateOrder(ctx context.Context, id int, tableNumber int, status OrderStatus, items []ItemInput) (*Order, error)
	UpdateStatus(ctx context.Context, id int, status OrderStatus) (*Order, error)
	DeleteOrder(ctx context.Context, id int) error
	ListOrders(ctx context.Context) ([]*Order, error)
	GetOrder(ctx context.Context, id int) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *repository) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.Int("table_number", input.TableNumber),
		zap.Int("item_count", len(input.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// Resolve the current menu price for every line. The snapshot is taken
	// inside the transaction so a concurrent menu edit cannot split an order.
	var total float64
	prices := make([]float64, len(input.Items))
	for i, item := range input.Items {
		price, err := resolveMenuPrice(ctx, tx, item.MenuItemID)
		if err != nil {
			return nil, err
		}
		prices[i] = price
		total += price * float64(item.Quantity)
	}
	total = roundCents(total)

	var orderID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (table_number, status, total_amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`, input.TableNumber, StatusPending, total).Scan(&orderID)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	for i, item := range input.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.MenuItemID, item.Quantity, prices[i])
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("menu_item_id", item.MenuItemID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order created", zap.Int("order_id", orderID), zap.Float64("total_amount", total))
	return r.GetOrder(ctx, orderID)
}

func (r *repository) UpdateOrder(ctx context.Context, id int, tableNumber int, status OrderStatus, items []ItemInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateOrder"),
		zap.Int("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var current OrderStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order row", zap.Error(err))
		return nil, err
	}

	if err := CanTransition(current, status); err != nil {
		return nil, err
	}

	// Keep the order-time price for lines that survive the replace; only
	// newly added menu items get the current menu price.
	snapshots := make(map[int]float64)
	rows, err := tx.QueryContext(ctx, `SELECT menu_item_id, price FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		log.Error("failed to load item snapshots", zap.Error(err))
		return nil, err
	}
	for rows.Next() {
		var menuItemID int
		var price float64
		if err := rows.Scan(&menuItemID, &price); err != nil {
			rows.Close()
			return nil, err
		}
		snapshots[menuItemID] = price
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		log.Error("failed to clear order items", zap.Error(err))
		return nil, err
	}

	var total float64
	for _, item := range items {
		price, ok := snapshots[item.MenuItemID]
		if !ok {
			price, err = resolveMenuPrice(ctx, tx, item.MenuItemID)
			if err != nil {
				return nil, err
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, id, item.MenuItemID, item.Quantity, price)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("menu_item_id", item.MenuItemID),
				zap.Error(err),
			)
			return nil, err
		}

		total += price * float64(item.Quantity)
	}
	total = roundCents(total)

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET table_number = $1, status = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $4
	`, tableNumber, status, total, id)
	if err != nil {
		log.Error("failed to update order header", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order update", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order updated", zap.Float64("total_amount", total), zap.String("status", string(status)))
	return r.GetOrder(ctx, id)
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status OrderStatus) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Int("order_id", id),
		zap.String("status", string(status)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var current OrderStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order row", zap.Error(err))
		return nil, err
	}

	if err := CanTransition(current, status); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit status update", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order status updated", zap.String("from", string(current)))
	return r.GetOrder(ctx, id)
}

func (r *repository) DeleteOrder(ctx context.Context, id int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteOrder"),
		zap.Int("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// Item rows go first; the FK also cascades but the explicit delete keeps
	// the affected-row check on the order row itself.
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		log.Error("failed to delete order items", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete order", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order delete", zap.Error(err))
		return err
	}
	committed = true

	log.Info("order deleted")
	return nil
}

func (r *repository) ListOrders(ctx context.Context) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, table_number, status, total_amount, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	ids := []int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Items = []OrderItem{}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.fetchOrderItems(ctx, ids)
	if err != nil {
		log.Error("failed to fetch order items", zap.Error(err))
		return nil, err
	}

	for _, o := range orders {
		if items, ok := itemsByOrder[o.ID]; ok {
			o.Items = items
		}
	}

	log.Debug("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) GetOrder(ctx context.Context, id int) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, table_number, status, total_amount, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.TableNumber, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	itemsByOrder, err := r.fetchOrderItems(ctx, []int{id})
	if err != nil {
		return nil, err
	}

	o.Items = []OrderItem{}
	if items, ok := itemsByOrder[id]; ok {
		o.Items = items
	}

	return &o, nil
}

// fetchOrderItems batch-loads the item rows for a set of orders, with the
// menu name joined in for display.
func (r *repository) fetchOrderItems(ctx context.Context, orderIDs []int) (map[int][]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.id, oi.menu_item_id, mi.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itemsByOrder := make(map[int][]OrderItem)
	for rows.Next() {
		var orderID int
		var item OrderItem
		if err := rows.Scan(&orderID, &item.ID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}

	return itemsByOrder, rows.Err()
}

func resolveMenuPrice(ctx context.Context, tx *sql.Tx, menuItemID int) (float64, error) {
	var price float64
	err := tx.QueryRowContext(ctx, `SELECT price FROM menu_items WHERE id = $1`, menuItemID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: id %d", ErrMenuItemUnknown, menuItemID)
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}
