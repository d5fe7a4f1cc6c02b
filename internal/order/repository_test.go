package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func orderHeaderRows(id, tableNumber int, status OrderStatus, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "table_number", "status", "total_amount", "created_at", "updated_at"}).
		AddRow(id, tableNumber, status, total, now, now)
}

func expectGetOrder(mock sqlmock.Sqlmock, id int, headerRows, itemRows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT id, table_number, status, total_amount, created_at, updated_at\s+FROM orders\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(headerRows)
	mock.ExpectQuery(`SELECT oi.order_id, oi.id, oi.menu_item_id, mi.name, oi.quantity, oi.price`).
		WithArgs(pq.Array([]int{id})).
		WillReturnRows(itemRows)
}

func emptyItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"order_id", "id", "menu_item_id", "name", "quantity", "price"})
}

func TestRepository_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT price FROM menu_items WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(12.50))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(4, string(StatusPending), 25.00).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(10, 1, 2, 12.50).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		expectGetOrder(mock, 10,
			orderHeaderRows(10, 4, StatusPending, 25.00),
			emptyItemRows().AddRow(10, 1, 1, "Burger", 2, 12.50),
		)

		o, err := repo.CreateOrder(ctx, CreateOrderInput{
			TableNumber: 4,
			Items:       []ItemInput{{MenuItemID: 1, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, 10, o.ID)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, 25.00, o.TotalAmount)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 12.50, o.Items[0].Price)
		assert.Equal(t, "Burger", o.Items[0].Name)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownMenuItem", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT price FROM menu_items WHERE id = \$1`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.CreateOrder(ctx, CreateOrderInput{
			TableNumber: 4,
			Items:       []ItemInput{{MenuItemID: 99, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrMenuItemUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemInsertFailureRollsBack", func(t *testing.T) {
		// The order header insert succeeds, the item insert fails: nothing
		// may survive the call.
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT price FROM menu_items WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(12.50))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(4, string(StatusPending), 12.50).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnError(errors.New("connection lost"))
		mock.ExpectRollback()

		_, err := repo.CreateOrder(ctx, CreateOrderInput{
			TableNumber: 4,
			Items:       []ItemInput{{MenuItemID: 1, Quantity: 1}},
		})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TotalIsRoundedToCents", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT price FROM menu_items WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(3.33))
		// 3 × 3.33 = 9.99 exactly once rounded.
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(7, string(StatusPending), 9.99).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(11, 1, 3, 3.33).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		expectGetOrder(mock, 11,
			orderHeaderRows(11, 7, StatusPending, 9.99),
			emptyItemRows().AddRow(11, 1, 1, "Lemonade", 3, 3.33),
		)

		o, err := repo.CreateOrder(ctx, CreateOrderInput{
			TableNumber: 7,
			Items:       []ItemInput{{MenuItemID: 1, Quantity: 3}},
		})
		require.NoError(t, err)
		assert.Equal(t, 9.99, o.TotalAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplacesItemSet", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusPending)))
		mock.ExpectQuery(`SELECT menu_item_id, price FROM order_items WHERE order_id = \$1`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"menu_item_id", "price"}).AddRow(1, 12.50))
		mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Menu item 2 is new on this order, so its current price is resolved.
		mock.ExpectQuery(`SELECT price FROM menu_items WHERE id = \$1`).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(8.00))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(10, 2, 1, 8.00).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec(`UPDATE orders\s+SET table_number = \$1, status = \$2, total_amount = \$3, updated_at = NOW\(\)`).
			WithArgs(6, string(StatusPreparing), 8.00, 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		expectGetOrder(mock, 10,
			orderHeaderRows(10, 6, StatusPreparing, 8.00),
			emptyItemRows().AddRow(10, 2, 2, "Fries", 1, 8.00),
		)

		o, err := repo.UpdateOrder(ctx, 10, 6, StatusPreparing, []ItemInput{{MenuItemID: 2, Quantity: 1}})
		require.NoError(t, err)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 2, o.Items[0].MenuItemID)
		assert.Equal(t, 8.00, o.TotalAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("KeepsSnapshotPriceForSurvivingItems", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusPending)))
		mock.ExpectQuery(`SELECT menu_item_id, price FROM order_items WHERE order_id = \$1`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"menu_item_id", "price"}).AddRow(1, 12.50))
		mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// No menu price lookup: the order-time snapshot for item 1 is reused
		// even if the menu price changed since.
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(10, 1, 3, 12.50).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec(`UPDATE orders`).
			WithArgs(4, string(StatusPending), 37.50, 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		expectGetOrder(mock, 10,
			orderHeaderRows(10, 4, StatusPending, 37.50),
			emptyItemRows().AddRow(10, 3, 1, "Burger", 3, 12.50),
		)

		o, err := repo.UpdateOrder(ctx, 10, 4, StatusPending, []ItemInput{{MenuItemID: 1, Quantity: 3}})
		require.NoError(t, err)
		assert.Equal(t, 37.50, o.TotalAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.UpdateOrder(ctx, 99, 4, StatusPending, []ItemInput{{MenuItemID: 1, Quantity: 1}})
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IllegalTransition", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusDelivered)))
		mock.ExpectRollback()

		_, err := repo.UpdateOrder(ctx, 10, 4, StatusPreparing, []ItemInput{{MenuItemID: 1, Quantity: 1}})

		var statusErr *StatusError
		assert.ErrorAs(t, err, &statusErr)
		// No item row was touched before the rollback.
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusPending)))
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(string(StatusPreparing), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		expectGetOrder(mock, 10,
			orderHeaderRows(10, 4, StatusPreparing, 25.00),
			emptyItemRows().AddRow(10, 1, 1, "Burger", 2, 12.50),
		)

		o, err := repo.UpdateStatus(ctx, 10, StatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, StatusPreparing, o.Status)
		assert.Equal(t, 25.00, o.TotalAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(ctx, 99, StatusPreparing)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.DeleteOrder(ctx, 10))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.DeleteOrder(ctx, 99), ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("NewestFirstWithItemsAttached", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectQuery(`SELECT id, table_number, status, total_amount, created_at, updated_at\s+FROM orders\s+ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "table_number", "status", "total_amount", "created_at", "updated_at"}).
				AddRow(2, 6, string(StatusPending), 8.00, now, now).
				AddRow(1, 4, string(StatusDelivered), 25.00, now.Add(-time.Hour), now))
		mock.ExpectQuery(`SELECT oi.order_id, oi.id, oi.menu_item_id, mi.name, oi.quantity, oi.price`).
			WithArgs(pq.Array([]int{2, 1})).
			WillReturnRows(emptyItemRows().
				AddRow(1, 1, 1, "Burger", 2, 12.50).
				AddRow(2, 2, 2, "Fries", 1, 8.00))

		orders, err := repo.ListOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, 2, orders[0].ID)
		assert.Equal(t, "Fries", orders[0].Items[0].Name)
		assert.Equal(t, "Burger", orders[1].Items[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "table_number", "status", "total_amount", "created_at", "updated_at"}))

		orders, err := repo.ListOrders(ctx)
		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetOrder_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetOrder(context.Background(), 99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
