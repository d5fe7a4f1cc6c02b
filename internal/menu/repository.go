package menu

import (
	"context"
	"database/sql"
	"errors"

	"resto-pos/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*MenuItem, error)
	GetByID(ctx context.Context, id int) (*MenuItem, error)
	Create(ctx context.Context, input MenuItemInput) (*MenuItem, error)
	Update(ctx context.Context, id int, input MenuItemInput) (*MenuItem, error)
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const menuItemColumns = `id, name, description, price, category, is_available, created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (*MenuItem, error) {
	var m MenuItem
	var description sql.NullString
	err := row.Scan(
		&m.ID,
		&m.Name,
		&description,
		&m.Price,
		&m.Category,
		&m.IsAvailable,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	return &m, nil
}

func (r *repository) List(ctx context.Context) ([]*MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		ORDER BY category, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query menu items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []*MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE id = $1
	`

	m, err := scanMenuItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (r *repository) Create(ctx context.Context, input MenuItemInput) (*MenuItem, error) {
	query := `
		INSERT INTO menu_items (name, description, price, category, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + menuItemColumns + `
	`

	m, err := scanMenuItem(r.db.QueryRowContext(ctx, query,
		input.Name,
		input.Description,
		input.Price,
		input.Category,
		input.Available(),
	))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert menu item", zap.Error(err))
		return nil, err
	}

	return m, nil
}

func (r *repository) Update(ctx context.Context, id int, input MenuItemInput) (*MenuItem, error) {
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, is_available = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + menuItemColumns + `
	`

	m, err := scanMenuItem(r.db.QueryRowContext(ctx, query,
		input.Name,
		input.Description,
		input.Price,
		input.Category,
		input.Available(),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update menu item", zap.Error(err), zap.Int("menu_item_id", id))
		return nil, err
	}

	return m, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgFKViolation {
			return ErrMenuItemInUse
		}
		logger.FromCtx(ctx).Error("failed to delete menu item", zap.Error(err), zap.Int("menu_item_id", id))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrMenuItemNotFound
	}

	return nil
}
