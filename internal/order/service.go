package order

import (
	"context"
	"fmt"

	"resto-pos/internal/logger"
	"resto-pos/internal/validation"

	"go.uber.org/zap"
)

// Service defines the business logic for orders.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)
	Update(ctx context.Context, id int, input UpdateOrderInput) (*Order, error)
	UpdateStatus(ctx context.Context, id int, rawStatus string) (*Order, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Order, error)
	Get(ctx context.Context, id int) (*Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("table_number", input.TableNumber),
	)

	// Validation happens before the transaction starts; a rejected request
	// never touches the store.
	if err := validateTableNumber(input.TableNumber); err != nil {
		return nil, err
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	o, err := s.repo.CreateOrder(ctx, input)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Int("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
	)
	return o, nil
}

func (s *service) Update(ctx context.Context, id int, input UpdateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrder"),
		zap.Int("order_id", id),
	)

	if err := validateTableNumber(input.TableNumber); err != nil {
		return nil, err
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	status, err := ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.UpdateOrder(ctx, id, input.TableNumber, status, input.Items)
	if err != nil {
		log.Warn("failed to update order", zap.Error(err))
		return nil, err
	}

	log.Info("order updated", zap.Float64("total_amount", o.TotalAmount))
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int, rawStatus string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderStatus"),
		zap.Int("order_id", id),
		zap.String("status", rawStatus),
	)

	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		log.Warn("failed to update order status", zap.Error(err))
		return nil, err
	}

	log.Info("order status updated")
	return o, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteOrder"),
		zap.Int("order_id", id),
	)

	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		log.Warn("failed to delete order", zap.Error(err))
		return err
	}

	log.Info("order deleted")
	return nil
}

func (s *service) List(ctx context.Context) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListOrders"),
	)

	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	log.Debug("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (s *service) Get(ctx context.Context, id int) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func validateTableNumber(n int) error {
	if n < 1 {
		return validation.ValidationError{Field: "table_number", Message: "table number must be a positive integer"}
	}
	return nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return validation.ValidationError{Field: "items", Message: "order must include at least one item"}
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.MenuItemID < 1 {
			return validation.ValidationError{Field: prefix + ".menu_item_id", Message: "menu_item_id is required"}
		}
		if item.Quantity < 1 {
			return validation.ValidationError{Field: prefix + ".quantity", Message: "quantity must be at least 1"}
		}
	}

	return nil
}
