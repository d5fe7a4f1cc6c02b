package menu

import (
	"context"

	"resto-pos/internal/logger"
	"resto-pos/internal/validation"

	"go.uber.org/zap"
)

// Service defines the business logic for menu items.
type Service interface {
	List(ctx context.Context) ([]*MenuItem, error)
	Get(ctx context.Context, id int) (*MenuItem, error)
	Create(ctx context.Context, input MenuItemInput) (*MenuItem, error)
	Update(ctx context.Context, id int, input MenuItemInput) (*MenuItem, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*MenuItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListMenuItems"),
	)

	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list menu items", zap.Error(err))
		return nil, err
	}

	log.Debug("list menu items success", zap.Int("count", len(items)))
	return items, nil
}

func (s *service) Get(ctx context.Context, id int) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input MenuItemInput) (*MenuItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateMenuItem"),
		zap.String("name", input.Name),
	)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, input)
	if err != nil {
		log.Error("failed to create menu item", zap.Error(err))
		return nil, err
	}

	log.Info("menu item created", zap.Int("menu_item_id", item.ID))
	return item, nil
}

func (s *service) Update(ctx context.Context, id int, input MenuItemInput) (*MenuItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateMenuItem"),
		zap.Int("menu_item_id", id),
	)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, input)
	if err != nil {
		log.Error("failed to update menu item", zap.Error(err))
		return nil, err
	}

	log.Info("menu item updated")
	return item, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteMenuItem"),
		zap.Int("menu_item_id", id),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("failed to delete menu item", zap.Error(err))
		return err
	}

	log.Info("menu item deleted")
	return nil
}

func validateInput(input MenuItemInput) error {
	if input.Name == "" {
		return validation.ValidationError{Field: "name", Message: "name is required"}
	}
	if len(input.Name) > 100 {
		return validation.ValidationError{Field: "name", Message: "name must be less than 100 characters"}
	}
	if input.Price <= 0 {
		return validation.ValidationError{Field: "price", Message: "price must be greater than zero"}
	}
	if input.Category == "" {
		return validation.ValidationError{Field: "category", Message: "category is required"}
	}
	if len(input.Category) > 50 {
		return validation.ValidationError{Field: "category", Message: "category must be less than 50 characters"}
	}
	return nil
}
