package services

import (
	"context"

	"budgetd/internal/amqp"
	"budgetd/internal/core"
	"budgetd/internal/storage"
)

// CategoryService manages envelope categories.
type CategoryService struct {
	repo   *storage.Repository
	events *amqp.Client
}

func NewCategoryService(repo *storage.Repository, events *amqp.Client) *CategoryService {
	return &CategoryService{
		repo:   repo,
		events: events,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.repo.Queries().ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.repo.Queries().GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, name string) (core.Category, error) {
	if err := validateEntityName(name); err != nil {
		return core.Category{}, err
	}
	category, err := s.repo.Queries().InsertCategory(ctx, name)
	if err != nil {
		return core.Category{}, err
	}
	publishEvent(ctx, s.events, amqp.EntityCategory, amqp.ActionCreated, category.ID)
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}
	if err := s.repo.Queries().UpdateCategoryName(ctx, id, name); err != nil {
		return err
	}
	publishEvent(ctx, s.events, amqp.EntityCategory, amqp.ActionUpdated, id)
	return nil
}

// Delete removes the category; the store cascades deletion of its
// transactions and budget allocations.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteCategory(ctx, id); err != nil {
		return err
	}
	publishEvent(ctx, s.events, amqp.EntityCategory, amqp.ActionDeleted, id)
	return nil
}
