package service

import (
	"context"
	"fmt"
	"strings"

	"mta/internal/domain"
	"mta/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.ItemRepository
	logger *zerolog.Logger
}

func NewItemService(repo domain.ItemRepository, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: componentLogger(logger, "item_service"),
	}
}

func (s *ItemService) ListItems(ctx context.Context) ([]*models.Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *ItemService) CreateItem(ctx context.Context, item *models.Item) error {
	if err := prepareItem(item); err != nil {
		return err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Msg("Item created")
	return nil
}

func (s *ItemService) UpdateItem(ctx context.Context, item *models.Item) error {
	if item.ID <= 0 {
		return domain.NewValidationError("id", "is required")
	}
	if err := prepareItem(item); err != nil {
		return err
	}
	return s.repo.UpdateItem(ctx, item)
}

func (s *ItemService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", id).Msg("Item deleted")
	return nil
}

func prepareItem(item *models.Item) error {
	if item == nil {
		return domain.NewValidationError("", "item is required")
	}
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	if err := validateStruct(item); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}
	return nil
}

func componentLogger(logger *zerolog.Logger, name string) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	l := logger.With().Str("component", name).Logger()
	return &l
}
