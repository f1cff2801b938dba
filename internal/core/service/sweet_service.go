package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/api/metrics"
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// DedupChecker abstracts the purchase idempotency store (Redis).
type DedupChecker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// SweetService implements CRUD, search and the stock-mutating operations.
type SweetService struct {
	repo   ports.SweetRepository
	dedup  DedupChecker // optional; nil disables idempotency checks
	logger zerolog.Logger
}

func NewSweetService(repo ports.SweetRepository, dedup DedupChecker, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, dedup: dedup, logger: logger}
}

func (s *SweetService) ListSweets(ctx context.Context) ([]*domain.Sweet, error) {
	return s.repo.List(ctx)
}

func (s *SweetService) GetSweet(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SweetService) SearchSweets(ctx context.Context, filter ports.SearchSweetsFilter) ([]*domain.Sweet, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice must not exceed maxPrice", domain.ErrInvalidInput)
	}
	return s.repo.Search(ctx, filter)
}

func (s *SweetService) CreateSweet(ctx context.Context, input ports.CreateSweetInput) (*domain.Sweet, error) {
	if input.Name == "" || input.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", domain.ErrInvalidInput)
	}
	if input.Price < 0 || input.Quantity < 0 {
		return nil, fmt.Errorf("%w: price and quantity must be non-negative", domain.ErrInvalidInput)
	}

	created, err := s.repo.Create(ctx, &domain.Sweet{
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
		Quantity: input.Quantity,
	})
	if err != nil {
		return nil, err
	}

	metrics.SweetsCreatedTotal.Inc()
	s.logger.Info().Str("sweet_id", created.ID).Str("name", created.Name).Msg("sweet created")
	return created, nil
}

// UpdateSweet applies a partial update; unspecified fields keep their
// current value. An update with no fields is a no-op returning the
// unchanged record.
func (s *SweetService) UpdateSweet(ctx context.Context, id string, input ports.UpdateSweetInput) (*domain.Sweet, error) {
	if input.Price != nil && *input.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidInput)
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", domain.ErrInvalidInput)
	}
	if input.Name != nil && *input.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}

	if input.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.Update(ctx, id, input)
}

func (s *SweetService) DeleteSweet(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase atomically decrements stock. The availability check and the
// write are one conditional update in the repository, so concurrent
// purchases can never jointly overdraw a sweet.
func (s *SweetService) Purchase(ctx context.Context, input ports.PurchaseInput) (*ports.StockResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	if input.IdempotencyKey != "" && s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("sweet_id", input.ID).Msg("idempotency check failed, processing anyway")
		} else if seen {
			sweet, err := s.repo.FindByID(ctx, input.ID)
			if err != nil {
				return nil, err
			}
			s.logger.Info().Str("sweet_id", input.ID).Str("idempotency_key", input.IdempotencyKey).Msg("idempotent purchase replay")
			return &ports.StockResult{Message: "purchase already processed", Sweet: sweet}, nil
		}
	}

	sweet, err := s.repo.DecrementQuantity(ctx, input.ID, input.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.PurchasesTotal.WithLabelValues("insufficient_stock").Inc()
		}
		return nil, err
	}

	if input.IdempotencyKey != "" && s.dedup != nil {
		if markErr := s.dedup.Mark(ctx, input.IdempotencyKey); markErr != nil {
			s.logger.Warn().Err(markErr).Str("sweet_id", input.ID).Msg("failed to set idempotency key")
		}
	}

	metrics.PurchasesTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("sweet_id", sweet.ID).Int64("quantity", input.Quantity).Int64("remaining", sweet.Quantity).Msg("sweet purchased")

	return &ports.StockResult{
		Message: fmt.Sprintf("Successfully purchased %d %s(s)", input.Quantity, sweet.Name),
		Sweet:   sweet,
	}, nil
}

// Restock atomically increments stock. Admin-only at the route level; the
// service has no awareness of caller identity.
func (s *SweetService) Restock(ctx context.Context, id string, quantity int64) (*ports.StockResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	sweet, err := s.repo.IncrementQuantity(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	metrics.RestocksTotal.Inc()
	s.logger.Info().Str("sweet_id", sweet.ID).Int64("quantity", quantity).Int64("in_stock", sweet.Quantity).Msg("sweet restocked")

	return &ports.StockResult{
		Message: fmt.Sprintf("Successfully restocked %d %s(s)", quantity, sweet.Name),
		Sweet:   sweet,
	}, nil
}
