package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

var ErrItemNotFound = errors.New("item not found in cart")

// Service owns every cart mutation. The merge-on-add and
// remove-at-zero invariants live in domain.Cart; the service loads the
// cart, applies the mutation, and writes it back.
type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Get returns the user's cart, reading through the cache. A user without a
// stored cart gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.Error(err)) // log cache error but continue
		}

		stored, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			if errors.Is(errGet, ErrCartNotFound) {
				return &domain.Cart{
					UserID:    userID,
					Items:     nil,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}, nil
			}
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, stored); errSet != nil {
				s.logger.Warn("cart cache set failed", zap.Error(errSet))
			}
		}()

		return stored, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Add merges the item into the cart per domain.Cart.Add and persists the
// result.
func (s *Service) Add(ctx context.Context, userID string, item domain.LineItem) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		c.Add(item)
		return nil
	})
}

// Increase adds one unit to the product's line.
func (s *Service) Increase(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if !c.Increase(productID) {
			return ErrItemNotFound
		}
		return nil
	})
}

// Decrease removes one unit; a line reaching zero is dropped.
func (s *Service) Decrease(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if !c.Decrease(productID) {
			return ErrItemNotFound
		}
		return nil
	})
}

// Remove deletes the product's line unconditionally.
func (s *Service) Remove(ctx context.Context, userID string, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if !c.Remove(productID) {
			return ErrItemNotFound
		}
		return nil
	})
}

// Clear deletes the stored cart. A cart that never existed clears cleanly.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil && !errors.Is(err, ErrCartNotFound) {
		s.logger.Error("cart delete failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.invalidate(userID)
	return nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	current, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			return nil, err
		}
		current = &domain.Cart{UserID: userID}
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, current); err != nil {
		s.logger.Error("cart upsert failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidate(userID)
	return current, nil
}

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
