package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register hashes the password and creates the user.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate resolves credentials to a user. A missing user and a wrong
// password return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.store.GetByID(ctx, id)
}

// SaveAddress persists the shipping address and returns the stored record.
func (s *Service) SaveAddress(ctx context.Context, id string, addr domain.ShippingAddress) (*domain.User, error) {
	return s.store.UpdateAddress(ctx, id, addr)
}
