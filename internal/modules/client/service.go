// README: Client service normalizes contact details and upserts by email.
package client

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"transfers/internal/types"
)

var (
	ErrNotFound     = errors.New("client not found")
	ErrInvalidEmail = errors.New("invalid email address")
)

type Repository interface {
	Get(ctx context.Context, id types.ID) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	Upsert(ctx context.Context, c *Client) (*Client, error)
}

type Service struct {
	store Repository
}

func NewService(store Repository) *Service {
	return &Service{store: store}
}

type UpsertCommand struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// NormalizeEmail lowercases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertCommand) (*Client, error) {
	email, err := NormalizeEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	return s.store.Upsert(ctx, &Client{
		ID:        types.ID(uuid.NewString()),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(cmd.Phone),
	})
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Client, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Client, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.store.GetByEmail(ctx, email)
}
