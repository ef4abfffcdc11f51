// README: Pricing service resolves flat route prices and manages the price table.
package pricing

import (
	"context"
	"errors"

	"transfers/internal/types"
)

var (
	ErrNotFound          = errors.New("pricing entry not found")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrRouteExists       = errors.New("a price already exists for this route or its reverse")
	ErrUpdateUnconfirmed = errors.New("update was sent but no row came back; refresh to confirm")
)

// Repository is the persistence boundary of the price table.
type Repository interface {
	Lookup(ctx context.Context, k Key) (*Entry, error)
	Get(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context, f ListFilter) ([]Entry, error)
	Create(ctx context.Context, e *Entry) error
	UpdatePrice(ctx context.Context, id int64, price types.Money) (*Entry, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	store    Repository
	currency string
}

func NewService(store Repository, currency string) *Service {
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return &Service{store: store, currency: currency}
}

// Resolve returns the flat price for q, trying the stored direction first and
// then the reverse route. found=false is a normal outcome: the caller falls
// back to manual quoting.
func (s *Service) Resolve(ctx context.Context, q Query) (types.Money, bool, error) {
	k := q.Key()
	if k.ServiceID == "" || k.VehicleTypeID == "" || k.Pickup == "" || k.Destination == "" {
		return types.Money{}, false, nil
	}

	e, err := s.store.Lookup(ctx, k)
	if errors.Is(err, ErrNotFound) {
		e, err = s.store.Lookup(ctx, k.Reverse())
	}
	if errors.Is(err, ErrNotFound) {
		return types.Money{}, false, nil
	}
	if err != nil {
		return types.Money{}, false, err
	}
	price := e.Price
	if price.Currency == "" {
		price.Currency = s.currency
	}
	return price, true, nil
}

type CreateCommand struct {
	ServiceID     types.ID
	VehicleTypeID types.ID
	Pickup        string
	Destination   string
	Price         types.Money
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Entry, error) {
	k := Query{
		ServiceID:     cmd.ServiceID,
		VehicleTypeID: cmd.VehicleTypeID,
		Pickup:        cmd.Pickup,
		Destination:   cmd.Destination,
	}.Key()
	if k.ServiceID == "" || k.VehicleTypeID == "" || k.Pickup == "" || k.Destination == "" || k.Pickup == k.Destination {
		return nil, ErrBadRequest
	}
	if cmd.Price.Amount < 0 {
		return nil, ErrInvalidPrice
	}

	for _, route := range []Key{k, k.Reverse()} {
		_, err := s.store.Lookup(ctx, route)
		if err == nil {
			return nil, ErrRouteExists
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	e := &Entry{
		ServiceID:             k.ServiceID,
		VehicleTypeID:         k.VehicleTypeID,
		PickupLocationID:      k.Pickup,
		DestinationLocationID: k.Destination,
		Price:                 s.withCurrency(cmd.Price),
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdatePrice reports ErrUpdateUnconfirmed when the write went through but
// returned no row; callers surface that as "refresh" rather than a failure.
func (s *Service) UpdatePrice(ctx context.Context, id int64, price types.Money) (*Entry, error) {
	if price.Amount < 0 {
		return nil, ErrInvalidPrice
	}
	e, err := s.store.UpdatePrice(ctx, id, s.withCurrency(price))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUpdateUnconfirmed
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) withCurrency(m types.Money) types.Money {
	if m.Currency == "" {
		m.Currency = s.currency
	}
	return m
}
