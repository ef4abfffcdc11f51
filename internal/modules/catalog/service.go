// README: Catalog service exposes services, vehicle types, locations and per-service field schemas.
package catalog

import (
	"context"
	"errors"
	"strings"

	"transfers/internal/types"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrFieldNotFound       = errors.New("service field not found")
	ErrBadRequest          = errors.New("bad request")
)

type Repository interface {
	GetService(ctx context.Context, id types.ID) (*TransferService, error)
	ListServices(ctx context.Context, activeOnly bool) ([]TransferService, error)
	GetVehicleType(ctx context.Context, id types.ID) (*VehicleType, error)
	ListVehicleTypes(ctx context.Context) ([]VehicleType, error)
	GetLocation(ctx context.Context, id types.ID) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	Fields(ctx context.Context, serviceID types.ID) (Schema, error)
	ReplaceFields(ctx context.Context, serviceID types.ID, schema Schema) error
	UpdateFieldOrders(ctx context.Context, serviceID types.ID, a, b Field) error
}

type Service struct {
	store Repository
}

func NewService(store Repository) *Service {
	return &Service{store: store}
}

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]TransferService, error) {
	return s.store.ListServices(ctx, activeOnly)
}

func (s *Service) GetService(ctx context.Context, id types.ID) (*TransferService, error) {
	id = types.NormalizeID(string(id))
	if id == "" {
		return nil, ErrServiceNotFound
	}
	return s.store.GetService(ctx, id)
}

func (s *Service) ListVehicleTypes(ctx context.Context) ([]VehicleType, error) {
	return s.store.ListVehicleTypes(ctx)
}

func (s *Service) GetVehicleType(ctx context.Context, id types.ID) (*VehicleType, error) {
	id = types.NormalizeID(string(id))
	if id == "" {
		return nil, ErrVehicleTypeNotFound
	}
	return s.store.GetVehicleType(ctx, id)
}

func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	return s.store.ListLocations(ctx)
}

func (s *Service) GetLocation(ctx context.Context, id types.ID) (*Location, error) {
	id = types.NormalizeID(string(id))
	if id == "" {
		return nil, ErrLocationNotFound
	}
	return s.store.GetLocation(ctx, id)
}

// Fields returns the service schema in display order.
func (s *Service) Fields(ctx context.Context, serviceID types.ID) (Schema, error) {
	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	schema, err := s.store.Fields(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	return schema.Sorted(), nil
}

// ReplaceFields validates and stores a complete schema. Fields without an
// explicit order keep their position in the submitted list.
func (s *Service) ReplaceFields(ctx context.Context, serviceID types.ID, schema Schema) (Schema, error) {
	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	out := make(Schema, len(schema))
	for i, f := range schema {
		f.ServiceID = svc.ID
		f.Key = strings.TrimSpace(f.Key)
		f.Label = strings.TrimSpace(f.Label)
		if f.Label == "" {
			f.Label = f.Key
		}
		if f.Order == 0 {
			f.Order = i + 1
		}
		if f.Type != FieldSelect {
			f.Options = nil
		}
		out[i] = f
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceFields(ctx, svc.ID, out); err != nil {
		return nil, err
	}
	return out.Sorted(), nil
}

// MoveField swaps a field with its neighbour in the given direction.
func (s *Service) MoveField(ctx context.Context, serviceID types.ID, key string, dir Direction) (Schema, error) {
	schema, err := s.Fields(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	a, b, err := schema.Swap(key, dir)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateFieldOrders(ctx, a.ServiceID, a, b); err != nil {
		return nil, err
	}
	for i := range schema {
		switch schema[i].Key {
		case a.Key:
			schema[i].Order = a.Order
		case b.Key:
			schema[i].Order = b.Order
		}
	}
	return schema.Sorted(), nil
}
