package reservation

import (
	"context"
	"errors"

	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/types"
)

// Snapshot is a reservation joined with everything a notification or a
// voucher needs to render it.
type Snapshot struct {
	Reservation     Reservation
	Client          client.Client
	Service         catalog.TransferService
	VehicleType     catalog.VehicleType
	PickupName      string
	DestinationName string
}

func (s *Service) Snapshot(ctx context.Context, id types.ID) (*Snapshot, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cl, err := s.clients.Get(ctx, r.ClientID)
	if errors.Is(err, client.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	svc, err := s.catalog.GetService(ctx, r.ServiceID)
	if errors.Is(err, catalog.ErrServiceNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	vt, err := s.catalog.GetVehicleType(ctx, r.VehicleTypeID)
	if errors.Is(err, catalog.ErrVehicleTypeNotFound) {
		return nil, ErrVehicleTypeNotFound
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Reservation:     *r,
		Client:          *cl,
		Service:         *svc,
		VehicleType:     *vt,
		PickupName:      s.locationName(ctx, r.Pickup),
		DestinationName: s.locationName(ctx, r.DestinationOrEmpty()),
	}
	return snap, nil
}

// locationName resolves a location id to its display name; free-text
// addresses come back unchanged.
func (s *Service) locationName(ctx context.Context, v string) string {
	if v == "" {
		return ""
	}
	loc, err := s.catalog.GetLocation(ctx, types.ID(v))
	if err != nil {
		return v
	}
	return loc.Name
}
