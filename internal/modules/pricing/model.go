// README: Pricing entries: flat prices per (service, vehicle type, route).
package pricing

import (
	"time"

	"transfers/internal/types"
)

// Entry is one directional row of the flat price table. A route and its
// reverse share the same price; only one of the two is ever stored.
type Entry struct {
	ID                    int64
	ServiceID             types.ID
	VehicleTypeID         types.ID
	PickupLocationID      types.ID
	DestinationLocationID types.ID
	Price                 types.Money
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Query identifies the price being asked for.
type Query struct {
	ServiceID     types.ID
	VehicleTypeID types.ID
	Pickup        string
	Destination   string
}

// Key is a fully normalized lookup key.
type Key struct {
	ServiceID     types.ID
	VehicleTypeID types.ID
	Pickup        types.ID
	Destination   types.ID
}

func (k Key) Reverse() Key {
	return Key{
		ServiceID:     k.ServiceID,
		VehicleTypeID: k.VehicleTypeID,
		Pickup:        k.Destination,
		Destination:   k.Pickup,
	}
}

func (q Query) Key() Key {
	return Key{
		ServiceID:     types.NormalizeID(string(q.ServiceID)),
		VehicleTypeID: types.NormalizeID(string(q.VehicleTypeID)),
		Pickup:        types.NormalizeID(q.Pickup),
		Destination:   types.NormalizeID(q.Destination),
	}
}

type ListFilter struct {
	ServiceID     types.ID
	VehicleTypeID types.ID
}
