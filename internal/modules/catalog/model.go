// README: Catalog entities referenced by reservations: services, vehicle types, locations.
package catalog

import (
	"time"

	"transfers/internal/types"
)

type PricingMode string

const (
	// PricingFixed services resolve their price from the route price table.
	PricingFixed PricingMode = "fixed"
	// PricingQuote services are always priced manually by an admin.
	PricingQuote PricingMode = "quote"
)

type TransferService struct {
	ID          types.ID
	Name        string
	Description string
	PricingMode PricingMode
	Active      bool
	CreatedAt   time.Time
}

// HasDeterministicPricing reports whether the price table applies to this service.
func (s *TransferService) HasDeterministicPricing() bool {
	return s != nil && s.PricingMode == PricingFixed
}

type VehicleType struct {
	ID          types.ID
	Name        string
	Description string
	Capacity    int
	CreatedAt   time.Time
}

type Location struct {
	ID        types.ID
	Name      string
	CreatedAt time.Time
}
