// README: Booking form drafts kept server-side with a TTL and a per-owner dismissed set.
package draft

import (
	"encoding/json"
	"time"
)

// Draft is a partially filled booking form. Payload is opaque to the server.
type Draft struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (d *Draft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}
