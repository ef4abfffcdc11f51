// README: Client aggregate, keyed naturally by lowercase email.
package client

import (
	"time"

	"transfers/internal/types"
)

type Client struct {
	ID        types.ID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Client) FullName() string {
	if c == nil {
		return ""
	}
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
