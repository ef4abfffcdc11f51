package types

import "strings"

// ID is an opaque identifier. Catalog entities use slugs ("airport-transfers"),
// reservations use UUIDs.
type ID string

func (id ID) String() string {
	return string(id)
}

// NormalizeID trims and lowercases a slug-style identifier.
func NormalizeID(v string) ID {
	return ID(strings.ToLower(strings.TrimSpace(v)))
}
