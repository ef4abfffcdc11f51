package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"transfers/internal/types"
)

type FieldType string

const (
	FieldText                FieldType = "text"
	FieldNumber              FieldType = "number"
	FieldSelect              FieldType = "select"
	FieldTextarea            FieldType = "textarea"
	FieldDate                FieldType = "date"
	FieldTime                FieldType = "time"
	FieldLocationSelect      FieldType = "location_select"
	FieldAddressAutocomplete FieldType = "address_autocomplete"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldTextarea, FieldDate, FieldTime,
		FieldLocationSelect, FieldAddressAutocomplete:
		return true
	}
	return false
}

var (
	ErrInvalidSchema  = errors.New("invalid service field schema")
	ErrInvalidSubData = errors.New("invalid service data")
	ErrCannotMove     = errors.New("field cannot move further")
)

// Field describes one admin-defined form field of a service.
type Field struct {
	ServiceID     types.ID
	Key           string
	Type          FieldType
	Label         string
	Required      bool
	Min           *float64
	Max           *float64
	Default       *string
	Options       []string
	IsPickup      bool
	IsDestination bool
	Order         int
}

// Schema is the ordered field list of one service.
type Schema []Field

func (s Schema) Sorted() Schema {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b Field) int { return a.Order - b.Order })
	return out
}

func (s Schema) Pickup() (Field, bool) {
	for _, f := range s {
		if f.IsPickup {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) Destination() (Field, bool) {
	for _, f := range s {
		if f.IsDestination {
			return f, true
		}
	}
	return Field{}, false
}

// HasDestination reports whether reservations of this service need a destination.
func (s Schema) HasDestination() bool {
	_, ok := s.Destination()
	return ok
}

func schemaErr(key, msg string) error {
	if key == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, msg)
	}
	return fmt.Errorf("%w: field %q: %s", ErrInvalidSchema, key, msg)
}

// Validate checks the structural invariants of a schema.
func (s Schema) Validate() error {
	seen := map[string]bool{}
	pickups, destinations := 0, 0
	for _, f := range s {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return schemaErr("", "empty field key")
		}
		if seen[key] {
			return schemaErr(key, "duplicate key")
		}
		seen[key] = true
		if !f.Type.Valid() {
			return schemaErr(key, "unknown type "+string(f.Type))
		}
		if f.IsPickup && f.IsDestination {
			return schemaErr(key, "cannot be both pickup and destination")
		}
		if f.Type == FieldLocationSelect && !f.IsPickup && !f.IsDestination {
			return schemaErr(key, "location select must be flagged pickup or destination")
		}
		if f.Type == FieldSelect && len(f.Options) == 0 {
			return schemaErr(key, "select needs options")
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return schemaErr(key, "min greater than max")
		}
		if f.IsPickup {
			pickups++
		}
		if f.IsDestination {
			destinations++
		}
	}
	if pickups > 1 {
		return schemaErr("", "more than one pickup field")
	}
	if destinations > 1 {
		return schemaErr("", "more than one destination field")
	}
	return nil
}

// Values is validated service sub-data plus the extracted route endpoints.
type Values struct {
	Data        map[string]any
	Pickup      string
	Destination string
}

func dataErr(key, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSubData, key, msg)
}

// Parse validates raw sub-data against the schema. Unknown keys are rejected,
// missing optional fields take their default, and values are coerced to the
// field type (numbers to float64, everything else to trimmed strings).
func (s Schema) Parse(raw map[string]any) (Values, error) {
	out := Values{Data: map[string]any{}}
	known := map[string]Field{}
	for _, f := range s {
		known[f.Key] = f
	}
	for k := range raw {
		if _, ok := known[k]; !ok {
			return Values{}, dataErr(k, "unknown field")
		}
	}

	for _, f := range s.Sorted() {
		v, present := raw[f.Key]
		if present {
			if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
				present = false
			}
		}
		if !present || v == nil {
			if f.Default != nil {
				v = *f.Default
			} else if f.Required {
				return Values{}, dataErr(f.Key, "required")
			} else {
				continue
			}
		}

		parsed, err := f.coerce(v)
		if err != nil {
			return Values{}, err
		}
		out.Data[f.Key] = parsed

		if f.IsPickup {
			out.Pickup, _ = parsed.(string)
		}
		if f.IsDestination {
			out.Destination, _ = parsed.(string)
		}
	}
	return out, nil
}

func (f Field) coerce(v any) (any, error) {
	switch f.Type {
	case FieldNumber:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, dataErr(f.Key, "not a number")
		}
		if f.Min != nil && n < *f.Min {
			return nil, dataErr(f.Key, fmt.Sprintf("must be at least %v", *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return nil, dataErr(f.Key, fmt.Sprintf("must be at most %v", *f.Max))
		}
		return n, nil
	}

	str, err := cast.ToStringE(v)
	if err != nil {
		return nil, dataErr(f.Key, "not text")
	}
	str = strings.TrimSpace(str)

	switch f.Type {
	case FieldSelect:
		if !slices.Contains(f.Options, str) {
			return nil, dataErr(f.Key, "not one of the allowed options")
		}
	case FieldDate:
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return nil, dataErr(f.Key, "expected YYYY-MM-DD")
		}
	case FieldTime:
		if _, err := time.Parse("15:04", str); err != nil {
			return nil, dataErr(f.Key, "expected HH:MM")
		}
	case FieldLocationSelect:
		str = string(types.NormalizeID(str))
	}
	return str, nil
}

type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// Swap returns key's field and its neighbour in direction dir with their
// orders exchanged.
func (s Schema) Swap(key string, dir Direction) (Field, Field, error) {
	sorted := s.Sorted()
	idx := slices.IndexFunc(sorted, func(f Field) bool { return f.Key == key })
	if idx < 0 {
		return Field{}, Field{}, ErrFieldNotFound
	}
	other := idx - 1
	if dir == MoveDown {
		other = idx + 1
	} else if dir != MoveUp {
		return Field{}, Field{}, ErrBadRequest
	}
	if other < 0 || other >= len(sorted) {
		return Field{}, Field{}, ErrCannotMove
	}

	a, b := sorted[idx], sorted[other]
	a.Order, b.Order = b.Order, a.Order
	if a.Order == b.Order {
		// equal orders would make the swap a no-op
		if dir == MoveUp {
			a.Order = b.Order - 1
		} else {
			a.Order = b.Order + 1
		}
	}
	return a, b, nil
}
