package reservation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/modules/pricing"
	"transfers/internal/outbox"
	"transfers/internal/types"
)

type memStore struct {
	rows         map[types.ID]*Reservation
	events       []Event
	gets         int
	statusWrites int
	fieldWrites  int
	failFields   error
}

func newMemStore() *memStore {
	return &memStore{rows: map[types.ID]*Reservation{}}
}

func (m *memStore) put(r Reservation) {
	cp := r
	m.rows[r.ID] = &cp
}

func (m *memStore) Create(_ context.Context, r *Reservation) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.put(*r)
	return nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Reservation, error) {
	m.gets++
	r, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) FindDuplicate(_ context.Context, k DuplicateKey) (*Reservation, error) {
	for _, r := range m.rows {
		if r.DuplicateKey() == k {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdateStatus(_ context.Context, id types.ID, to Status) (*Reservation, error) {
	m.statusWrites++
	r, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateFields(_ context.Context, id types.ID, p Patch) (*Reservation, error) {
	m.fieldWrites++
	if m.failFields != nil {
		return nil, m.failFields
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.TotalPrice != nil {
		r.TotalPrice = *p.TotalPrice
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Passengers != nil {
		r.Passengers = *p.Passengers
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) List(_ context.Context, f ListFilter) ([]Reservation, error) {
	var out []Reservation
	for _, r := range m.rows {
		if f.ClientID != "" && r.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) AppendEvent(_ context.Context, e *Event) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *memStore) Events(_ context.Context, id types.ID) ([]Event, error) {
	var out []Event
	for _, e := range m.events {
		if e.ReservationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	services  map[types.ID]catalog.TransferService
	vehicles  map[types.ID]catalog.VehicleType
	locations map[types.ID]catalog.Location
	fields    map[types.ID]catalog.Schema
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		services: map[types.ID]catalog.TransferService{
			"airport-transfers": {ID: "airport-transfers", Name: "Airport transfer", PricingMode: catalog.PricingFixed, Active: true},
			"city-tours":        {ID: "city-tours", Name: "City tour", PricingMode: catalog.PricingQuote, Active: true},
			"retired":           {ID: "retired", Name: "Retired", PricingMode: catalog.PricingFixed, Active: false},
		},
		vehicles: map[types.ID]catalog.VehicleType{
			"car": {ID: "car", Name: "Sedan", Capacity: 3},
			"van": {ID: "van", Name: "Van", Capacity: 8},
		},
		locations: map[types.ID]catalog.Location{
			"cdg":   {ID: "cdg", Name: "Charles de Gaulle Airport"},
			"paris": {ID: "paris", Name: "Paris"},
		},
		fields: map[types.ID]catalog.Schema{
			"airport-transfers": {
				{Key: "pickup", Type: catalog.FieldLocationSelect, IsPickup: true, Order: 1},
				{Key: "destination", Type: catalog.FieldLocationSelect, IsDestination: true, Order: 2},
				{Key: "flight_number", Type: catalog.FieldText, Order: 3},
			},
			"city-tours": {
				{Key: "pickup_address", Type: catalog.FieldAddressAutocomplete, IsPickup: true, Order: 1},
			},
		},
	}
}

func (c *fakeCatalog) GetService(_ context.Context, id types.ID) (*catalog.TransferService, error) {
	s, ok := c.services[id]
	if !ok {
		return nil, catalog.ErrServiceNotFound
	}
	return &s, nil
}

func (c *fakeCatalog) GetVehicleType(_ context.Context, id types.ID) (*catalog.VehicleType, error) {
	v, ok := c.vehicles[id]
	if !ok {
		return nil, catalog.ErrVehicleTypeNotFound
	}
	return &v, nil
}

func (c *fakeCatalog) GetLocation(_ context.Context, id types.ID) (*catalog.Location, error) {
	l, ok := c.locations[types.NormalizeID(string(id))]
	if !ok {
		return nil, catalog.ErrLocationNotFound
	}
	return &l, nil
}

func (c *fakeCatalog) Fields(_ context.Context, id types.ID) (catalog.Schema, error) {
	return c.fields[id], nil
}

type fakeClients struct {
	byID map[types.ID]*client.Client
}

func newFakeClients() *fakeClients {
	return &fakeClients{byID: map[types.ID]*client.Client{}}
}

func (f *fakeClients) Upsert(_ context.Context, cmd client.UpsertCommand) (*client.Client, error) {
	email, err := client.NormalizeEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	for _, c := range f.byID {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	c := &client.Client{
		ID:        types.ID("client-" + strings.Split(email, "@")[0]),
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Email:     email,
		Phone:     cmd.Phone,
	}
	f.byID[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeClients) Get(_ context.Context, id types.ID) (*client.Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) GetByEmail(_ context.Context, email string) (*client.Client, error) {
	for _, c := range f.byID {
		if c.Email == strings.ToLower(email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, client.ErrNotFound
}

// priceTable is a pricing.Repository holding directional rows.
type priceTable map[pricing.Key]types.Money

func (t priceTable) Lookup(_ context.Context, k pricing.Key) (*pricing.Entry, error) {
	p, ok := t[k]
	if !ok {
		return nil, pricing.ErrNotFound
	}
	return &pricing.Entry{
		ServiceID:             k.ServiceID,
		VehicleTypeID:         k.VehicleTypeID,
		PickupLocationID:      k.Pickup,
		DestinationLocationID: k.Destination,
		Price:                 p,
	}, nil
}

func (t priceTable) Get(context.Context, int64) (*pricing.Entry, error) { return nil, pricing.ErrNotFound }

func (t priceTable) List(context.Context, pricing.ListFilter) ([]pricing.Entry, error) {
	return nil, nil
}

func (t priceTable) Create(context.Context, *pricing.Entry) error { return errors.New("read only") }

func (t priceTable) UpdatePrice(context.Context, int64, types.Money) (*pricing.Entry, error) {
	return nil, pricing.ErrNotFound
}

func (t priceTable) Delete(context.Context, int64) error { return pricing.ErrNotFound }

type recordingQueue struct {
	tasks []outbox.Task
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, t outbox.Task) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, t)
	return nil
}

func (q *recordingQueue) templates() []string {
	out := make([]string, len(q.tasks))
	for i, t := range q.tasks {
		out[i] = string(t.Audience) + ":" + t.Template
	}
	return out
}

func clientCmd(email string) client.UpsertCommand {
	return client.UpsertCommand{FirstName: "Ana", LastName: "Silva", Email: email}
}
