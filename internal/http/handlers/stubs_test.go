package handlers_test

import (
	"context"
	"encoding/json"

	"transfers/internal/document"
	"transfers/internal/infra"
	"transfers/internal/modules/catalog"
	"transfers/internal/modules/draft"
	"transfers/internal/modules/pricing"
	"transfers/internal/modules/reservation"
	"transfers/internal/types"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.Token
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Token, error) {
	return s.token, s.err
}

func makeVerifier(uid, role, email string) *stubTokenVerifier {
	claims := map[string]interface{}{}
	if role != "" {
		claims["role"] = role
	}
	return &stubTokenVerifier{token: &infra.Token{UID: uid, Email: email, Claims: claims}}
}

// stubReservations records the arguments of the last call and answers with
// the configured values.
type stubReservations struct {
	res     *reservation.Reservation
	created bool
	err     error
	events  []reservation.Event
	snap    *reservation.Snapshot

	lastCmd    reservation.CreateCommand
	lastCaller reservation.Caller
	lastAdmin  string
	lastPrice  types.Money
	lastPatch  reservation.Patch
	lastFilter reservation.ListFilter
	lastEmail  string
	calls      int
}

func (s *stubReservations) one() (*reservation.Reservation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func (s *stubReservations) Create(_ context.Context, cmd reservation.CreateCommand) (*reservation.Reservation, bool, error) {
	s.lastCmd = cmd
	r, err := s.one()
	return r, s.created, err
}

func (s *stubReservations) EstimatePrice(_ context.Context, q reservation.EstimateQuery) (reservation.Estimate, error) {
	s.calls++
	if s.err != nil {
		return reservation.Estimate{}, s.err
	}
	if s.res == nil {
		return reservation.Estimate{RequiresQuote: true}, nil
	}
	return reservation.Estimate{Price: s.res.TotalPrice, Found: true}, nil
}

func (s *stubReservations) Get(context.Context, types.ID) (*reservation.Reservation, error) {
	return s.one()
}

func (s *stubReservations) List(_ context.Context, f reservation.ListFilter) ([]reservation.Reservation, error) {
	s.lastFilter = f
	r, err := s.one()
	if err != nil {
		return nil, err
	}
	return []reservation.Reservation{*r}, nil
}

func (s *stubReservations) ListForEmail(_ context.Context, email string) ([]reservation.Reservation, error) {
	s.lastEmail = email
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []reservation.Reservation{}, nil
}

func (s *stubReservations) Events(context.Context, types.ID) ([]reservation.Event, error) {
	return s.events, nil
}

func (s *stubReservations) Snapshot(context.Context, types.ID) (*reservation.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func (s *stubReservations) SendQuote(_ context.Context, _ types.ID, price types.Money, adminUID string) (*reservation.Reservation, error) {
	s.lastPrice, s.lastAdmin = price, adminUID
	return s.one()
}

func (s *stubReservations) AcceptQuote(_ context.Context, _ types.ID, caller reservation.Caller) (*reservation.Reservation, error) {
	s.lastCaller = caller
	return s.one()
}

func (s *stubReservations) DeclineQuote(_ context.Context, _ types.ID, caller reservation.Caller) (*reservation.Reservation, error) {
	s.lastCaller = caller
	return s.one()
}

func (s *stubReservations) Confirm(_ context.Context, _ types.ID, adminUID string) (*reservation.Reservation, error) {
	s.lastAdmin = adminUID
	return s.one()
}

func (s *stubReservations) Complete(_ context.Context, _ types.ID, adminUID string) (*reservation.Reservation, error) {
	s.lastAdmin = adminUID
	return s.one()
}

func (s *stubReservations) Cancel(_ context.Context, _ types.ID, adminUID string) (*reservation.Reservation, error) {
	s.lastAdmin = adminUID
	return s.one()
}

func (s *stubReservations) UpdateFields(_ context.Context, _ types.ID, p reservation.Patch) (*reservation.Reservation, error) {
	s.lastPatch = p
	return s.one()
}

type stubCatalog struct {
	schema catalog.Schema
	err    error
}

func (s *stubCatalog) ListServices(context.Context, bool) ([]catalog.TransferService, error) {
	return []catalog.TransferService{{ID: "airport-transfers", Name: "Airport transfers", PricingMode: catalog.PricingFixed, Active: true}}, s.err
}

func (s *stubCatalog) ListVehicleTypes(context.Context) ([]catalog.VehicleType, error) {
	return []catalog.VehicleType{{ID: "van", Name: "Van", Capacity: 8}}, s.err
}

func (s *stubCatalog) ListLocations(context.Context) ([]catalog.Location, error) {
	return []catalog.Location{{ID: "cdg", Name: "Charles de Gaulle"}}, s.err
}

func (s *stubCatalog) Fields(context.Context, types.ID) (catalog.Schema, error) {
	return s.schema, s.err
}

func (s *stubCatalog) ReplaceFields(_ context.Context, _ types.ID, schema catalog.Schema) (catalog.Schema, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.schema = schema
	return schema, nil
}

func (s *stubCatalog) MoveField(context.Context, types.ID, string, catalog.Direction) (catalog.Schema, error) {
	return s.schema, s.err
}

type stubPricing struct {
	entry   *pricing.Entry
	err     error
	lastCmd pricing.CreateCommand
}

func (s *stubPricing) List(context.Context, pricing.ListFilter) ([]pricing.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []pricing.Entry{*s.entry}, nil
}

func (s *stubPricing) Get(context.Context, int64) (*pricing.Entry, error) { return s.entry, s.err }

func (s *stubPricing) Create(_ context.Context, cmd pricing.CreateCommand) (*pricing.Entry, error) {
	s.lastCmd = cmd
	return s.entry, s.err
}

func (s *stubPricing) UpdatePrice(context.Context, int64, types.Money) (*pricing.Entry, error) {
	return s.entry, s.err
}

func (s *stubPricing) Delete(context.Context, int64) error { return s.err }

type stubDrafts struct {
	draft *draft.Draft
	err   error
}

func (s *stubDrafts) Save(_ context.Context, id, owner string, payload json.RawMessage) (*draft.Draft, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &draft.Draft{ID: id, Owner: owner, Payload: payload}, nil
}

func (s *stubDrafts) Get(_ context.Context, owner, _ string) (*draft.Draft, error) {
	if s.err != nil {
		return nil, s.err
	}
	if owner == "" {
		return nil, draft.ErrBadRequest
	}
	if s.draft == nil || s.draft.Owner != owner {
		return nil, draft.ErrNotFound
	}
	return s.draft, nil
}

func (s *stubDrafts) Dismiss(context.Context, string, string) error { return s.err }

func (s *stubDrafts) Pending(context.Context, string) ([]draft.Draft, error) {
	return []draft.Draft{}, s.err
}

type stubVoucher struct {
	lastLabels *document.Labels
}

func (s *stubVoucher) Render(_ document.Data, labels *document.Labels) ([]byte, error) {
	s.lastLabels = labels
	return []byte("%PDF-1.3 stub"), nil
}
