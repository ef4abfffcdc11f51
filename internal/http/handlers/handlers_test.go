// README: Router-level tests for auth checks, status codes and error mapping.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "transfers/internal/http"
	"transfers/internal/document"
	"transfers/internal/infra"
	"transfers/internal/maps"
	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/modules/draft"
	"transfers/internal/modules/pricing"
	"transfers/internal/modules/reservation"
	"transfers/internal/types"
)

type testDeps struct {
	reservations *stubReservations
	catalog      *stubCatalog
	pricing      *stubPricing
	drafts       *stubDrafts
	voucher      *stubVoucher
}

func newTestDeps() *testDeps {
	return &testDeps{
		reservations: &stubReservations{res: sampleReservation()},
		catalog:      &stubCatalog{},
		pricing:      &stubPricing{entry: &pricing.Entry{ID: 7, ServiceID: "airport-transfers", VehicleTypeID: "car", PickupLocationID: "cdg", DestinationLocationID: "paris", Price: types.Money{Amount: 8000, Currency: "EUR"}}},
		drafts:       &stubDrafts{},
		voucher:      &stubVoucher{},
	}
}

// buildTestRouter wires the full gin engine with stub services.
func buildTestRouter(d *testDeps, verifier infra.TokenVerifier) http.Handler {
	gin.SetMode(gin.TestMode)
	var places *maps.PlacesService
	return httptransport.NewServer(httptransport.ServerDeps{
		Catalog:      d.catalog,
		Pricing:      d.pricing,
		Reservations: d.reservations,
		Drafts:       d.drafts,
		Places:       places,
		Voucher:      d.voucher,
		Verifier:     verifier,
		Language:     "en",
	}).Routes()
}

func sampleReservation() *reservation.Reservation {
	dest := "cdg"
	return &reservation.Reservation{
		ID:            "3f2a9c1e-1111-4222-8333-444455556666",
		ClientID:      "client-1",
		ServiceID:     "airport-transfers",
		VehicleTypeID: "car",
		Date:          "2026-11-02",
		Time:          "07:30",
		Pickup:        "paris",
		Destination:   &dest,
		Passengers:    2,
		TotalPrice:    types.Money{Amount: 8000, Currency: "EUR"},
		Status:        reservation.StatusPending,
		CreatedAt:     time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func doRequest(r http.Handler, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const resPath = "/api/reservations/3f2a9c1e-1111-4222-8333-444455556666"
const adminResPath = "/api/admin/reservations/3f2a9c1e-1111-4222-8333-444455556666"

func TestHealth(t *testing.T) {
	w := doRequest(buildTestRouter(newTestDeps(), makeVerifier("", "", "")), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateReservation_CreatedThenDuplicate(t *testing.T) {
	d := newTestDeps()
	d.reservations.created = true
	r := buildTestRouter(d, makeVerifier("", "", ""))
	body := map[string]any{
		"first_name":      "Ana",
		"email":           "ana@example.com",
		"service_id":      "airport-transfers",
		"vehicle_type_id": "car",
		"date":            "2026-11-02",
		"time":            "07:30",
		"pickup":          "paris",
		"destination":     "cdg",
		"passengers":      2,
		"sub_data":        map[string]any{"flight": "AF123"},
	}

	w := doRequest(r, http.MethodPost, "/api/reservations", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, true, out["created"])
	res := out["reservation"].(map[string]any)
	price := res["total_price"].(map[string]any)
	assert.Equal(t, 80.0, price["amount"])
	assert.Equal(t, "80.00", price["formatted"])
	assert.Equal(t, "pending", res["status"])
	assert.Equal(t, "AF123", d.reservations.lastCmd.SubData["flight"])
	assert.Equal(t, types.ID("airport-transfers"), d.reservations.lastCmd.ServiceID)

	d.reservations.created = false
	w = doRequest(r, http.MethodPost, "/api/reservations", body, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["created"])
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: passengers must be positive", reservation.ErrBadRequest), http.StatusBadRequest},
		{"invalid email", client.ErrInvalidEmail, http.StatusBadRequest},
		{"bad sub data", fmt.Errorf("%w: %w", reservation.ErrBadRequest, catalog.ErrInvalidSubData), http.StatusBadRequest},
		{"unknown service", reservation.ErrServiceNotFound, http.StatusNotFound},
		{"unknown vehicle", reservation.ErrVehicleTypeNotFound, http.StatusNotFound},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.reservations.err = tt.err
			w := doRequest(buildTestRouter(d, makeVerifier("", "", "")), http.MethodPost, "/api/reservations", map[string]any{"email": "x@example.com"}, "")
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusInternalServerError {
				assert.Equal(t, "internal error", decode(t, w)["error"])
			}
		})
	}
}

func TestCreateReservation_InvalidJSON(t *testing.T) {
	d := newTestDeps()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	buildTestRouter(d, makeVerifier("", "", "")).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, d.reservations.calls)
}

func TestEstimate(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("", "", ""))
	w := doRequest(r, http.MethodPost, "/api/prices/estimate", map[string]any{
		"service_id": "airport-transfers", "vehicle_type_id": "car", "pickup": "cdg", "destination": "paris",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "80.00", out["price"].(map[string]any)["formatted"])

	d.reservations.res = nil
	w = doRequest(r, http.MethodPost, "/api/prices/estimate", map[string]any{"service_id": "city-tours", "vehicle_type_id": "car"}, "")
	out = decode(t, w)
	assert.Equal(t, true, out["requires_quote"])
	assert.NotContains(t, out, "price")
}

func TestClientRoutes_RequireAuth(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, &stubTokenVerifier{err: errors.New("expired")})

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/api/me/reservations", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, resPath+"/quote/accept", nil, "Bearer bad").Code)
	assert.Zero(t, d.reservations.calls)
}

func TestQuoteResponse_UsesCallerEmail(t *testing.T) {
	d := newTestDeps()
	d.reservations.res.Status = reservation.StatusQuoteAccepted
	r := buildTestRouter(d, makeVerifier("uid-1", "", "Ana@Example.com"))

	w := doRequest(r, http.MethodPost, resPath+"/quote/accept", nil, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reservation.Caller{UID: "uid-1", Email: "ana@example.com"}, d.reservations.lastCaller)

	d.reservations.err = reservation.ErrForbidden
	w = doRequest(r, http.MethodPost, resPath+"/quote/decline", nil, "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)

	d.reservations.err = reservation.ErrInvalidState
	w = doRequest(r, http.MethodPost, resPath+"/quote/decline", nil, "Bearer t")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuoteResponse_TokenWithoutEmail(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("uid-1", "", ""))

	w := doRequest(r, http.MethodPost, resPath+"/quote/accept", nil, "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, d.reservations.calls)
}

func TestMyReservations(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("uid-1", "", "ana@example.com"))

	w := doRequest(r, http.MethodGet, "/api/me/reservations", nil, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", d.reservations.lastEmail)
	assert.Equal(t, []any{}, decode(t, w)["reservations"])
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("uid-1", "", "ana@example.com"))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/reservations"},
		{http.MethodPost, adminResPath + "/confirm"},
		{http.MethodGet, "/api/admin/pricing"},
		{http.MethodPut, "/api/admin/services/airport-transfers/fields"},
	} {
		w := doRequest(r, tc.method, tc.path, map[string]any{}, "Bearer t")
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
	assert.Zero(t, d.reservations.calls)
}

func TestAdminList_PassesFilter(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodGet, "/api/admin/reservations?status=quote_requested&limit=20&offset=40", nil, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reservation.ListFilter{Status: reservation.StatusQuoteRequested, Limit: 20, Offset: 40}, d.reservations.lastFilter)
}

func TestAdminGet_IncludesEvents(t *testing.T) {
	d := newTestDeps()
	d.reservations.events = []reservation.Event{{FromStatus: reservation.StatusNone, ToStatus: reservation.StatusPending, Action: reservation.ActionCreate, ActorType: reservation.ActorClient}}
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodGet, adminResPath, nil, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	events := decode(t, w)["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "create", events[0].(map[string]any)["action"])
}

func TestAdminSendQuote(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPost, adminResPath+"/quote", map[string]any{"price": 120}, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(12000), d.reservations.lastPrice.Amount)
	assert.Equal(t, "admin-1", d.reservations.lastAdmin)

	d.reservations.err = reservation.ErrInvalidPrice
	w = doRequest(r, http.MethodPost, adminResPath+"/quote", map[string]any{"price": 0}, "Bearer t")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price must be greater than zero", decode(t, w)["error"])
}

func TestAdminLifecycleActions(t *testing.T) {
	for _, action := range []string{"confirm", "complete", "cancel"} {
		t.Run(action, func(t *testing.T) {
			d := newTestDeps()
			r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

			w := doRequest(r, http.MethodPost, adminResPath+"/"+action, nil, "Bearer t")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "admin-1", d.reservations.lastAdmin)

			d.reservations.err = reservation.ErrInvalidState
			w = doRequest(r, http.MethodPost, adminResPath+"/"+action, nil, "Bearer t")
			assert.Equal(t, http.StatusConflict, w.Code)

			d.reservations.err = reservation.ErrNotFound
			w = doRequest(r, http.MethodPost, adminResPath+"/"+action, nil, "Bearer t")
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestAdminPatch(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPatch, adminResPath, map[string]any{"total_price": 95.5, "notes": "gate B"}, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, d.reservations.lastPatch.TotalPrice)
	assert.Equal(t, int64(9550), d.reservations.lastPatch.TotalPrice.Amount)
	assert.Equal(t, "gate B", *d.reservations.lastPatch.Notes)
	assert.Nil(t, d.reservations.lastPatch.Date)

	d.reservations.err = reservation.ErrPriceLocked
	w = doRequest(r, http.MethodPatch, adminResPath, map[string]any{"total_price": 99}, "Bearer t")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminInvalidPathID(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPost, "/api/admin/reservations/bad%20id/confirm", nil, "Bearer t")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, d.reservations.calls)
}

func TestAdminVoucherPDF(t *testing.T) {
	d := newTestDeps()
	d.reservations.snap = &reservation.Snapshot{Reservation: *sampleReservation()}
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodGet, adminResPath+"/pdf?lang=fr", nil, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reservation-3f2a9c1e.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	assert.Same(t, &document.French, d.voucher.lastLabels)
}

func TestPricingAdmin(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPost, "/api/admin/pricing", map[string]any{
		"service_id": "airport-transfers", "vehicle_type_id": "car", "pickup": "cdg", "destination": "paris", "price": 80,
	}, "Bearer t")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(8000), d.pricing.lastCmd.Price.Amount)

	d.pricing.err = pricing.ErrRouteExists
	w = doRequest(r, http.MethodPost, "/api/admin/pricing", map[string]any{"service_id": "airport-transfers"}, "Bearer t")
	assert.Equal(t, http.StatusConflict, w.Code)

	d.pricing.err = pricing.ErrUpdateUnconfirmed
	w = doRequest(r, http.MethodPut, "/api/admin/pricing/7", map[string]any{"price": 85}, "Bearer t")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "unconfirmed", decode(t, w)["status"])

	d.pricing.err = nil
	w = doRequest(r, http.MethodDelete, "/api/admin/pricing/7", nil, "Bearer t")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(r, http.MethodGet, "/api/admin/pricing/abc", nil, "Bearer t")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRejectsOutOfRangePrices(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	tests := []struct {
		method, path string
		body         map[string]any
	}{
		{http.MethodPost, adminResPath + "/quote", map[string]any{"price": 1e300}},
		{http.MethodPatch, adminResPath, map[string]any{"total_price": -1e300}},
		{http.MethodPost, "/api/admin/pricing", map[string]any{"service_id": "airport-transfers", "vehicle_type_id": "car", "pickup": "cdg", "destination": "paris", "price": 1e300}},
		{http.MethodPut, "/api/admin/pricing/7", map[string]any{"price": 2e9}},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(r, tt.method, tt.path, tt.body, "Bearer t")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], "amount out of range")
		})
	}
	assert.Empty(t, d.reservations.lastAdmin)
	assert.Nil(t, d.reservations.lastPatch.TotalPrice)
	assert.Empty(t, d.pricing.lastCmd.ServiceID)
}

func TestSchemaAdmin(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPut, "/api/admin/services/airport-transfers/fields", map[string]any{
		"fields": []map[string]any{
			{"key": "pickup", "type": "location_select", "is_pickup": true, "required": true},
			{"key": "flight", "type": "text"},
		},
	}, "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, d.catalog.schema, 2)
	assert.True(t, d.catalog.schema[0].IsPickup)

	d.catalog.err = catalog.ErrCannotMove
	w = doRequest(r, http.MethodPost, "/api/admin/services/airport-transfers/fields/pickup/move", map[string]any{"direction": "up"}, "Bearer t")
	assert.Equal(t, http.StatusConflict, w.Code)

	d.catalog.err = fmt.Errorf("%w: duplicate key", catalog.ErrInvalidSchema)
	w = doRequest(r, http.MethodPut, "/api/admin/services/airport-transfers/fields", map[string]any{"fields": []any{}}, "Bearer t")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogPublic(t *testing.T) {
	d := newTestDeps()
	r := buildTestRouter(d, makeVerifier("", "", ""))

	w := doRequest(r, http.MethodGet, "/api/vehicle-types", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	vts := decode(t, w)["vehicle_types"].([]any)
	assert.Equal(t, 8.0, vts[0].(map[string]any)["capacity"])

	d.catalog.err = catalog.ErrServiceNotFound
	w = doRequest(r, http.MethodGet, "/api/services/unknown/fields", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlacesDisabled(t *testing.T) {
	w := doRequest(buildTestRouter(newTestDeps(), makeVerifier("", "", "")), http.MethodGet, "/api/places/autocomplete?input=rue+de+rivoli", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDrafts(t *testing.T) {
	d := newTestDeps()
	d.drafts.draft = &draft.Draft{ID: "d1", Owner: "browser-a", Payload: json.RawMessage(`{"step":2}`)}
	r := buildTestRouter(d, makeVerifier("", "", ""))

	w := doRequest(r, http.MethodPut, "/api/drafts/d1", map[string]any{"owner": "browser-a", "payload": map[string]any{"step": 2}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "browser-a", decode(t, w)["owner"])

	w = doRequest(r, http.MethodGet, "/api/drafts/d1?owner=browser-b", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/drafts/d1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/drafts/d1?owner=browser-a", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/api/drafts/d1/dismiss", map[string]any{"owner": "browser-a"}, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	d.drafts.err = draft.ErrBadRequest
	w = doRequest(r, http.MethodGet, "/api/drafts?owner=", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
