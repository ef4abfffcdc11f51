// README: Reservation handlers for the public booking form and client quote responses.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transfers/internal/http/middleware"
	"transfers/internal/modules/reservation"
	"transfers/internal/types"
)

// ReservationService is what the reservation handlers need from reservation.Service.
type ReservationService interface {
	Create(ctx context.Context, cmd reservation.CreateCommand) (*reservation.Reservation, bool, error)
	EstimatePrice(ctx context.Context, q reservation.EstimateQuery) (reservation.Estimate, error)
	Get(ctx context.Context, id types.ID) (*reservation.Reservation, error)
	List(ctx context.Context, f reservation.ListFilter) ([]reservation.Reservation, error)
	ListForEmail(ctx context.Context, email string) ([]reservation.Reservation, error)
	Events(ctx context.Context, id types.ID) ([]reservation.Event, error)
	Snapshot(ctx context.Context, id types.ID) (*reservation.Snapshot, error)
	SendQuote(ctx context.Context, id types.ID, price types.Money, adminUID string) (*reservation.Reservation, error)
	AcceptQuote(ctx context.Context, id types.ID, caller reservation.Caller) (*reservation.Reservation, error)
	DeclineQuote(ctx context.Context, id types.ID, caller reservation.Caller) (*reservation.Reservation, error)
	Confirm(ctx context.Context, id types.ID, adminUID string) (*reservation.Reservation, error)
	Complete(ctx context.Context, id types.ID, adminUID string) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id types.ID, adminUID string) (*reservation.Reservation, error)
	UpdateFields(ctx context.Context, id types.ID, p reservation.Patch) (*reservation.Reservation, error)
}

type reservationView struct {
	ID            types.ID           `json:"id"`
	ClientID      types.ID           `json:"client_id"`
	ServiceID     types.ID           `json:"service_id"`
	VehicleTypeID types.ID           `json:"vehicle_type_id"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Pickup        string             `json:"pickup"`
	Destination   *string            `json:"destination"`
	Passengers    int                `json:"passengers"`
	BabySeats     int                `json:"baby_seats"`
	BoosterSeats  int                `json:"booster_seats"`
	MeetAndGreet  bool               `json:"meet_and_greet"`
	SubData       map[string]any     `json:"sub_data"`
	TotalPrice    moneyView          `json:"total_price"`
	Status        reservation.Status `json:"status"`
	Notes         string             `json:"notes"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toReservationView(r *reservation.Reservation) reservationView {
	data := r.SubData
	if data == nil {
		data = map[string]any{}
	}
	return reservationView{
		ID:            r.ID,
		ClientID:      r.ClientID,
		ServiceID:     r.ServiceID,
		VehicleTypeID: r.VehicleTypeID,
		Date:          r.Date,
		Time:          r.Time,
		Pickup:        r.Pickup,
		Destination:   r.Destination,
		Passengers:    r.Passengers,
		BabySeats:     r.BabySeats,
		BoosterSeats:  r.BoosterSeats,
		MeetAndGreet:  r.MeetAndGreet,
		SubData:       data,
		TotalPrice:    toMoneyView(r.TotalPrice),
		Status:        r.Status,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toReservationViews(rs []reservation.Reservation) []reservationView {
	out := make([]reservationView, 0, len(rs))
	for i := range rs {
		out = append(out, toReservationView(&rs[i]))
	}
	return out
}

type ReservationHandler struct {
	reservations ReservationService
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: svc}
}

type createReservationReq struct {
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	ServiceID     string         `json:"service_id"`
	VehicleTypeID string         `json:"vehicle_type_id"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	Pickup        string         `json:"pickup"`
	Destination   string         `json:"destination"`
	Passengers    int            `json:"passengers"`
	BabySeats     int            `json:"baby_seats"`
	BoosterSeats  int            `json:"booster_seats"`
	MeetAndGreet  bool           `json:"meet_and_greet"`
	SubData       map[string]any `json:"sub_data"`
	Notes         string         `json:"notes"`
}

// Create answers 201 for a new reservation and 200 when the submission
// matched an existing one.
func (h *ReservationHandler) Create(c *gin.Context) {
	var req createReservationReq
	if !bindJSON(c, &req) {
		return
	}
	r, created, err := h.reservations.Create(c.Request.Context(), reservation.CreateCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		ServiceID:     types.ID(req.ServiceID),
		VehicleTypeID: types.ID(req.VehicleTypeID),
		Date:          req.Date,
		Time:          req.Time,
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		Passengers:    req.Passengers,
		BabySeats:     req.BabySeats,
		BoosterSeats:  req.BoosterSeats,
		MeetAndGreet:  req.MeetAndGreet,
		SubData:       req.SubData,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(c, status, gin.H{"reservation": toReservationView(r), "created": created})
}

type estimateReq struct {
	ServiceID     string `json:"service_id"`
	VehicleTypeID string `json:"vehicle_type_id"`
	Pickup        string `json:"pickup"`
	Destination   string `json:"destination"`
}

func (h *ReservationHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if !bindJSON(c, &req) {
		return
	}
	est, err := h.reservations.EstimatePrice(c.Request.Context(), reservation.EstimateQuery{
		ServiceID:     types.ID(req.ServiceID),
		VehicleTypeID: types.ID(req.VehicleTypeID),
		Pickup:        req.Pickup,
		Destination:   req.Destination,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp := gin.H{"found": est.Found, "requires_quote": est.RequiresQuote}
	if est.Found {
		resp["price"] = toMoneyView(est.Price)
	}
	writeJSON(c, http.StatusOK, resp)
}

// Mine lists the reservations booked with the caller's verified email.
func (h *ReservationHandler) Mine(c *gin.Context) {
	email := middleware.CallerEmail(c)
	if email == "" {
		writeError(c, http.StatusForbidden, "forbidden: token carries no email")
		return
	}
	rs, err := h.reservations.ListForEmail(c.Request.Context(), email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservations": toReservationViews(rs)})
}

func (h *ReservationHandler) AcceptQuote(c *gin.Context) {
	h.respondToQuote(c, h.reservations.AcceptQuote)
}

func (h *ReservationHandler) DeclineQuote(c *gin.Context) {
	h.respondToQuote(c, h.reservations.DeclineQuote)
}

func (h *ReservationHandler) respondToQuote(c *gin.Context, apply func(context.Context, types.ID, reservation.Caller) (*reservation.Reservation, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// an empty email would skip the ownership check
	email := middleware.CallerEmail(c)
	if email == "" {
		writeError(c, http.StatusForbidden, "forbidden: token carries no email")
		return
	}
	r, err := apply(c.Request.Context(), id, reservation.Caller{UID: middleware.CallerUID(c), Email: email})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation": toReservationView(r)})
}
