// README: Admin reservation handlers: listing, edits, lifecycle actions and the PDF voucher.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"transfers/internal/document"
	"transfers/internal/http/middleware"
	"transfers/internal/modules/reservation"
	"transfers/internal/types"
)

type VoucherRenderer interface {
	Render(d document.Data, labels *document.Labels) ([]byte, error)
}

type AdminReservationHandler struct {
	reservations ReservationService
	pdf          VoucherRenderer
	language     string
}

func NewAdminReservationHandler(svc ReservationService, pdf VoucherRenderer, language string) *AdminReservationHandler {
	return &AdminReservationHandler{reservations: svc, pdf: pdf, language: language}
}

func (h *AdminReservationHandler) List(c *gin.Context) {
	f := reservation.ListFilter{
		Status:   reservation.Status(c.Query("status")),
		ClientID: types.ID(c.Query("client_id")),
		Limit:    cast.ToInt(c.Query("limit")),
		Offset:   cast.ToInt(c.Query("offset")),
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	rs, err := h.reservations.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservations": toReservationViews(rs)})
}

type eventView struct {
	FromStatus reservation.Status `json:"from_status"`
	ToStatus   reservation.Status `json:"to_status"`
	Action     reservation.Action `json:"action"`
	ActorType  string             `json:"actor_type"`
	ActorID    *string            `json:"actor_id"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Get returns the reservation with its status history.
func (h *AdminReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	r, err := h.reservations.Get(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	events, err := h.reservations.Events(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	history := make([]eventView, 0, len(events))
	for _, e := range events {
		history = append(history, eventView{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Action:     e.Action,
			ActorType:  e.ActorType,
			ActorID:    e.ActorID,
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation": toReservationView(r), "events": history})
}

type patchReservationReq struct {
	Date         *string  `json:"date"`
	Time         *string  `json:"time"`
	Pickup       *string  `json:"pickup"`
	Destination  *string  `json:"destination"`
	Passengers   *int     `json:"passengers"`
	BabySeats    *int     `json:"baby_seats"`
	BoosterSeats *int     `json:"booster_seats"`
	MeetAndGreet *bool    `json:"meet_and_greet"`
	TotalPrice   *float64 `json:"total_price"`
	Notes        *string  `json:"notes"`
}

func (h *AdminReservationHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req patchReservationReq
	if !bindJSON(c, &req) {
		return
	}
	p := reservation.Patch{
		Date:         req.Date,
		Time:         req.Time,
		Pickup:       req.Pickup,
		Destination:  req.Destination,
		Passengers:   req.Passengers,
		BabySeats:    req.BabySeats,
		BoosterSeats: req.BoosterSeats,
		MeetAndGreet: req.MeetAndGreet,
		Notes:        req.Notes,
	}
	if req.TotalPrice != nil {
		m, err := types.ParseMajor(*req.TotalPrice, "")
		if err != nil {
			writeServiceError(c, err)
			return
		}
		p.TotalPrice = &m
	}
	r, err := h.reservations.UpdateFields(c.Request.Context(), id, p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation": toReservationView(r)})
}

type sendQuoteReq struct {
	Price float64 `json:"price"`
}

func (h *AdminReservationHandler) SendQuote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sendQuoteReq
	if !bindJSON(c, &req) {
		return
	}
	price, err := types.ParseMajor(req.Price, "")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	r, err := h.reservations.SendQuote(c.Request.Context(), id, price, middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation": toReservationView(r)})
}

func (h *AdminReservationHandler) Confirm(c *gin.Context) {
	h.apply(c, h.reservations.Confirm)
}

func (h *AdminReservationHandler) Complete(c *gin.Context) {
	h.apply(c, h.reservations.Complete)
}

func (h *AdminReservationHandler) Cancel(c *gin.Context) {
	h.apply(c, h.reservations.Cancel)
}

func (h *AdminReservationHandler) apply(c *gin.Context, action func(context.Context, types.ID, string) (*reservation.Reservation, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := action(c.Request.Context(), id, middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reservation": toReservationView(r)})
}

// PDF streams the voucher; ?lang=fr switches the labels.
func (h *AdminReservationHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	snap, err := h.reservations.Snapshot(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	lang := c.DefaultQuery("lang", h.language)
	data := document.FromSnapshot(snap)
	body, err := h.pdf.Render(data, document.LabelsFor(lang))
	if err != nil {
		writeServiceError(c, fmt.Errorf("render voucher: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename(data)))
	c.Data(http.StatusOK, "application/pdf", body)
}
