// README: Admin handlers for the flat route price table.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"transfers/internal/modules/pricing"
	"transfers/internal/types"
)

type PricingService interface {
	List(ctx context.Context, f pricing.ListFilter) ([]pricing.Entry, error)
	Get(ctx context.Context, id int64) (*pricing.Entry, error)
	Create(ctx context.Context, cmd pricing.CreateCommand) (*pricing.Entry, error)
	UpdatePrice(ctx context.Context, id int64, price types.Money) (*pricing.Entry, error)
	Delete(ctx context.Context, id int64) error
}

type PricingHandler struct {
	pricing PricingService
}

func NewPricingHandler(svc PricingService) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

type priceEntryView struct {
	ID            int64     `json:"id"`
	ServiceID     types.ID  `json:"service_id"`
	VehicleTypeID types.ID  `json:"vehicle_type_id"`
	Pickup        types.ID  `json:"pickup"`
	Destination   types.ID  `json:"destination"`
	Price         moneyView `json:"price"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPriceEntryView(e *pricing.Entry) priceEntryView {
	return priceEntryView{
		ID:            e.ID,
		ServiceID:     e.ServiceID,
		VehicleTypeID: e.VehicleTypeID,
		Pickup:        e.PickupLocationID,
		Destination:   e.DestinationLocationID,
		Price:         toMoneyView(e.Price),
		UpdatedAt:     e.UpdatedAt,
	}
}

func entryID(c *gin.Context) (int64, bool) {
	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *PricingHandler) List(c *gin.Context) {
	entries, err := h.pricing.List(c.Request.Context(), pricing.ListFilter{
		ServiceID:     types.NormalizeID(c.Query("service_id")),
		VehicleTypeID: types.NormalizeID(c.Query("vehicle_type_id")),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]priceEntryView, 0, len(entries))
	for i := range entries {
		out = append(out, toPriceEntryView(&entries[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"prices": out})
}

func (h *PricingHandler) Get(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	e, err := h.pricing.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toPriceEntryView(e))
}

type createPriceReq struct {
	ServiceID     string  `json:"service_id"`
	VehicleTypeID string  `json:"vehicle_type_id"`
	Pickup        string  `json:"pickup"`
	Destination   string  `json:"destination"`
	Price         float64 `json:"price"`
}

func (h *PricingHandler) Create(c *gin.Context) {
	var req createPriceReq
	if !bindJSON(c, &req) {
		return
	}
	price, err := types.ParseMajor(req.Price, "")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	e, err := h.pricing.Create(c.Request.Context(), pricing.CreateCommand{
		ServiceID:     types.ID(req.ServiceID),
		VehicleTypeID: types.ID(req.VehicleTypeID),
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		Price:         price,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toPriceEntryView(e))
}

type updatePriceReq struct {
	Price float64 `json:"price"`
}

// Update answers 202 when the write went out but could not be read back.
func (h *PricingHandler) Update(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	var req updatePriceReq
	if !bindJSON(c, &req) {
		return
	}
	price, err := types.ParseMajor(req.Price, "")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	e, err := h.pricing.UpdatePrice(c.Request.Context(), id, price)
	if errors.Is(err, pricing.ErrUpdateUnconfirmed) {
		writeJSON(c, http.StatusAccepted, gin.H{"status": "unconfirmed", "message": err.Error()})
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toPriceEntryView(e))
}

func (h *PricingHandler) Delete(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	if err := h.pricing.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
