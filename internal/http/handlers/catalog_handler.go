// README: Catalog handlers: public service/vehicle/location lists and admin schema editing.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/modules/catalog"
	"transfers/internal/types"
)

type CatalogService interface {
	ListServices(ctx context.Context, activeOnly bool) ([]catalog.TransferService, error)
	ListVehicleTypes(ctx context.Context) ([]catalog.VehicleType, error)
	ListLocations(ctx context.Context) ([]catalog.Location, error)
	Fields(ctx context.Context, serviceID types.ID) (catalog.Schema, error)
	ReplaceFields(ctx context.Context, serviceID types.ID, schema catalog.Schema) (catalog.Schema, error)
	MoveField(ctx context.Context, serviceID types.ID, key string, dir catalog.Direction) (catalog.Schema, error)
}

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

type serviceView struct {
	ID          types.ID            `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	PricingMode catalog.PricingMode `json:"pricing_mode"`
}

type vehicleTypeView struct {
	ID          types.ID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
}

type locationView struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

type fieldView struct {
	Key           string            `json:"key"`
	Type          catalog.FieldType `json:"type"`
	Label         string            `json:"label"`
	Required      bool              `json:"required"`
	Min           *float64          `json:"min,omitempty"`
	Max           *float64          `json:"max,omitempty"`
	Default       *string           `json:"default,omitempty"`
	Options       []string          `json:"options,omitempty"`
	IsPickup      bool              `json:"is_pickup"`
	IsDestination bool              `json:"is_destination"`
	Order         int               `json:"order"`
}

func toFieldViews(s catalog.Schema) []fieldView {
	out := make([]fieldView, 0, len(s))
	for _, f := range s {
		out = append(out, fieldView{
			Key:           f.Key,
			Type:          f.Type,
			Label:         f.Label,
			Required:      f.Required,
			Min:           f.Min,
			Max:           f.Max,
			Default:       f.Default,
			Options:       f.Options,
			IsPickup:      f.IsPickup,
			IsDestination: f.IsDestination,
			Order:         f.Order,
		})
	}
	return out
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	svcs, err := h.catalog.ListServices(c.Request.Context(), true)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]serviceView, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, serviceView{ID: s.ID, Name: s.Name, Description: s.Description, PricingMode: s.PricingMode})
	}
	writeJSON(c, http.StatusOK, gin.H{"services": out})
}

func (h *CatalogHandler) ListVehicleTypes(c *gin.Context) {
	vts, err := h.catalog.ListVehicleTypes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]vehicleTypeView, 0, len(vts))
	for _, v := range vts {
		out = append(out, vehicleTypeView{ID: v.ID, Name: v.Name, Description: v.Description, Capacity: v.Capacity})
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicle_types": out})
}

func (h *CatalogHandler) ListLocations(c *gin.Context) {
	locs, err := h.catalog.ListLocations(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]locationView, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationView{ID: l.ID, Name: l.Name})
	}
	writeJSON(c, http.StatusOK, gin.H{"locations": out})
}

func (h *CatalogHandler) Fields(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schema, err := h.catalog.Fields(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"fields": toFieldViews(schema)})
}

type replaceFieldsReq struct {
	Fields []fieldView `json:"fields"`
}

func (h *CatalogHandler) ReplaceFields(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req replaceFieldsReq
	if !bindJSON(c, &req) {
		return
	}
	schema := make(catalog.Schema, 0, len(req.Fields))
	for _, f := range req.Fields {
		schema = append(schema, catalog.Field{
			Key:           f.Key,
			Type:          f.Type,
			Label:         f.Label,
			Required:      f.Required,
			Min:           f.Min,
			Max:           f.Max,
			Default:       f.Default,
			Options:       f.Options,
			IsPickup:      f.IsPickup,
			IsDestination: f.IsDestination,
			Order:         f.Order,
		})
	}
	out, err := h.catalog.ReplaceFields(c.Request.Context(), id, schema)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"fields": toFieldViews(out)})
}

type moveFieldReq struct {
	Direction catalog.Direction `json:"direction"`
}

func (h *CatalogHandler) MoveField(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moveFieldReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.catalog.MoveField(c.Request.Context(), id, c.Param("key"), req.Direction)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"fields": toFieldViews(out)})
}
