package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/maps"
)

type PlacesService interface {
	Autocomplete(ctx context.Context, input, language string) ([]maps.Suggestion, error)
}

type PlacesHandler struct {
	places PlacesService
}

func NewPlacesHandler(svc PlacesService) *PlacesHandler {
	return &PlacesHandler{places: svc}
}

func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	out, err := h.places.Autocomplete(c.Request.Context(), c.Query("input"), c.Query("lang"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"suggestions": out})
}
