// README: Booking form draft handlers (save, resume, dismiss, pending banner).
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/modules/draft"
)

type DraftService interface {
	Save(ctx context.Context, id, owner string, payload json.RawMessage) (*draft.Draft, error)
	Get(ctx context.Context, owner, id string) (*draft.Draft, error)
	Dismiss(ctx context.Context, owner, id string) error
	Pending(ctx context.Context, owner string) ([]draft.Draft, error)
}

type DraftHandler struct {
	drafts DraftService
}

func NewDraftHandler(svc DraftService) *DraftHandler {
	return &DraftHandler{drafts: svc}
}

type saveDraftReq struct {
	Owner   string          `json:"owner"`
	Payload json.RawMessage `json:"payload"`
}

func (h *DraftHandler) Save(c *gin.Context) {
	var req saveDraftReq
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.drafts.Save(c.Request.Context(), c.Param("id"), req.Owner, req.Payload)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

// Get requires ?owner= and only returns the caller's own draft.
func (h *DraftHandler) Get(c *gin.Context) {
	d, err := h.drafts.Get(c.Request.Context(), c.Query("owner"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

type dismissDraftReq struct {
	Owner string `json:"owner"`
}

func (h *DraftHandler) Dismiss(c *gin.Context) {
	var req dismissDraftReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.drafts.Dismiss(c.Request.Context(), req.Owner, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) Pending(c *gin.Context) {
	drafts, err := h.drafts.Pending(c.Request.Context(), c.Query("owner"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"drafts": drafts})
}
