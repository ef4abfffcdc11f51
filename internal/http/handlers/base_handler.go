// README: Base handler utilities (JSON helpers, error mapping, wire views).
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transfers/internal/maps"
	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/modules/draft"
	"transfers/internal/modules/pricing"
	"transfers/internal/modules/reservation"
	"transfers/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts slugs and UUIDs: lowercase letters, digits, '-' and '_'.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range strings.ToLower(v) {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (types.ID, bool) {
	id := strings.TrimSpace(c.Param(name))
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return types.ID(id), true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinels to HTTP statuses. Unknown errors are
// recorded on the context for the logging middleware and hidden from callers.
func writeServiceError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case isAny(err,
		reservation.ErrBadRequest, reservation.ErrInvalidPrice,
		client.ErrInvalidEmail,
		catalog.ErrBadRequest, catalog.ErrInvalidSchema, catalog.ErrInvalidSubData,
		pricing.ErrBadRequest, pricing.ErrInvalidPrice,
		draft.ErrBadRequest, types.ErrAmountOutOfRange):
		return http.StatusBadRequest
	case isAny(err,
		reservation.ErrNotFound, reservation.ErrClientNotFound,
		reservation.ErrServiceNotFound, reservation.ErrVehicleTypeNotFound,
		catalog.ErrServiceNotFound, catalog.ErrVehicleTypeNotFound,
		catalog.ErrLocationNotFound, catalog.ErrFieldNotFound,
		client.ErrNotFound, pricing.ErrNotFound, draft.ErrNotFound):
		return http.StatusNotFound
	case isAny(err, reservation.ErrForbidden):
		return http.StatusForbidden
	case isAny(err,
		reservation.ErrInvalidState, reservation.ErrPriceLocked,
		pricing.ErrRouteExists, catalog.ErrCannotMove):
		return http.StatusConflict
	case isAny(err, pricing.ErrUpdateUnconfirmed):
		return http.StatusAccepted
	case isAny(err, maps.ErrDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// moneyView is the wire form of types.Money: decimal major units.
type moneyView struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

func toMoneyView(m types.Money) moneyView {
	cur := m.Currency
	if cur == "" {
		cur = types.DefaultCurrency
	}
	return moneyView{Amount: m.Major(), Currency: cur, Formatted: m.String()}
}
