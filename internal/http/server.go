// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"transfers/internal/http/handlers"
	"transfers/internal/http/middleware"
	"transfers/internal/infra"
	"transfers/internal/logger"
)

type ServerDeps struct {
	Catalog      handlers.CatalogService
	Pricing      handlers.PricingService
	Reservations handlers.ReservationService
	Drafts       handlers.DraftService
	Places       handlers.PlacesService
	Voucher      handlers.VoucherRenderer
	Verifier     infra.TokenVerifier
	Log          logger.Logger

	CORSOrigins []string
	// Language is the default voucher language.
	Language string
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.deps.Log), middleware.Recovery(s.deps.Log))
	if len(s.deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	registerRoutes(r, s.deps)
	return r
}
