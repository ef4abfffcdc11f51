// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transfers/internal/http/handlers"
	"transfers/internal/http/middleware"
)

func registerRoutes(r *gin.Engine, deps ServerDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	reservationHandler := handlers.NewReservationHandler(deps.Reservations)
	draftHandler := handlers.NewDraftHandler(deps.Drafts)
	placesHandler := handlers.NewPlacesHandler(deps.Places)

	api := r.Group("/api")
	api.GET("/services", catalogHandler.ListServices)
	api.GET("/services/:id/fields", catalogHandler.Fields)
	api.GET("/vehicle-types", catalogHandler.ListVehicleTypes)
	api.GET("/locations", catalogHandler.ListLocations)
	api.POST("/prices/estimate", reservationHandler.Estimate)
	api.POST("/reservations", reservationHandler.Create)
	api.GET("/places/autocomplete", placesHandler.Autocomplete)

	api.GET("/drafts", draftHandler.Pending)
	api.PUT("/drafts/:id", draftHandler.Save)
	api.GET("/drafts/:id", draftHandler.Get)
	api.POST("/drafts/:id/dismiss", draftHandler.Dismiss)

	authed := api.Group("", middleware.Auth(deps.Verifier))
	authed.GET("/me/reservations", reservationHandler.Mine)
	authed.POST("/reservations/:id/quote/accept", reservationHandler.AcceptQuote)
	authed.POST("/reservations/:id/quote/decline", reservationHandler.DeclineQuote)

	adminHandler := handlers.NewAdminReservationHandler(deps.Reservations, deps.Voucher, deps.Language)
	pricingHandler := handlers.NewPricingHandler(deps.Pricing)

	admin := api.Group("/admin", middleware.Auth(deps.Verifier), middleware.RequireRole(middleware.RoleAdmin))
	admin.GET("/reservations", adminHandler.List)
	admin.GET("/reservations/:id", adminHandler.Get)
	admin.PATCH("/reservations/:id", adminHandler.Patch)
	admin.POST("/reservations/:id/quote", adminHandler.SendQuote)
	admin.POST("/reservations/:id/confirm", adminHandler.Confirm)
	admin.POST("/reservations/:id/complete", adminHandler.Complete)
	admin.POST("/reservations/:id/cancel", adminHandler.Cancel)
	admin.GET("/reservations/:id/pdf", adminHandler.PDF)

	admin.GET("/pricing", pricingHandler.List)
	admin.POST("/pricing", pricingHandler.Create)
	admin.GET("/pricing/:id", pricingHandler.Get)
	admin.PUT("/pricing/:id", pricingHandler.Update)
	admin.DELETE("/pricing/:id", pricingHandler.Delete)

	admin.PUT("/services/:id/fields", catalogHandler.ReplaceFields)
	admin.POST("/services/:id/fields/:key/move", catalogHandler.MoveField)
}
