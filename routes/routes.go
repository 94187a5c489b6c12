package routes

import (
	"os"

	parcelController "parcel-delivery/controllers/parcel"
	paymentController "parcel-delivery/controllers/payment"
	riderController "parcel-delivery/controllers/rider"
	trackingController "parcel-delivery/controllers/tracking"
	userController "parcel-delivery/controllers/user"
	paymentgw "parcel-delivery/httpServices/paymentgw"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	gateway := paymentgw.NewClient(os.Getenv("PAYMENT_GATEWAY_BASE_URL"), os.Getenv("PAYMENT_GATEWAY_SECRET"))
	asyncLogger := logger.NewAsyncLogger(db)

	parcels := parcelController.NewParcelController(db, asyncLogger)
	payments := paymentController.NewPaymentController(db, gateway, asyncLogger)
	trackings := trackingController.NewTrackingController(db, asyncLogger)
	riders := riderController.NewRiderController(db, asyncLogger)
	users := userController.NewUserController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin(db)

	api := app.Group("/api")

	/*=============================================================================
	| Parcel Routes
	===============================================================================*/
	api.Get("/parcels", parcels.List)
	api.Get("/parcels/:id", requireAuth, parcels.Get)
	api.Post("/parcels", requireAuth, parcels.Store)
	api.Delete("/parcels/:id", requireAuth, requireAdmin, parcels.Delete)
	api.Patch("/parcels/:id/assign", requireAuth, requireAdmin, parcels.AssignRider)
	api.Patch("/parcels/:id/status", parcels.UpdateStatus)
	api.Patch("/parcels/:id/cashout", parcels.Cashout)

	api.Get("/rider/parcels", requireAuth, parcels.RiderParcels)
	api.Get("/rider/completed-parcels", requireAuth, parcels.RiderCompletedParcels)

	/*=============================================================================
	| Payment Routes
	===============================================================================*/
	api.Get("/payments", requireAuth, payments.List)
	api.Post("/payments", requireAuth, payments.Record)
	api.Post("/create-payment-intent", requireAuth, payments.CreateIntent)

	/*=============================================================================
	| Tracking Routes
	===============================================================================*/
	api.Get("/trackings/:trackingId", trackings.Trail)
	api.Post("/trackings", trackings.Append)

	/*=============================================================================
	| Rider Routes
	===============================================================================*/
	api.Post("/riders", riders.Register)
	api.Get("/riders/pending", riders.Pending)
	api.Get("/riders/active", riders.Active)
	api.Get("/riders/available", riders.Available)
	api.Patch("/riders/:id/status", requireAuth, requireAdmin, riders.SetStatus)

	/*=============================================================================
	| User Routes
	===============================================================================*/
	api.Post("/users/login", users.Login)
	api.Get("/users/search", requireAuth, requireAdmin, users.Search)
	api.Get("/users/role", users.GetRole)
	api.Patch("/users/:id/role", requireAuth, requireAdmin, users.SetRole)
	api.Get("/users", requireAuth, requireAdmin, users.List)
}
