package main

import (
	"os"
	"time"

	"parcel-delivery/database"
	"parcel-delivery/logger"
	"parcel-delivery/routes"
	"parcel-delivery/services/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768,
		WriteBufferSize: 32768,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
	})

	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}
	defer database.Close(db)

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, db)

	// Background sweep for paid parcels missing a payment row.
	reconciler := reconcile.NewReconciler(db, os.Getenv("RECONCILE_SCHEDULE"))
	cronScheduler, err := reconciler.Start()
	if err != nil {
		logger.Error("Failed to start payment reconciler", err)
		return
	}
	defer cronScheduler.Stop()

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	logger.Success("Server is running on ip: " + appHost + " port: " + appPort)

	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Error("Server stopped", err)
	}
}
