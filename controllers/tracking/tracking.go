package tracking

import (
	"errors"
	"time"

	"parcel-delivery/logger"
	parcelModel "parcel-delivery/models/parcel"
	trackingModel "parcel-delivery/models/tracking"
	"parcel-delivery/types"
	trackingTypes "parcel-delivery/types/tracking"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TrackingController serves the public tracking trail
type TrackingController struct {
	DB             *gorm.DB
	loggerInstance *logger.AsyncLogger
}

// NewTrackingController creates a new tracking controller
func NewTrackingController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *TrackingController {
	return &TrackingController{
		DB:             db,
		loggerInstance: asyncLogger,
	}
}

func (tc *TrackingController) logAPIRequest(c *fiber.Ctx) {
	if tc.loggerInstance == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	tc.loggerInstance.Log(logEntry)
}

func (tc *TrackingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	tc.logAPIRequest(c)
	return result
}

// Append adds one event to a tracking trail. The event time is stamped
// server-side; prior events are never touched.
func (tc *TrackingController) Append(c *fiber.Ctx) error {
	var req trackingTypes.AppendEventRequest
	if err := c.BodyParser(&req); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ev := trackingModel.TrackingEvent{
		TrackingCode: req.TrackingCode,
		Status:       req.Status,
		Message:      req.Message,
		UpdatedBy:    req.UpdatedBy,
		Time:         time.Now(),
	}

	// Link the event to the parcel when the code resolves; an unknown code
	// still gets an event row, matching the trail's reference-not-ownership
	// relationship to parcels.
	var parcel parcelModel.Parcel
	err := tc.DB.Where("tracking_code = ?", req.TrackingCode).First(&parcel).Error
	if err == nil {
		ev.ParcelID = &parcel.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to resolve tracking code", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if err := tc.DB.Create(&ev).Error; err != nil {
		logger.Error("Failed to append tracking event", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to append tracking event",
		})
	}

	return tc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Tracking event appended successfully",
		Data:    fiber.Map{"insertedId": ev.ID},
	})
}

// Trail returns a tracking code's events ascending by time. An unknown code
// yields an empty array, not an error.
func (tc *TrackingController) Trail(c *fiber.Ctx) error {
	trackingCode := c.Params("trackingId")
	if trackingCode == "" {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "tracking id is required",
		})
	}

	events := make([]trackingModel.TrackingEvent, 0)
	if err := tc.DB.Where("tracking_code = ?", trackingCode).Order("time ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to fetch tracking trail", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch tracking trail",
		})
	}

	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tracking trail fetched successfully",
		Data:    events,
	})
}
