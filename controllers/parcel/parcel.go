package parcel

import (
	"errors"
	"fmt"
	"time"

	"parcel-delivery/logger"
	parcelModel "parcel-delivery/models/parcel"
	riderModel "parcel-delivery/models/rider"
	"parcel-delivery/services/parcel_event"
	"parcel-delivery/types"
	parcelTypes "parcel-delivery/types/parcel"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParcelController handles parcel lifecycle HTTP requests
type ParcelController struct {
	DB             *gorm.DB
	loggerInstance *logger.AsyncLogger
}

// NewParcelController creates a new parcel controller
func NewParcelController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *ParcelController {
	return &ParcelController{
		DB:             db,
		loggerInstance: asyncLogger,
	}
}

func (pc *ParcelController) logAPIRequest(c *fiber.Ctx) {
	if pc.loggerInstance == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.loggerInstance.Log(logEntry)
}

// Helper function to send response and log in one call
func (pc *ParcelController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

func updatedBy(c *fiber.Ctx) string {
	if email, ok := c.Locals("email").(string); ok && email != "" {
		return email
	}
	return "system"
}

// List returns parcels newest-first, optionally filtered by creator email,
// payment status, delivery status or assigned rider email. An empty filter
// returns every parcel; the list is unbounded.
func (pc *ParcelController) List(c *fiber.Ctx) error {
	query := pc.DB.Model(&parcelModel.Parcel{})

	if email := c.Query("email"); email != "" {
		query = query.Where("created_by = ?", utils.NormalizeEmail(email))
	}
	if ps := c.Query("payment_status"); ps != "" {
		query = query.Where("payment_status = ?", ps)
	}
	if ds := c.Query("delivery_status"); ds != "" {
		query = query.Where("delivery_status = ?", ds)
	}
	if riderEmail := c.Query("assigned_rider_email"); riderEmail != "" {
		query = query.Where("assigned_rider_email = ?", utils.NormalizeEmail(riderEmail))
	}

	var parcels []parcelModel.Parcel
	if err := query.Order("created_at DESC").Find(&parcels).Error; err != nil {
		logger.Error("Failed to list parcels", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch parcels",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Parcels fetched successfully",
		Data:    parcels,
	})
}

// Get returns a single parcel by id
func (pc *ParcelController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid parcel id",
		})
	}

	var parcel parcelModel.Parcel
	if err := pc.DB.First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to fetch parcel", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Parcel fetched successfully",
		Data:    parcel,
	})
}

// Store creates a parcel. CreatedAt, the tracking code and the initial
// statuses are set server-side; the tracking trail is seeded with a pending
// event in the same transaction.
func (pc *ParcelController) Store(c *fiber.Ctx) error {
	var req parcelTypes.CreateParcelRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	createdBy := updatedBy(c)

	parcel := parcelModel.Parcel{
		TrackingCode:    uuid.NewString(),
		CreatedBy:       createdBy,
		Title:           req.Title,
		SenderName:      req.SenderName,
		SenderPhone:     req.SenderPhone,
		SenderRegion:    req.SenderRegion,
		SenderAddress:   req.SenderAddress,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		ReceiverRegion:  req.ReceiverRegion,
		ReceiverAddress: req.ReceiverAddress,
		Cost:            req.Cost,
		PaymentStatus:   parcelModel.PaymentStatusUnpaid,
		DeliveryStatus:  parcelModel.DeliveryStatusPending,
		CashoutStatus:   parcelModel.CashoutStatusPending,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&parcel).Error; err != nil {
			return err
		}
		return parcel_event.AppendParcelEvent(tx, &parcel,
			parcelModel.DeliveryStatusPending.String(), "Parcel created", createdBy)
	})
	if err != nil {
		logger.Error("Failed to create parcel", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create parcel",
		})
	}

	logger.Success(fmt.Sprintf("Parcel created with ID: %d (Tracking: %s) by %s", parcel.ID, parcel.TrackingCode, createdBy))

	return pc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Parcel created successfully",
		Data: fiber.Map{
			"insertedId":    parcel.ID,
			"tracking_code": parcel.TrackingCode,
		},
	})
}

// Delete removes a parcel. Deleting an absent id reports not-found rather
// than failing, so the operation is idempotent.
func (pc *ParcelController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid parcel id",
		})
	}

	result := pc.DB.Delete(&parcelModel.Parcel{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete parcel", result.Error)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete parcel",
		})
	}

	if result.RowsAffected == 0 {
		return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Parcel not found",
			Data:    fiber.Map{"deleted": false},
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Parcel deleted successfully",
		Data:    fiber.Map{"deleted": true},
	})
}

// AssignRider moves a pending parcel to rider_assigned, denormalizes the
// rider's identity onto the parcel and marks the rider in_delivery. The two
// writes plus the trail event run in one transaction.
func (pc *ParcelController) AssignRider(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid parcel id",
		})
	}

	var req parcelTypes.AssignRiderRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var parcel parcelModel.Parcel
	if err := pc.DB.First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to fetch parcel", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if !parcel.DeliveryStatus.CanTransitionTo(parcelModel.DeliveryStatusRiderAssigned) {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Cannot assign a rider to a parcel in status %q", parcel.DeliveryStatus),
		})
	}

	var rider riderModel.Rider
	if err := pc.DB.First(&rider, req.RiderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Rider not found",
			})
		}
		logger.Error("Failed to fetch rider", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if rider.Status != riderModel.StatusActive {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Rider is not active",
		})
	}
	if rider.WorkStatus != riderModel.WorkStatusIdle {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Rider is already in a delivery",
		})
	}

	actor := updatedBy(c)

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		riderEmail := utils.NormalizeEmail(rider.Email)
		parcel.DeliveryStatus = parcelModel.DeliveryStatusRiderAssigned
		parcel.AssignedRiderID = &rider.ID
		parcel.AssignedRiderEmail = &riderEmail
		parcel.AssignedRiderName = &rider.Name
		if err := tx.Save(&parcel).Error; err != nil {
			return err
		}

		if err := tx.Model(&rider).Update("work_status", riderModel.WorkStatusInDelivery).Error; err != nil {
			return err
		}

		return parcel_event.AppendParcelEvent(tx, &parcel,
			parcelModel.DeliveryStatusRiderAssigned.String(),
			fmt.Sprintf("Rider %s assigned", rider.Name), actor)
	})
	if err != nil {
		logger.Error("Failed to assign rider", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to assign rider",
		})
	}

	logger.Success(fmt.Sprintf("Rider %d assigned to parcel %d by %s", rider.ID, parcel.ID, actor))

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Rider assigned successfully",
		Data:    parcel,
	})
}

// UpdateStatus moves a parcel forward through its delivery lifecycle.
// in_transit stamps PickedAt and delivery stamps DeliveredAt; reaching a
// terminal state frees the assigned rider.
func (pc *ParcelController) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid parcel id",
		})
	}

	var req parcelTypes.UpdateDeliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	next := parcelModel.DeliveryStatus(req.Status)
	if !next.IsValid() {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Unknown delivery status %q", req.Status),
		})
	}

	var parcel parcelModel.Parcel
	if err := pc.DB.First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to fetch parcel", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if !parcel.DeliveryStatus.CanTransitionTo(next) {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: fmt.Sprintf("Illegal delivery status transition %q -> %q", parcel.DeliveryStatus, next),
		})
	}

	actor := updatedBy(c)
	now := time.Now()

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		parcel.DeliveryStatus = next
		switch next {
		case parcelModel.DeliveryStatusInTransit:
			parcel.PickedAt = &now
		case parcelModel.DeliveryStatusDelivered, parcelModel.DeliveryStatusServiceCenterDelivered:
			parcel.DeliveredAt = &now
		}
		if err := tx.Save(&parcel).Error; err != nil {
			return err
		}

		// A finished delivery releases the rider for the next assignment.
		if next.IsCompleted() && parcel.AssignedRiderID != nil {
			if err := tx.Model(&riderModel.Rider{}).
				Where("id = ?", *parcel.AssignedRiderID).
				Update("work_status", riderModel.WorkStatusIdle).Error; err != nil {
				return err
			}
		}

		return parcel_event.AppendParcelEvent(tx, &parcel, next.String(), "", actor)
	})
	if err != nil {
		logger.Error("Failed to update delivery status", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update delivery status",
		})
	}

	logger.Success(fmt.Sprintf("Parcel %d moved to %s by %s", parcel.ID, next, actor))

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Delivery status updated successfully",
		Data:    parcel,
	})
}

// Cashout marks the rider-collected payment for a delivered parcel as
// settled. Parcels that have not completed delivery cannot be cashed out.
func (pc *ParcelController) Cashout(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid parcel id",
		})
	}

	var parcel parcelModel.Parcel
	if err := pc.DB.First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Parcel not found",
			})
		}
		logger.Error("Failed to fetch parcel", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if !parcel.DeliveryStatus.IsCompleted() {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Parcel must be delivered before cash-out",
		})
	}
	if parcel.CashoutStatus == parcelModel.CashoutStatusCashedOut {
		return pc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Parcel is already cashed out",
		})
	}

	actor := updatedBy(c)
	now := time.Now()

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		parcel.CashoutStatus = parcelModel.CashoutStatusCashedOut
		parcel.CashedOutAt = &now
		if err := tx.Save(&parcel).Error; err != nil {
			return err
		}
		return parcel_event.AppendParcelEvent(tx, &parcel, "cashed_out", "", actor)
	})
	if err != nil {
		logger.Error("Failed to mark parcel cashed out", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to mark parcel cashed out",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Parcel cashed out successfully",
		Data:    parcel,
	})
}

// RiderParcels returns a rider's active assignments
func (pc *ParcelController) RiderParcels(c *fiber.Ctx) error {
	email := utils.NormalizeEmail(c.Query("email"))
	if email == "" {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email query parameter is required",
		})
	}

	var parcels []parcelModel.Parcel
	err := pc.DB.
		Where("assigned_rider_email = ?", email).
		Where("delivery_status IN ?", []parcelModel.DeliveryStatus{
			parcelModel.DeliveryStatusRiderAssigned,
			parcelModel.DeliveryStatusInTransit,
		}).
		Order("created_at DESC").
		Find(&parcels).Error
	if err != nil {
		logger.Error("Failed to fetch rider parcels", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch rider parcels",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Rider parcels fetched successfully",
		Data:    parcels,
	})
}

// RiderCompletedParcels returns a rider's finished deliveries
func (pc *ParcelController) RiderCompletedParcels(c *fiber.Ctx) error {
	email := utils.NormalizeEmail(c.Query("email"))
	if email == "" {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email query parameter is required",
		})
	}

	var parcels []parcelModel.Parcel
	err := pc.DB.
		Where("assigned_rider_email = ?", email).
		Where("delivery_status IN ?", []parcelModel.DeliveryStatus{
			parcelModel.DeliveryStatusDelivered,
			parcelModel.DeliveryStatusServiceCenterDelivered,
		}).
		Order("created_at DESC").
		Find(&parcels).Error
	if err != nil {
		logger.Error("Failed to fetch completed rider parcels", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch completed rider parcels",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Completed rider parcels fetched successfully",
		Data:    parcels,
	})
}
