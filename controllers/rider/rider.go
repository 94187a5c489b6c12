package rider

import (
	"errors"
	"fmt"

	"parcel-delivery/logger"
	riderModel "parcel-delivery/models/rider"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/types"
	riderTypes "parcel-delivery/types/rider"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RiderController handles rider registration and lifecycle
type RiderController struct {
	DB             *gorm.DB
	loggerInstance *logger.AsyncLogger
}

// NewRiderController creates a new rider controller
func NewRiderController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *RiderController {
	return &RiderController{
		DB:             db,
		loggerInstance: asyncLogger,
	}
}

func (rc *RiderController) logAPIRequest(c *fiber.Ctx) {
	if rc.loggerInstance == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	rc.loggerInstance.Log(logEntry)
}

func (rc *RiderController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	rc.logAPIRequest(c)
	return result
}

// Register inserts a rider application with status pending and work status
// idle. No user record is touched here: the rider role is granted only when
// the application is activated.
func (rc *RiderController) Register(c *fiber.Ctx) error {
	var req riderTypes.RegisterRiderRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	rider := riderModel.Rider{
		Name:       req.Name,
		Email:      utils.NormalizeEmail(req.Email),
		Phone:      req.Phone,
		District:   req.District,
		Status:     riderModel.StatusPending,
		WorkStatus: riderModel.WorkStatusIdle,
	}

	if err := rc.DB.Create(&rider).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return rc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "A rider with this email already exists",
			})
		}
		logger.Error("Failed to register rider", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to register rider",
		})
	}

	logger.Success(fmt.Sprintf("Rider %d registered (%s)", rider.ID, rider.Email))

	return rc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Rider registered successfully",
		Data:    fiber.Map{"insertedId": rider.ID},
	})
}

// Pending lists rider applications awaiting approval
func (rc *RiderController) Pending(c *fiber.Ctx) error {
	return rc.listByStatus(c, riderModel.StatusPending)
}

// Active lists approved riders
func (rc *RiderController) Active(c *fiber.Ctx) error {
	return rc.listByStatus(c, riderModel.StatusActive)
}

func (rc *RiderController) listByStatus(c *fiber.Ctx, status riderModel.Status) error {
	var riders []riderModel.Rider
	if err := rc.DB.Where("status = ?", status).Order("created_at DESC").Find(&riders).Error; err != nil {
		logger.Error("Failed to list riders", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch riders",
		})
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Riders fetched successfully",
		Data:    riders,
	})
}

// Available lists active, idle riders, optionally narrowed to a district
func (rc *RiderController) Available(c *fiber.Ctx) error {
	query := rc.DB.
		Where("status = ?", riderModel.StatusActive).
		Where("work_status = ?", riderModel.WorkStatusIdle)

	if district := c.Query("district"); district != "" {
		query = query.Where("district = ?", district)
	}

	var riders []riderModel.Rider
	if err := query.Order("created_at DESC").Find(&riders).Error; err != nil {
		logger.Error("Failed to list available riders", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch available riders",
		})
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Available riders fetched successfully",
		Data:    riders,
	})
}

// SetStatus updates a rider application's status. A transition to active
// also grants the rider role to the matching user record, in the same
// transaction; the user row is created if it does not exist yet.
func (rc *RiderController) SetStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid rider id",
		})
	}

	var req riderTypes.UpdateRiderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	status := riderModel.Status(req.Status)
	if !status.IsValid() {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Unknown rider status %q", req.Status),
		})
	}

	var rider riderModel.Rider
	if err := rc.DB.First(&rider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Rider not found",
			})
		}
		logger.Error("Failed to fetch rider", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rider).Update("status", status).Error; err != nil {
			return err
		}

		if status != riderModel.StatusActive {
			return nil
		}

		// Role cascade: activation promotes the matching user to rider.
		u := userModel.User{
			Email: rider.Email,
			Name:  rider.Name,
			Role:  userModel.RoleRider,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"role": userModel.RoleRider}),
		}).Create(&u).Error
	})
	if err != nil {
		logger.Error("Failed to update rider status", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update rider status",
		})
	}

	logger.Success(fmt.Sprintf("Rider %d status set to %s", rider.ID, status))

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Rider status updated successfully",
		Data:    rider,
	})
}
