package user

import (
	"errors"
	"fmt"
	"time"

	"parcel-delivery/logger"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/types"
	userTypes "parcel-delivery/types/user"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController handles user directory HTTP requests
type UserController struct {
	DB             *gorm.DB
	loggerInstance *logger.AsyncLogger
}

// NewUserController creates a new user controller
func NewUserController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *UserController {
	return &UserController{
		DB:             db,
		loggerInstance: asyncLogger,
	}
}

func (uc *UserController) logAPIRequest(c *fiber.Ctx) {
	if uc.loggerInstance == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	uc.loggerInstance.Log(logEntry)
}

func (uc *UserController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	uc.logAPIRequest(c)
	return result
}

// Login upserts the user record for a verified login. Emails are stored
// lowercased. The insert is attempted first and a duplicate key falls back to
// refreshing LastLogInAt, so the inserted flag reflects the actual insert
// outcome even when concurrent first logins race on the unique index.
func (uc *UserController) Login(c *fiber.Ctx) error {
	var req userTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	email := utils.NormalizeEmail(req.Email)
	now := time.Now()

	u := userModel.User{
		Email:       email,
		Name:        req.Name,
		Role:        userModel.RoleUser,
		LastLogInAt: &now,
	}
	err := uc.DB.Create(&u).Error
	inserted := err == nil
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = uc.DB.Model(&userModel.User{}).Where("email = ?", email).
			Update("last_log_in_at", now).Error
	}
	if err != nil {
		logger.Error("Failed to upsert user on login", err)
		return uc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to record login",
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login recorded successfully",
		Data:    fiber.Map{"inserted": inserted},
	})
}

// Search matches users by case-insensitive email prefix, capped at 10 rows.
// LIKE metacharacters in the query are escaped so they match literally.
func (uc *UserController) Search(c *fiber.Ctx) error {
	query := utils.NormalizeEmail(c.Query("q"))
	if query == "" {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "q query parameter is required",
		})
	}

	var users []userModel.User
	if err := uc.DB.Where(`email LIKE ? ESCAPE '\'`, utils.EscapeLike(query)+"%").Limit(10).Find(&users).Error; err != nil {
		logger.Error("Failed to search users", err)
		return uc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to search users",
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Users fetched successfully",
		Data:    users,
	})
}

// GetRole returns the role for an email, defaulting to "user" when no record
// or role exists.
func (uc *UserController) GetRole(c *fiber.Ctx) error {
	email := utils.NormalizeEmail(c.Query("email"))
	if email == "" {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email query parameter is required",
		})
	}

	role := userModel.RoleUser
	var u userModel.User
	err := uc.DB.Where("email = ?", email).First(&u).Error
	if err == nil && u.Role != "" {
		role = u.Role
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to fetch user role", err)
		return uc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Role fetched successfully",
		Data:    fiber.Map{"role": role},
	})
}

// SetRole updates a user's role. Only admin and user can be set here; the
// rider role is granted exclusively by the rider activation cascade.
func (uc *UserController) SetRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	var req userTypes.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	role := userModel.Role(req.Role)
	if !role.IsAssignable() {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Role %q cannot be assigned directly", req.Role),
		})
	}

	result := uc.DB.Model(&userModel.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		logger.Error("Failed to update user role", result.Error)
		return uc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update role",
		})
	}
	if result.RowsAffected == 0 {
		return uc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "User not found",
		})
	}

	logger.Success(fmt.Sprintf("User %d role set to %s", id, role))

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Role updated successfully",
	})
}

// List returns users newest-first, capped at 50 rows
func (uc *UserController) List(c *fiber.Ctx) error {
	var users []userModel.User
	if err := uc.DB.Order("created_at DESC").Limit(50).Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return uc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Users fetched successfully",
		Data:    users,
	})
}
