package payment

import (
	"errors"
	"fmt"

	paymentClient "parcel-delivery/httpServices/paymentgw"
	"parcel-delivery/logger"
	parcelModel "parcel-delivery/models/parcel"
	paymentModel "parcel-delivery/models/payment"
	"parcel-delivery/services/parcel_event"
	"parcel-delivery/types"
	paymentTypes "parcel-delivery/types/payment"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentController handles payment recording and payment-intent creation
type PaymentController struct {
	DB             *gorm.DB
	Gateway        *paymentClient.PaymentClient
	loggerInstance *logger.AsyncLogger
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *gorm.DB, gateway *paymentClient.PaymentClient, asyncLogger *logger.AsyncLogger) *PaymentController {
	return &PaymentController{
		DB:             db,
		Gateway:        gateway,
		loggerInstance: asyncLogger,
	}
}

func (pc *PaymentController) logAPIRequest(c *fiber.Ctx) {
	if pc.loggerInstance == nil {
		return
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.loggerInstance.Log(logEntry)
}

func (pc *PaymentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

// Record flips the parcel to paid and inserts the payment row in one
// transaction. Re-posting a transaction id that was already recorded returns
// the existing payment, so client retries cannot produce duplicate rows.
func (pc *PaymentController) Record(c *fiber.Ctx) error {
	var req paymentTypes.RecordPaymentRequest
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

	// Idempotency: the transaction id is the client's retry key.
	var existing paymentModel.Payment
	err := pc.DB.Where("transaction_id = ?", req.TransactionID).First(&existing).Error
	if err == nil {
		return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Payment already recorded",
			Data:    fiber.Map{"insertedId": existing.ID, "payment": existing},
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check for existing payment", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	var parcel parcelModel.Parcel
	if err := pc.DB.First(&parcel, req.ParcelID).Error; err != nil {
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

	payment := paymentModel.Payment{
		ParcelID:      parcel.ID,
		Email:         utils.NormalizeEmail(req.Email),
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&parcel).Update("payment_status", parcelModel.PaymentStatusPaid).Error; err != nil {
			return err
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return parcel_event.AppendParcelEvent(tx, &parcel, "paid",
			fmt.Sprintf("Payment recorded (transaction %s)", req.TransactionID), payment.Email)
	})
	if err != nil {
		// Lost a race against a concurrent retry of the same transaction id;
		// answer with the row the winner inserted.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := pc.DB.Where("transaction_id = ?", req.TransactionID).First(&existing).Error; ferr == nil {
				return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
					Status:  fiber.StatusOK,
					Message: "Payment already recorded",
					Data:    fiber.Map{"insertedId": existing.ID, "payment": existing},
				})
			}
		}
		logger.Error("Failed to record payment", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to record payment",
		})
	}

	logger.Success(fmt.Sprintf("Payment %d recorded for parcel %d (transaction %s)", payment.ID, parcel.ID, req.TransactionID))

	return pc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Payment recorded successfully",
		Data:    fiber.Map{"insertedId": payment.ID, "payment": payment},
	})
}

// List returns a payer's payments newest-first
func (pc *PaymentController) List(c *fiber.Ctx) error {
	email := utils.NormalizeEmail(c.Query("email"))
	if email == "" {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email query parameter is required",
		})
	}

	var payments []paymentModel.Payment
	if err := pc.DB.Where("email = ?", email).Order("paid_at DESC").Find(&payments).Error; err != nil {
		logger.Error("Failed to list payments", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to fetch payments",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payments fetched successfully",
		Data:    payments,
	})
}

// CreateIntent delegates to the payment gateway and returns the client secret
func (pc *PaymentController) CreateIntent(c *fiber.Ctx) error {
	var req paymentTypes.CreatePaymentIntentRequest
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

	intent, err := pc.Gateway.CreatePaymentIntent(req.AmountInCent, "usd")
	if err != nil {
		logger.Error("Failed to create payment intent", err)
		return pc.sendResponseWithLog(c, fiber.StatusBadGateway, types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Payment gateway request failed",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment intent created successfully",
		Data:    fiber.Map{"clientSecret": intent.ClientSecret},
	})
}
