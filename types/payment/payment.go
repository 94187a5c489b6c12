package payment

import (
	"fmt"
)

// RecordPaymentRequest represents the request payload for recording a completed payment
type RecordPaymentRequest struct {
	ParcelID      uint    `json:"parcel_id" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	TransactionID string  `json:"transaction_id" validate:"required,min=1,max=255"`
	PaymentMethod string  `json:"payment_method" validate:"omitempty,max=50"`
}

func (r RecordPaymentRequest) Validate() error {
	if r.ParcelID == 0 {
		return fmt.Errorf("parcel_id is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if r.TransactionID == "" {
		return fmt.Errorf("transaction_id is required")
	}
	return nil
}

// CreatePaymentIntentRequest represents the request payload for creating a payment intent
type CreatePaymentIntentRequest struct {
	AmountInCent int64 `json:"amountInCent" validate:"required,gt=0"`
}

func (r CreatePaymentIntentRequest) Validate() error {
	if r.AmountInCent <= 0 {
		return fmt.Errorf("amountInCent must be greater than zero")
	}
	return nil
}
