package parcel

import (
	"fmt"

	"parcel-delivery/utils"
)

// CreateParcelRequest represents the request payload for creating a parcel
type CreateParcelRequest struct {
	Title           string  `json:"title" validate:"required,min=1,max=255"`
	SenderName      string  `json:"sender_name" validate:"required,min=1,max=255"`
	SenderPhone     string  `json:"sender_phone" validate:"required,phone"`
	SenderRegion    string  `json:"sender_region" validate:"omitempty,max=100"`
	SenderAddress   string  `json:"sender_address" validate:"omitempty"`
	ReceiverName    string  `json:"receiver_name" validate:"required,min=1,max=255"`
	ReceiverPhone   string  `json:"receiver_phone" validate:"required,phone"`
	ReceiverRegion  string  `json:"receiver_region" validate:"omitempty,max=100"`
	ReceiverAddress string  `json:"receiver_address" validate:"omitempty"`
	Cost            float64 `json:"cost" validate:"omitempty,gte=0"`
}

func (p CreateParcelRequest) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.SenderName == "" {
		return fmt.Errorf("sender_name is required")
	}
	if !utils.ValidatePhoneNumber(p.SenderPhone) {
		return fmt.Errorf("sender_phone is not a valid phone number")
	}
	if p.ReceiverName == "" {
		return fmt.Errorf("receiver_name is required")
	}
	if !utils.ValidatePhoneNumber(p.ReceiverPhone) {
		return fmt.Errorf("receiver_phone is not a valid phone number")
	}
	if p.Cost < 0 {
		return fmt.Errorf("cost must not be negative")
	}
	return nil
}

// AssignRiderRequest represents the request payload for assigning a rider to a parcel
type AssignRiderRequest struct {
	RiderID uint `json:"rider_id" validate:"required"`
}

func (a AssignRiderRequest) Validate() error {
	if a.RiderID == 0 {
		return fmt.Errorf("rider_id is required")
	}
	return nil
}

// UpdateDeliveryStatusRequest represents the request payload for a delivery status change
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (u UpdateDeliveryStatusRequest) Validate() error {
	if u.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
