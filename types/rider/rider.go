package rider

import (
	"fmt"

	"parcel-delivery/utils"
)

// RegisterRiderRequest represents the request payload for registering a rider
type RegisterRiderRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	District string `json:"district" validate:"required,min=1,max=100"`
}

func (r RegisterRiderRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !utils.ValidatePhoneNumber(r.Phone) {
		return fmt.Errorf("phone is not a valid phone number")
	}
	if r.District == "" {
		return fmt.Errorf("district is required")
	}
	return nil
}

// UpdateRiderStatusRequest represents the request payload for a rider status change
type UpdateRiderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active"`
}

func (u UpdateRiderStatusRequest) Validate() error {
	if u.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
