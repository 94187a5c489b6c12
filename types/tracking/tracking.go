package tracking

import (
	"fmt"
)

// AppendEventRequest represents the request payload for appending a tracking event
type AppendEventRequest struct {
	TrackingCode string `json:"tracking_id" validate:"required,min=1,max=64"`
	Status       string `json:"status" validate:"required,min=1,max=50"`
	Message      string `json:"message" validate:"omitempty"`
	UpdatedBy    string `json:"updated_by" validate:"omitempty,max=255"`
}

func (a AppendEventRequest) Validate() error {
	if a.TrackingCode == "" {
		return fmt.Errorf("tracking_id is required")
	}
	if a.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
