package user

import (
	"fmt"
)

// LoginRequest represents the upsert payload sent after a successful
// credential verification on the client side.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=255"`
}

func (l LoginRequest) Validate() error {
	if l.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// UpdateRoleRequest represents the request payload for a role change
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

func (u UpdateRoleRequest) Validate() error {
	if u.Role == "" {
		return fmt.Errorf("role is required")
	}
	return nil
}
