package user

import (
	"time"
)

// User model for everyone who logs in: customers, riders and admins.
type User struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name  string `gorm:"type:varchar(255)" json:"name"`
	Role  Role   `gorm:"type:varchar(20);not null;default:user" json:"role"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogInAt *time.Time `json:"last_log_in_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleRider Role = "rider"
)

func (r Role) String() string {
	return string(r)
}

// IsAssignable reports whether the role may be set directly through the
// role-update endpoint. The rider role is only ever granted by the rider
// activation cascade.
func (r Role) IsAssignable() bool {
	return r == RoleUser || r == RoleAdmin
}
