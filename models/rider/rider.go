package rider

import (
	"time"
)

// Rider represents a delivery rider. Registration inserts a pending row;
// activation flips status to active and promotes the matching user's role.
type Rider struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone    string `gorm:"type:varchar(20);not null" json:"phone"`
	District string `gorm:"type:varchar(100);not null;index" json:"district"`

	Status     Status     `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	WorkStatus WorkStatus `gorm:"type:varchar(20);not null;default:idle" json:"work_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusActive
}

type WorkStatus string

const (
	WorkStatusIdle       WorkStatus = "idle"
	WorkStatusInDelivery WorkStatus = "in_delivery"
)
