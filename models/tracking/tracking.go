package tracking

import (
	"time"
)

// TrackingEvent is one entry in a parcel's append-only tracking trail.
// Events are never updated or deleted and are read back ascending by time.
type TrackingEvent struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingCode string `gorm:"type:varchar(64);not null;index" json:"tracking_code"`
	ParcelID     *uint  `gorm:"index" json:"parcel_id,omitempty"`

	Status    string `gorm:"type:varchar(50);not null" json:"status"`
	Message   string `gorm:"type:text" json:"message"`
	UpdatedBy string `gorm:"type:varchar(255)" json:"updated_by"`

	Time time.Time `gorm:"not null;index" json:"time"`
}

// TableName sets the table name for the TrackingEvent model
func (TrackingEvent) TableName() string {
	return "tracking_events"
}
