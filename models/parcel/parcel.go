package parcel

import (
	"time"
)

// Parcel is the aggregate root for delivery state. Payments and tracking
// events reference it by id but are not owned by it.
type Parcel struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingCode string `gorm:"type:varchar(64);not null;uniqueIndex" json:"tracking_code"`
	CreatedBy    string `gorm:"type:varchar(255);not null;index" json:"created_by"`

	Title           string  `gorm:"type:varchar(255);not null" json:"title"`
	SenderName      string  `gorm:"type:varchar(255);not null" json:"sender_name"`
	SenderPhone     string  `gorm:"type:varchar(20);not null" json:"sender_phone"`
	SenderRegion    string  `gorm:"type:varchar(100)" json:"sender_region"`
	SenderAddress   string  `gorm:"type:text" json:"sender_address"`
	ReceiverName    string  `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone   string  `gorm:"type:varchar(20);not null" json:"receiver_phone"`
	ReceiverRegion  string  `gorm:"type:varchar(100)" json:"receiver_region"`
	ReceiverAddress string  `gorm:"type:text" json:"receiver_address"`
	Cost            float64 `gorm:"type:decimal(10,2)" json:"cost"`

	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null;default:unpaid" json:"payment_status"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(30);not null;default:pending;index" json:"delivery_status"`
	CashoutStatus  CashoutStatus  `gorm:"type:varchar(20);not null;default:pending" json:"cashout_status"`

	AssignedRiderID    *uint   `gorm:"index" json:"assigned_rider_id,omitempty"`
	AssignedRiderEmail *string `gorm:"type:varchar(255);index" json:"assigned_rider_email,omitempty"`
	AssignedRiderName  *string `gorm:"type:varchar(255)" json:"assigned_rider_name,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	PickedAt    *time.Time `json:"picked_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CashedOutAt *time.Time `json:"cashed_out_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
