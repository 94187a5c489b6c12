package payment

import (
	"time"
)

// Payment records a successful checkout for a parcel. Exactly one row exists
// per transaction id; its existence implies the parcel is marked paid.
type Payment struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ParcelID uint `gorm:"not null;index" json:"parcel_id"`

	Email         string  `gorm:"type:varchar(255);not null;index" json:"email"`
	Amount        float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	TransactionID string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"transaction_id"`
	PaymentMethod string  `gorm:"type:varchar(50)" json:"payment_method"`

	PaidAt    time.Time `gorm:"autoCreateTime" json:"paid_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
