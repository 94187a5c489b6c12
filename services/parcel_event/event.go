package parcel_event

import (
	"time"

	parcelModel "parcel-delivery/models/parcel"
	trackingModel "parcel-delivery/models/tracking"

	"gorm.io/gorm"
)

// AppendParcelEvent writes one entry into the parcel's tracking trail. The
// trail is append-only; callers never update or delete prior events.
func AppendParcelEvent(tx *gorm.DB, p *parcelModel.Parcel, status, message, updatedBy string) error {
	ev := trackingModel.TrackingEvent{
		TrackingCode: p.TrackingCode,
		ParcelID:     &p.ID,
		Status:       status,
		Message:      message,
		UpdatedBy:    updatedBy,
		Time:         time.Now(),
	}

	return tx.Create(&ev).Error
}
