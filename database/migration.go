package database

import (
	log_model "parcel-delivery/models/log"
	"parcel-delivery/models/parcel"
	"parcel-delivery/models/payment"
	"parcel-delivery/models/rider"
	"parcel-delivery/models/tracking"
	"parcel-delivery/models/user"

	"gorm.io/gorm"
)

// Migrate auto-migrates every model. Uniqueness invariants (user email,
// payment transaction id, parcel tracking code, rider email) are enforced by
// the unique indexes declared on the models, not by application-level checks.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&parcel.Parcel{},
		&payment.Payment{},
		&rider.Rider{},
		&tracking.TrackingEvent{},
		&log_model.Log{},
	)
}
