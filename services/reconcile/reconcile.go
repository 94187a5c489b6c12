package reconcile

import (
	"fmt"

	"parcel-delivery/logger"
	parcelModel "parcel-delivery/models/parcel"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Reconciler periodically looks for parcels marked paid that have no payment
// row. Payment recording is transactional, so a hit here means manual writes
// or a partially restored backup; it is surfaced, not auto-repaired.
type Reconciler struct {
	db       *gorm.DB
	schedule string
}

func NewReconciler(db *gorm.DB, schedule string) *Reconciler {
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &Reconciler{db: db, schedule: schedule}
}

// Start registers the sweep on a cron scheduler and starts it.
func (r *Reconciler) Start() (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(r.schedule, func() {
		if _, err := r.Sweep(); err != nil {
			logger.Error("Payment reconciliation sweep failed", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// Sweep returns the parcels updated today that are marked paid without a
// matching payment record.
func (r *Reconciler) Sweep() ([]parcelModel.Parcel, error) {
	var orphans []parcelModel.Parcel

	err := r.db.
		Where("payment_status = ?", parcelModel.PaymentStatusPaid).
		Where("updated_at >= ?", now.BeginningOfDay()).
		Where("NOT EXISTS (SELECT 1 FROM payments WHERE payments.parcel_id = parcels.id)").
		Find(&orphans).Error
	if err != nil {
		return nil, err
	}

	for _, p := range orphans {
		logger.Warning(fmt.Sprintf("Parcel %d (%s) is marked paid but has no payment record", p.ID, p.TrackingCode))
	}

	return orphans, nil
}
