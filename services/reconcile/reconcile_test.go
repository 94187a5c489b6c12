package reconcile

import (
	"testing"

	"parcel-delivery/database"
	parcelModel "parcel-delivery/models/parcel"
	paymentModel "parcel-delivery/models/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	return db
}

func seedParcel(t *testing.T, db *gorm.DB, code string, status parcelModel.PaymentStatus) parcelModel.Parcel {
	t.Helper()
	p := parcelModel.Parcel{
		TrackingCode:   code,
		CreatedBy:      "a@x.com",
		Title:          "Box",
		SenderName:     "Alice",
		SenderPhone:    "01712345678",
		ReceiverName:   "Bob",
		ReceiverPhone:  "01812345678",
		PaymentStatus:  status,
		DeliveryStatus: parcelModel.DeliveryStatusPending,
		CashoutStatus:  parcelModel.CashoutStatusPending,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestSweepFindsPaidParcelsWithoutPaymentRows(t *testing.T) {
	db := setupTest(t)

	orphan := seedParcel(t, db, "trk-orphan", parcelModel.PaymentStatusPaid)
	settled := seedParcel(t, db, "trk-settled", parcelModel.PaymentStatusPaid)
	seedParcel(t, db, "trk-unpaid", parcelModel.PaymentStatusUnpaid)

	require.NoError(t, db.Create(&paymentModel.Payment{
		ParcelID:      settled.ID,
		Email:         "a@x.com",
		Amount:        100,
		TransactionID: "txn_settled",
	}).Error)

	got, err := NewReconciler(db, "").Sweep()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, orphan.ID, got[0].ID)
}

func TestSweepEmptyWhenConsistent(t *testing.T) {
	db := setupTest(t)

	p := seedParcel(t, db, "trk-ok", parcelModel.PaymentStatusPaid)
	require.NoError(t, db.Create(&paymentModel.Payment{
		ParcelID:      p.ID,
		Email:         "a@x.com",
		Amount:        50,
		TransactionID: "txn_ok",
	}).Error)

	got, err := NewReconciler(db, "").Sweep()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	db := setupTest(t)

	_, err := NewReconciler(db, "not-a-schedule").Start()
	assert.Error(t, err)
}
