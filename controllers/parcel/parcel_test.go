package parcel

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"parcel-delivery/database"
	parcelModel "parcel-delivery/models/parcel"
	riderModel "parcel-delivery/models/rider"
	trackingModel "parcel-delivery/models/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("email", "admin@test.com")
		return c.Next()
	})

	pc := NewParcelController(db, nil)
	app.Get("/api/parcels", pc.List)
	app.Get("/api/parcels/:id", pc.Get)
	app.Post("/api/parcels", pc.Store)
	app.Delete("/api/parcels/:id", pc.Delete)
	app.Patch("/api/parcels/:id/assign", pc.AssignRider)
	app.Patch("/api/parcels/:id/status", pc.UpdateStatus)
	app.Patch("/api/parcels/:id/cashout", pc.Cashout)
	app.Get("/api/rider/parcels", pc.RiderParcels)
	app.Get("/api/rider/completed-parcels", pc.RiderCompletedParcels)

	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return resp, decoded
}

func createParcelPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":          "Documents",
		"sender_name":    "Alice",
		"sender_phone":   "01712345678",
		"receiver_name":  "Bob",
		"receiver_phone": "01812345678",
		"cost":           120.5,
	}
}

func TestStoreAndGetParcel(t *testing.T) {
	app, db := setupTest(t)

	resp, body := doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	id := uint(data["insertedId"].(float64))
	require.NotZero(t, id)
	require.NotEmpty(t, data["tracking_code"])

	var stored parcelModel.Parcel
	require.NoError(t, db.First(&stored, id).Error)
	assert.Equal(t, "Documents", stored.Title)
	assert.Equal(t, "admin@test.com", stored.CreatedBy)
	assert.Equal(t, parcelModel.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Equal(t, parcelModel.DeliveryStatusPending, stored.DeliveryStatus)
	assert.False(t, stored.CreatedAt.IsZero())

	// Creation seeds the tracking trail.
	var events []trackingModel.TrackingEvent
	require.NoError(t, db.Where("tracking_code = ?", stored.TrackingCode).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "pending", events[0].Status)

	resp, body = doRequest(t, app, "GET", "/api/parcels/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	fetched := body["data"].(map[string]interface{})
	assert.Equal(t, "Documents", fetched["title"])
}

func TestStoreParcelRejectsMissingFields(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doRequest(t, app, "POST", "/api/parcels", map[string]interface{}{
		"title": "No sender",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetParcelInvalidAndMissingID(t *testing.T) {
	app, _ := setupTest(t)

	resp, _ := doRequest(t, app, "GET", "/api/parcels/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", "/api/parcels/999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteParcelIsIdempotent(t *testing.T) {
	app, _ := setupTest(t)

	resp, body := doRequest(t, app, "DELETE", "/api/parcels/42", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["deleted"])

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	resp, body = doRequest(t, app, "DELETE", "/api/parcels/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, true, data["deleted"])
}

func TestListParcelsFiltersByCreator(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	require.NoError(t, db.Model(&parcelModel.Parcel{}).Where("id = ?", 1).
		Update("created_by", "a@x.com").Error)

	resp, body := doRequest(t, app, "GET", "/api/parcels?email=a@x.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	parcels := body["data"].([]interface{})
	require.Len(t, parcels, 1)

	resp, body = doRequest(t, app, "GET", "/api/parcels?email=nobody@x.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])
}

func seedActiveRider(t *testing.T, db *gorm.DB) riderModel.Rider {
	t.Helper()
	rider := riderModel.Rider{
		Name:       "Rider One",
		Email:      "rider1@test.com",
		Phone:      "01911111111",
		District:   "Dhaka",
		Status:     riderModel.StatusActive,
		WorkStatus: riderModel.WorkStatusIdle,
	}
	require.NoError(t, db.Create(&rider).Error)
	return rider
}

func TestAssignRiderLifecycle(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	rider := seedActiveRider(t, db)

	resp, _ := doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{
		"rider_id": rider.ID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parcel parcelModel.Parcel
	require.NoError(t, db.First(&parcel, 1).Error)
	assert.Equal(t, parcelModel.DeliveryStatusRiderAssigned, parcel.DeliveryStatus)
	require.NotNil(t, parcel.AssignedRiderEmail)
	assert.Equal(t, "rider1@test.com", *parcel.AssignedRiderEmail)

	var updatedRider riderModel.Rider
	require.NoError(t, db.First(&updatedRider, rider.ID).Error)
	assert.Equal(t, riderModel.WorkStatusInDelivery, updatedRider.WorkStatus)

	// A second assignment on the same parcel is an illegal transition.
	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{
		"rider_id": rider.ID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAssignRiderRejectsBusyOrPendingRider(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())

	pending := riderModel.Rider{
		Name: "Pending", Email: "pending@test.com", Phone: "01922222222",
		District: "Dhaka", Status: riderModel.StatusPending, WorkStatus: riderModel.WorkStatusIdle,
	}
	require.NoError(t, db.Create(&pending).Error)

	resp, _ := doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{
		"rider_id": pending.ID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	busy := riderModel.Rider{
		Name: "Busy", Email: "busy@test.com", Phone: "01933333333",
		District: "Dhaka", Status: riderModel.StatusActive, WorkStatus: riderModel.WorkStatusInDelivery,
	}
	require.NoError(t, db.Create(&busy).Error)

	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{
		"rider_id": busy.ID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDeliveryStatusLifecycle(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	rider := seedActiveRider(t, db)
	doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{"rider_id": rider.ID})

	// Skipping in_transit is rejected.
	resp, _ := doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{
		"status": "delivered",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{
		"status": "in_transit",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parcel parcelModel.Parcel
	require.NoError(t, db.First(&parcel, 1).Error)
	require.NotNil(t, parcel.PickedAt)

	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{
		"status": "delivered",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&parcel, 1).Error)
	require.NotNil(t, parcel.DeliveredAt)
	assert.False(t, parcel.DeliveredAt.Before(parcel.CreatedAt))

	// Delivery frees the rider.
	var freedRider riderModel.Rider
	require.NoError(t, db.First(&freedRider, rider.ID).Error)
	assert.Equal(t, riderModel.WorkStatusIdle, freedRider.WorkStatus)

	// Terminal states accept no further transitions.
	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{
		"status": "in_transit",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	app, _ := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	resp, _ := doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{
		"status": "teleported",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCashoutRequiresDelivery(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())

	resp, _ := doRequest(t, app, "PATCH", "/api/parcels/1/cashout", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	rider := seedActiveRider(t, db)
	doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{"rider_id": rider.ID})
	doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{"status": "in_transit"})
	doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{"status": "delivered"})

	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/cashout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parcel parcelModel.Parcel
	require.NoError(t, db.First(&parcel, 1).Error)
	assert.Equal(t, parcelModel.CashoutStatusCashedOut, parcel.CashoutStatus)
	require.NotNil(t, parcel.CashedOutAt)

	// Second cash-out is rejected.
	resp, _ = doRequest(t, app, "PATCH", "/api/parcels/1/cashout", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRiderParcelViews(t *testing.T) {
	app, db := setupTest(t)

	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	doRequest(t, app, "POST", "/api/parcels", createParcelPayload())
	rider := seedActiveRider(t, db)

	doRequest(t, app, "PATCH", "/api/parcels/1/assign", map[string]interface{}{"rider_id": rider.ID})

	resp, body := doRequest(t, app, "GET", "/api/rider/parcels?email=rider1@test.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]interface{}), 1)

	resp, body = doRequest(t, app, "GET", "/api/rider/completed-parcels?email=rider1@test.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])

	doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{"status": "in_transit"})
	doRequest(t, app, "PATCH", "/api/parcels/1/status", map[string]interface{}{"status": "delivered"})

	resp, body = doRequest(t, app, "GET", "/api/rider/parcels?email=rider1@test.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])

	resp, body = doRequest(t, app, "GET", "/api/rider/completed-parcels?email=rider1@test.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]interface{}), 1)
}
