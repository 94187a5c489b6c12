package payment

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"parcel-delivery/database"
	paymentgw "parcel-delivery/httpServices/paymentgw"
	parcelModel "parcel-delivery/models/parcel"
	paymentModel "parcel-delivery/models/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T, gateway *paymentgw.PaymentClient) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	app := fiber.New()
	pc := NewPaymentController(db, gateway, nil)
	app.Get("/api/payments", pc.List)
	app.Post("/api/payments", pc.Record)
	app.Post("/api/create-payment-intent", pc.CreateIntent)

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

func seedParcel(t *testing.T, db *gorm.DB) parcelModel.Parcel {
	t.Helper()
	p := parcelModel.Parcel{
		TrackingCode:   "trk-pay-1",
		CreatedBy:      "a@x.com",
		Title:          "Books",
		SenderName:     "Alice",
		SenderPhone:    "01712345678",
		ReceiverName:   "Bob",
		ReceiverPhone:  "01812345678",
		PaymentStatus:  parcelModel.PaymentStatusUnpaid,
		DeliveryStatus: parcelModel.DeliveryStatusPending,
		CashoutStatus:  parcelModel.CashoutStatusPending,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func recordPayload(parcelID uint) map[string]interface{} {
	return map[string]interface{}{
		"parcel_id":      parcelID,
		"email":          "A@X.com",
		"amount":         120.5,
		"transaction_id": "txn_123",
		"payment_method": "card",
	}
}

func TestRecordPaymentFlipsParcelAndInsertsRow(t *testing.T) {
	app, db := setupTest(t, nil)
	p := seedParcel(t, db)

	resp, _ := doRequest(t, app, "POST", "/api/payments", recordPayload(p.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var updated parcelModel.Parcel
	require.NoError(t, db.First(&updated, p.ID).Error)
	assert.Equal(t, parcelModel.PaymentStatusPaid, updated.PaymentStatus)

	var payments []paymentModel.Payment
	require.NoError(t, db.Where("parcel_id = ?", p.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, "a@x.com", payments[0].Email)
	assert.Equal(t, "txn_123", payments[0].TransactionID)
}

func TestRecordPaymentIsIdempotentOnTransactionID(t *testing.T) {
	app, db := setupTest(t, nil)
	p := seedParcel(t, db)

	resp, _ := doRequest(t, app, "POST", "/api/payments", recordPayload(p.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// A client retry with the same transaction id must not add a second row.
	resp, _ = doRequest(t, app, "POST", "/api/payments", recordPayload(p.ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&paymentModel.Payment{}).Where("transaction_id = ?", "txn_123").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPaymentConcurrentRetries(t *testing.T) {
	app, db := setupTest(t, nil)
	p := seedParcel(t, db)

	// Concurrent retries with one transaction id: whoever loses the insert
	// race must still get the idempotent answer, never a server error.
	const workers = 4
	start := make(chan struct{})
	statuses := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			payload, err := json.Marshal(recordPayload(p.ID))
			if err != nil {
				errs[i] = err
				return
			}
			req := httptest.NewRequest("POST", "/api/payments", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			if err != nil {
				errs[i] = err
				return
			}
			statuses[i] = resp.StatusCode
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Contains(t, []int{fiber.StatusOK, fiber.StatusCreated}, statuses[i])
		if statuses[i] == fiber.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, db.Model(&paymentModel.Payment{}).Where("transaction_id = ?", "txn_123").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPaymentValidation(t *testing.T) {
	app, _ := setupTest(t, nil)

	resp, _ := doRequest(t, app, "POST", "/api/payments", map[string]interface{}{
		"parcel_id":      1,
		"email":          "a@x.com",
		"amount":         0,
		"transaction_id": "txn_0",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/api/payments", recordPayload(999))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListPaymentsByEmail(t *testing.T) {
	app, db := setupTest(t, nil)
	p := seedParcel(t, db)

	doRequest(t, app, "POST", "/api/payments", recordPayload(p.ID))

	resp, body := doRequest(t, app, "GET", "/api/payments?email=a@x.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]interface{}), 1)

	resp, body = doRequest(t, app, "GET", "/api/payments?email=other@x.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])
}

func TestCreatePaymentIntent(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret"}`))
	}))
	defer upstream.Close()

	app, _ := setupTest(t, paymentgw.NewClient(upstream.URL, "sk_test"))

	resp, body := doRequest(t, app, "POST", "/api/create-payment-intent", map[string]interface{}{
		"amountInCent": 5000,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pi_1_secret", data["clientSecret"])
}

func TestCreatePaymentIntentRejectsNonPositiveAmount(t *testing.T) {
	app, _ := setupTest(t, nil)

	resp, _ := doRequest(t, app, "POST", "/api/create-payment-intent", map[string]interface{}{
		"amountInCent": 0,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/api/create-payment-intent", map[string]interface{}{
		"amountInCent": -5,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer upstream.Close()

	app, _ := setupTest(t, paymentgw.NewClient(upstream.URL, "sk_test"))

	resp, _ := doRequest(t, app, "POST", "/api/create-payment-intent", map[string]interface{}{
		"amountInCent": 5000,
	})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
