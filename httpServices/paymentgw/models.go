package httpServices

// PaymentIntentRequest is the payload sent to the gateway when opening a
// payment authorization.
type PaymentIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentIntentResponse carries the client secret the frontend uses to
// complete the payment out-of-band.
type PaymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}
