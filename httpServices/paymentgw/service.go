package httpServices

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type PaymentClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(baseURL, secretKey string) *PaymentClient {
	return &PaymentClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

// CreatePaymentIntent asks the gateway to authorize a charge of the given
// amount in minor units and returns the client secret.
func (c *PaymentClient) CreatePaymentIntent(amountInCent int64, currency string) (*PaymentIntentResponse, error) {
	body, err := json.Marshal(PaymentIntentRequest{
		Amount:   amountInCent,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/v1/payment_intents", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("payment gateway returned non-OK status: " + resp.Status)
	}

	var apiResp PaymentIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	if apiResp.ClientSecret == "" {
		return nil, errors.New("payment gateway returned empty client secret")
	}

	return &apiResp, nil
}
