package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"purchase-service/errors"
	"purchase-service/models"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// PaymentGateway is the slice of the gateway API this service needs:
// opening an order before checkout and fetching it back afterwards to
// recover the embedded receipt ID.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receiptID string, notes map[string]string) (*models.GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*models.GatewayOrder, error)
}

// RazorpayClient implements PaymentGateway against the Razorpay Orders API.
type RazorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewRazorpayClientWithBaseURL is used by tests to point at a stub server.
func NewRazorpayClientWithBaseURL(keyID, keySecret, baseURL string) *RazorpayClient {
	c := NewRazorpayClient(keyID, keySecret)
	c.baseURL = baseURL
	return c
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a gateway-side order. The receipt ID and item notes
// are embedded so webhook events can later be correlated back, since the
// payment ID does not exist until after checkout.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receiptID string, notes map[string]string) (*models.GatewayOrder, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   amountMinorUnits,
		Currency: currency,
		Receipt:  receiptID,
		Notes:    notes,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	return c.doOrderRequest(req)
}

// FetchOrder retrieves an order by its gateway ID.
func (c *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*models.GatewayOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	return c.doOrderRequest(req)
}

func (c *RazorpayClient) doOrderRequest(req *http.Request) (*models.GatewayOrder, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are retryable, unlike the typed
		// failures above this layer.
		return nil, errors.Wrap(errors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var order models.GatewayOrder
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("razorpay: decoding order response: %w", err)
		}
		return &order, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.Wrap(errors.ErrGatewayUnavailable,
			fmt.Errorf("razorpay: status %d", resp.StatusCode))
	default:
		var apiErr razorpayErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("razorpay: unexpected status %d", resp.StatusCode)
	}
}
