package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"purchase-service/models"
)

// PollState is the poller's explicit state machine: it starts in
// StatePolling and ends in exactly one of the terminal states.
type PollState string

const (
	StatePolling   PollState = "polling"
	StateConfirmed PollState = "confirmed"
	StateFailed    PollState = "failed"
	StateTimedOut  PollState = "timed_out"
)

// PollResult is the poller's outcome. PaymentID is always set so a
// timed-out result can still be shown for manual support lookup.
type PollResult struct {
	State     PollState
	PaymentID string
	ReceiptID string
	Status    string
}

// ConfirmationPoller bridges the gateway's hosted-payment-page return
// flow: the landing page only carries a payment ID, no signature, so it
// has to wait for whichever confirmation path writes the record. A fixed
// interval and a wall-clock deadline bound the wait; a timeout is a
// "still processing" outcome, not a failure, since the webhook may just
// be late.
type ConfirmationPoller struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration
	deadline   time.Duration
}

const (
	defaultPollInterval = 2 * time.Second
	defaultPollDeadline = 60 * time.Second
)

func NewConfirmationPoller(baseURL string) *ConfirmationPoller {
	return &ConfirmationPoller{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		interval: defaultPollInterval,
		deadline: defaultPollDeadline,
	}
}

// WithTiming overrides the poll interval and overall deadline.
func (p *ConfirmationPoller) WithTiming(interval, deadline time.Duration) *ConfirmationPoller {
	p.interval = interval
	p.deadline = deadline
	return p
}

type statusResponse struct {
	Status    string `json:"status"`
	ReceiptID string `json:"receiptId,omitempty"`
}

// Poll queries the purchase status endpoint until a terminal status
// appears or the deadline elapses. Cancelling ctx (e.g. on page
// navigation) stops polling immediately.
func (p *ConfirmationPoller) Poll(ctx context.Context, paymentID string) (PollResult, error) {
	result := PollResult{State: StatePolling, PaymentID: paymentID}

	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, receiptID, err := p.fetchStatus(ctx, paymentID)
		if err == nil {
			result.Status = status
			result.ReceiptID = receiptID
			switch status {
			case models.StatusCompleted:
				result.State = StateConfirmed
				return result, nil
			case models.StatusFailed:
				result.State = StateFailed
				return result, nil
			}
		}
		// Transient fetch errors and non-terminal statuses both mean
		// "keep waiting".

		select {
		case <-ctx.Done():
			result.State = StateTimedOut
			return result, nil
		case <-ticker.C:
		}
	}
}

func (p *ConfirmationPoller) fetchStatus(ctx context.Context, paymentID string) (string, string, error) {
	u := p.baseURL + "/purchases/status?payment_id=" + url.QueryEscape(paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", err
	}
	return body.Status, body.ReceiptID, nil
}
