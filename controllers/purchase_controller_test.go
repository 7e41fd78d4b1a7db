package controllers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"purchase-service/controllers"
	"purchase-service/errors"
	"purchase-service/models"
	"purchase-service/repository"
	"purchase-service/routes"
	"purchase-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	testAPISecret     = "test_api_secret"
	testWebhookSecret = "test_webhook_secret"
)

type stubPurchaseRepo struct {
	records map[string]*models.PurchaseRecord
}

var (
	_ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)
	_ repository.AssetRepository    = (*stubAssetRepo)(nil)
	_ services.PaymentGateway       = (*stubGateway)(nil)
)

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{records: make(map[string]*models.PurchaseRecord)}
}

func (s *stubPurchaseRepo) ExistsReceiptID(_ context.Context, id string) (bool, error) {
	_, ok := s.records[id]
	return ok, nil
}

func (s *stubPurchaseRepo) FindByReceiptID(_ context.Context, id string) (*models.PurchaseRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return rec, nil
}

func (s *stubPurchaseRepo) FindByPaymentID(_ context.Context, paymentID string) (*models.PurchaseRecord, error) {
	for _, rec := range s.records {
		if rec.GatewayPaymentID == paymentID {
			return rec, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (s *stubPurchaseRepo) MergeCompleted(_ context.Context, rec *models.PurchaseRecord) (bool, error) {
	if existing, ok := s.records[rec.ReceiptID]; ok {
		existing.Status = models.StatusCompleted
		existing.Verified = true
		return false, nil
	}
	cp := *rec
	cp.Status = models.StatusCompleted
	cp.Verified = true
	s.records[rec.ReceiptID] = &cp
	return true, nil
}

func (s *stubPurchaseRepo) MarkFailed(_ context.Context, id string) (bool, error) {
	rec, ok := s.records[id]
	if !ok || rec.Status == models.StatusCompleted {
		return false, nil
	}
	rec.Status = models.StatusFailed
	return true, nil
}

func (s *stubPurchaseRepo) MarkDisputed(_ context.Context, id string) error {
	if rec, ok := s.records[id]; ok {
		rec.Disputed = true
	}
	return nil
}

func (s *stubPurchaseRepo) ListRecent(_ context.Context, limit int64) ([]models.PurchaseRecord, error) {
	var out []models.PurchaseRecord
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out, nil
}

type stubAssetRepo struct {
	assets map[string]*models.Asset
}

func (s *stubAssetRepo) FindByID(_ context.Context, id string) (*models.Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return a, nil
}

type stubGateway struct {
	orders map[string]*models.GatewayOrder
}

func (s *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receiptID string, notes map[string]string) (*models.GatewayOrder, error) {
	order := &models.GatewayOrder{
		ID:       "order_test",
		Amount:   amount,
		Currency: currency,
		Receipt:  receiptID,
		Status:   "created",
		Notes:    notes,
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubGateway) FetchOrder(_ context.Context, orderID string) (*models.GatewayOrder, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return order, nil
}

type testEnv struct {
	router  *gin.Engine
	repo    *stubPurchaseRepo
	gateway *stubGateway
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	repo := newStubPurchaseRepo()
	assets := &stubAssetRepo{assets: map[string]*models.Asset{
		"A1": {ID: "A1", Title: "Preset Pack", Price: "$49.99", DownloadLink: "https://cdn.example.com/a1.zip"},
	}}
	gateway := &stubGateway{orders: make(map[string]*models.GatewayOrder)}

	log := zap.NewNop()
	purchaseSvc := services.NewPurchaseService(repo, assets, gateway, nil, nil, testAPISecret, log)
	orderSvc := services.NewOrderService(
		services.NewPriceResolver(assets),
		services.NewReceiptIssuer(repo, log),
		gateway,
		"INR",
		log,
	)

	pc := &controllers.PurchaseController{
		Orders:        orderSvc,
		Purchases:     purchaseSvc,
		Logger:        log,
		WebhookSecret: testWebhookSecret,
	}

	r := gin.New()
	routes.RegisterRoutes(r, pc, "admin_jwt_secret")
	return &testEnv{router: r, repo: repo, gateway: gateway}
}

func (e *testEnv) openOrder(t *testing.T, receiptID string) *models.GatewayOrder {
	t.Helper()
	order, err := e.gateway.CreateOrder(context.Background(), 4999, "INR", receiptID, map[string]string{
		"item_id":    "A1",
		"item_title": "Preset Pack",
	})
	assert.NoError(t, err)
	return order
}

func signHex(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedBody(orderID, paymentID string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"event": "payment.captured",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": orderID,
					"amount":   4999,
					"currency": "INR",
					"status":   "captured",
					"email":    "buyer@example.com",
				},
			},
		},
	})
	return body
}

func (e *testEnv) post(path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestWebhook_MissingSignature(t *testing.T) {
	e := newTestEnv()
	w := e.post("/webhook/razorpay", capturedBody("order_x", "pay_1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.repo.records)
}

func TestWebhook_BadSignature_NoSideEffects(t *testing.T) {
	e := newTestEnv()
	order := e.openOrder(t, "RCP-20260108-A3F9B")
	body := capturedBody(order.ID, "pay_1")

	w := e.post("/webhook/razorpay", body, map[string]string{
		"X-Razorpay-Signature": "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.repo.records)
}

func TestWebhook_ValidCaptured(t *testing.T) {
	e := newTestEnv()
	order := e.openOrder(t, "RCP-20260108-A3F9B")
	body := capturedBody(order.ID, "pay_1")

	w := e.post("/webhook/razorpay", body, map[string]string{
		"X-Razorpay-Signature": signHex(string(body), testWebhookSecret),
	})
	assert.Equal(t, http.StatusOK, w.Code)

	rec, ok := e.repo.records["RCP-20260108-A3F9B"]
	assert.True(t, ok)
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.True(t, rec.Verified)
}

func TestWebhook_MalformedBodyWithValidSignature(t *testing.T) {
	e := newTestEnv()
	body := []byte("{not json")

	w := e.post("/webhook/razorpay", body, map[string]string{
		"X-Razorpay-Signature": signHex(string(body), testWebhookSecret),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_AcksUnknownEvents(t *testing.T) {
	e := newTestEnv()
	body := []byte(`{"event":"invoice.paid","payload":{}}`)

	w := e.post("/webhook/razorpay", body, map[string]string{
		"X-Razorpay-Signature": signHex(string(body), testWebhookSecret),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.repo.records)
}

func TestWebhook_AcksProcessingFailures(t *testing.T) {
	e := newTestEnv()
	// order unknown to the gateway: the fetch fails, but the signature
	// already passed, so the gateway still gets its 200
	body := capturedBody("order_unknown", "pay_1")

	w := e.post("/webhook/razorpay", body, map[string]string{
		"X-Razorpay-Signature": signHex(string(body), testWebhookSecret),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.repo.records)
}

func TestVerify_TamperedSignature(t *testing.T) {
	e := newTestEnv()
	order := e.openOrder(t, "RCP-20260108-BBBBB")

	body, _ := json.Marshal(models.DirectVerifyRequest{
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: "pay_2",
		RazorpaySignature: "tampered",
		ItemID:            "A1",
	})
	w := e.post("/purchases/verify", body, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, e.repo.records)
}

func TestVerify_HappyPath(t *testing.T) {
	e := newTestEnv()
	order := e.openOrder(t, "RCP-20260108-CCCCC")

	body, _ := json.Marshal(models.DirectVerifyRequest{
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: "pay_2",
		RazorpaySignature: signHex(order.ID+"|pay_2", testAPISecret),
		ItemID:            "A1",
		BuyerEmail:        "buyer@example.com",
	})
	w := e.post("/purchases/verify", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success      bool   `json:"success"`
		ReceiptID    string `json:"receiptId"`
		DownloadLink string `json:"downloadLink"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "RCP-20260108-CCCCC", resp.ReceiptID)
	assert.Equal(t, "https://cdn.example.com/a1.zip", resp.DownloadLink)
}

func TestCreateOrder_Endpoint(t *testing.T) {
	e := newTestEnv()

	w := e.post("/purchases/orders", []byte(`{"itemId":"A1"}`), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var desc models.OrderDescriptor
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &desc))
	assert.Equal(t, int64(4999), desc.AmountMinorUnits)
	assert.Equal(t, "order_test", desc.GatewayOrderID)

	// the receipt id stays server-side until a purchase is confirmed
	assert.NotContains(t, w.Body.String(), "RCP-")
}

func TestCreateOrder_UnknownItem(t *testing.T) {
	e := newTestEnv()
	w := e.post("/purchases/orders", []byte(`{"itemId":"nope"}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupReceipt_UnknownVsPending(t *testing.T) {
	e := newTestEnv()

	w := e.get("/purchases/receipt/RCP-20260108-ZZZZZ")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	assert.Contains(t, w.Body.String(), "not found")

	e.repo.records["RCP-20260108-YYYYY"] = &models.PurchaseRecord{
		ReceiptID: "RCP-20260108-YYYYY",
		Status:    models.StatusPending,
	}
	w = e.get("/purchases/receipt/RCP-20260108-YYYYY")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	assert.Contains(t, w.Body.String(), "still being confirmed")
}

func TestLookupReceipt_Completed(t *testing.T) {
	e := newTestEnv()
	e.repo.records["RCP-20260108-XXXXX"] = &models.PurchaseRecord{
		ReceiptID:    "RCP-20260108-XXXXX",
		ItemTitle:    "Preset Pack",
		Status:       models.StatusCompleted,
		Verified:     true,
		DownloadLink: "https://cdn.example.com/a1.zip",
	}

	w := e.get("/purchases/receipt/RCP-20260108-XXXXX")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
	assert.Contains(t, w.Body.String(), "Preset Pack")
}

func TestPaymentStatus_Endpoint(t *testing.T) {
	e := newTestEnv()

	w := e.get("/purchases/status")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.get("/purchases/status?payment_id=pay_9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unknown"`)

	e.repo.records["RCP-20260108-WWWWW"] = &models.PurchaseRecord{
		ReceiptID:        "RCP-20260108-WWWWW",
		GatewayPaymentID: "pay_9",
		Status:           models.StatusCompleted,
		Verified:         true,
	}
	w = e.get("/purchases/status?payment_id=pay_9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	assert.Contains(t, w.Body.String(), "RCP-20260108-WWWWW")
}

func TestAdminPurchases_RequiresToken(t *testing.T) {
	e := newTestEnv()
	w := e.get("/admin/purchases")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv()
	w := e.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
