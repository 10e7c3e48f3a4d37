package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/subtitleops/captionlint/pkg/models"
)

type mockRepository struct {
	mu         sync.Mutex
	webhooks   []*models.Webhook
	deliveries []*models.WebhookDelivery
}

func (m *mockRepository) GetWebhooksByEvent(ctx context.Context, event string) ([]*models.Webhook, error) {
	return m.webhooks, nil
}

func (m *mockRepository) CreateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, delivery)
	return nil
}

func (m *mockRepository) UpdateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.deliveries {
		if d.ID == delivery.ID {
			m.deliveries[i] = delivery
			return nil
		}
	}
	return nil
}

func (m *mockRepository) GetPendingWebhookDeliveries(ctx context.Context, limit int) ([]*models.WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deliveries, nil
}

func (m *mockRepository) deliveryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deliveries)
}

func TestWebhookNotify(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &mockRepository{
		webhooks: []*models.Webhook{
			{
				ID:     "webhook-1",
				UserID: "user-1",
				URL:    server.URL,
				Events: models.WebhookEvents{
					RunStarted: true,
				},
				IsActive: true,
			},
		},
		deliveries: []*models.WebhookDelivery{},
	}

	service := NewService(repo)

	run := &models.ValidationRun{
		ID:     "run-1",
		Status: models.RunStatusProcessing,
	}

	err := service.NotifyRunStarted(context.Background(), run)
	assert.NoError(t, err)

	select {
	case payload := <-received:
		assert.Contains(t, payload, models.WebhookEventRunStarted)
		assert.Contains(t, payload, "run-1")
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}

	assert.Equal(t, 1, repo.deliveryCount())
}

func TestWebhookSkipsInactive(t *testing.T) {
	repo := &mockRepository{
		webhooks: []*models.Webhook{
			{
				ID:       "webhook-1",
				URL:      "http://example.invalid",
				IsActive: false,
			},
		},
	}

	service := NewService(repo)

	err := service.Notify(context.Background(), models.WebhookEventRunCompleted, map[string]string{"run_id": "run-1"})
	assert.NoError(t, err)
	assert.Equal(t, 0, repo.deliveryCount())
}

func TestWebhookSignature(t *testing.T) {
	service := NewService(&mockRepository{})

	payload := []byte(`{"event":"test"}`)
	secret := "test-secret"

	signature := service.generateSignature(payload, secret)
	assert.NotEmpty(t, signature)
	assert.Contains(t, signature, "sha256=")

	// Same input produces the same signature
	assert.Equal(t, signature, service.generateSignature(payload, secret))
	assert.NotEqual(t, signature, service.generateSignature(payload, "other-secret"))
}

func TestWebhookRetryBackoff(t *testing.T) {
	repo := &mockRepository{}
	service := NewService(repo)

	delivery := &models.WebhookDelivery{
		ID:        "delivery-1",
		WebhookID: "webhook-1",
		Event:     models.WebhookEventDocumentValidated,
		Status:    models.WebhookDeliveryStatusPending,
	}
	repo.deliveries = append(repo.deliveries, delivery)

	// First failure schedules a retry
	service.markDeliveryFailed(context.Background(), delivery, http.StatusBadGateway, "bad gateway")
	assert.Equal(t, models.WebhookDeliveryStatusPending, delivery.Status)
	assert.Equal(t, 1, delivery.RetryCount)
	assert.NotNil(t, delivery.NextRetryAt)

	// Exhausting all retries marks the delivery failed
	delivery.RetryCount = 6
	service.markDeliveryFailed(context.Background(), delivery, http.StatusBadGateway, "bad gateway")
	assert.Equal(t, models.WebhookDeliveryStatusFailed, delivery.Status)
	assert.NotNil(t, delivery.CompletedAt)
}

func TestWebhookEventMarshaling(t *testing.T) {
	event := models.WebhookEvent{
		Event:     models.WebhookEventDocumentValidated,
		Timestamp: time.Now(),
		Data: map[string]string{
			"report_id": "report-1",
		},
	}

	data, err := json.Marshal(event)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var unmarshaled models.WebhookEvent
	err = json.Unmarshal(data, &unmarshaled)
	assert.NoError(t, err)
	assert.Equal(t, event.Event, unmarshaled.Event)
}
