package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylxsw/telegram-monitor/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func samplePayload() domain.Payload {
	return domain.Payload{
		ChatID:     -1001111111111,
		ChatName:   "@alpha",
		MessageID:  77,
		Text:       "hello",
		Date:       "2024-05-01T11:59:30Z",
		SenderID:   9,
		SenderName: "@bob",
		Media:      false,
		Timestamp:  1714564800,
	}
}

func TestClient_Deliver_Delivered(t *testing.T) {
	var received domain.Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryDelivered, res.Outcome)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, samplePayload(), received, "полезная нагрузка должна дойти без искажений")
}

func TestClient_Deliver_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("service unavailable"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryRejected, res.Outcome)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "service unavailable", res.BodyExcerpt)
}

func TestClient_Deliver_RejectedBodyTruncated(t *testing.T) {
	longBody := strings.Repeat("x", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(longBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryRejected, res.Outcome)
	assert.Len(t, res.BodyExcerpt, 200, "фрагмент тела ответа должен быть усечен до 200 символов")
}

func TestClient_Deliver_TimedOut(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked // Висим дольше бюджета доставки
	}))
	defer srv.Close()
	defer close(blocked)

	client := NewClient(srv.URL, WithLogger(discardLogger()), WithTimeout(50*time.Millisecond))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryTimedOut, res.Outcome)
	assert.Error(t, res.Err)
}

func TestClient_Deliver_TransportFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Закрываем сразу: соединение будет отклонено

	client := NewClient(srv.URL, WithLogger(discardLogger()))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryTransportFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestClient_Deliver_UnknownFailure(t *testing.T) {
	// Управляющий символ в URL: запрос не удается даже построить, ошибка не
	// относится ни к таймауту, ни к транспортной.
	client := NewClient("http://example.com/\x00", WithLogger(discardLogger()))
	res := client.Deliver(context.Background(), samplePayload())

	assert.Equal(t, domain.DeliveryUnknownFailure, res.Outcome)
	assert.Error(t, res.Err)
}

// TestClient_Deliver_OutcomeIsExclusive проверяет, что для любого поведения
// приемника классификация дает ровно один исход.
func TestClient_Deliver_OutcomeIsExclusive(t *testing.T) {
	outcomes := map[domain.DeliveryOutcome]bool{}

	srv200 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv200.Close()
	srv503 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv503.Close()
	srvRefused := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srvRefused.Close()

	for _, url := range []string{srv200.URL, srv503.URL, srvRefused.URL} {
		client := NewClient(url, WithLogger(discardLogger()), WithTimeout(time.Second))
		res := client.Deliver(context.Background(), samplePayload())
		assert.False(t, outcomes[res.Outcome], "каждое поведение приемника должно давать свой исход")
		outcomes[res.Outcome] = true
	}

	assert.True(t, outcomes[domain.DeliveryDelivered])
	assert.True(t, outcomes[domain.DeliveryRejected])
	assert.True(t, outcomes[domain.DeliveryTransportFailed])
}

func TestEchoHandler(t *testing.T) {
	handler := EchoHandler(discardLogger())

	t.Run("Корректная нагрузка подтверждается статусом 200", func(t *testing.T) {
		body, err := json.Marshal(samplePayload())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("Некорректный JSON отклоняется статусом 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
