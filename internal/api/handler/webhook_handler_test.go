package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

type stubQueue struct {
	enqueued []ports.InboundMessage
}

func (s *stubQueue) Enqueue(msg ports.InboundMessage) {
	s.enqueued = append(s.enqueued, msg)
}

func postWebhook(h *WebhookHandler, token, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/"+token, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/telegram/webhook/:token")
	c.SetParamNames("token")
	c.SetParamValues(token)
	return rec, h.Receive(c)
}

const updateJSON = `{
	"update_id": 42,
	"message": {
		"message_id": 1,
		"chat": {"id": 7},
		"text": "status ABC123"
	}
}`

func TestWebhookHandler_EnqueuesAndAcks(t *testing.T) {
	queue := &stubQueue{}
	h := NewWebhookHandler("bot-token", queue)

	rec, err := postWebhook(h, "bot-token", updateJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected one enqueued message, got %d", len(queue.enqueued))
	}
	msg := queue.enqueued[0]
	if msg.UpdateID != 42 || msg.ChatID != 7 || msg.Text != "status ABC123" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestWebhookHandler_RejectsWrongToken(t *testing.T) {
	queue := &stubQueue{}
	h := NewWebhookHandler("bot-token", queue)

	_, err := postWebhook(h, "wrong-token", updateJSON)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Error("rejected request must not enqueue anything")
	}
}

func TestWebhookHandler_RejectsWhenNoTokenConfigured(t *testing.T) {
	h := NewWebhookHandler("", &stubQueue{})

	_, err := postWebhook(h, "", updateJSON)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with empty configured token, got %v", err)
	}
}

func TestWebhookHandler_RejectsMalformedPayload(t *testing.T) {
	queue := &stubQueue{}
	h := NewWebhookHandler("bot-token", queue)

	_, err := postWebhook(h, "bot-token", "{not json")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Error("malformed payload must not enqueue anything")
	}
}

func TestWebhookHandler_NonMessageUpdateStillAcked(t *testing.T) {
	queue := &stubQueue{}
	h := NewWebhookHandler("bot-token", queue)

	rec, err := postWebhook(h, "bot-token", `{"update_id": 43}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected the update to be enqueued for cursorless dedup, got %d", len(queue.enqueued))
	}
	if queue.enqueued[0].ChatID != 0 {
		t.Errorf("non-message update must carry zero chat id, got %d", queue.enqueued[0].ChatID)
	}
}
