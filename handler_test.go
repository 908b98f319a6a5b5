package linehook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/RodrimaradoPT/linehook/line"
	"github.com/RodrimaradoPT/linehook/seen"
)

const (
	testSecret = "test-channel-secret"
	testToken  = "test-access-token"
)

type capturedCall struct {
	path string
	auth string
	body []byte
}

// newAPIServer captures Messaging API calls on a channel.
func newAPIServer(t *testing.T) (*httptest.Server, chan capturedCall) {
	t.Helper()
	calls := make(chan capturedCall, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			t.Errorf("read api request: %v", err)
		}
		calls <- capturedCall{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			body: buf.Bytes(),
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newTestPlugin(t *testing.T, apiURL string, opts ...Option) *Plugin {
	t.Helper()
	p, err := New(Config{
		ChannelSecret:      testSecret,
		ChannelAccessToken: testToken,
	}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if apiURL != "" {
		p.Client().Endpoint = apiURL
	}
	return p
}

func postWebhook(t *testing.T, h http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{ChannelAccessToken: "tok"}); !errors.Is(err, ErrNoChannelSecret) {
		t.Fatalf("expected ErrNoChannelSecret, got %v", err)
	}
	if _, err := New(Config{ChannelSecret: "sec"}); !errors.Is(err, ErrNoChannelAccessToken) {
		t.Fatalf("expected ErrNoChannelAccessToken, got %v", err)
	}
	if _, err := New(Config{ChannelSecret: "sec", ChannelAccessToken: "tok"}); err != nil {
		t.Fatalf("expected construction to succeed, got %v", err)
	}
}

func TestHandlerEchoEndToEnd(t *testing.T) {
	srv, calls := newAPIServer(t)
	p := newTestPlugin(t, srv.URL)

	h := p.Handler(func(ctx context.Context, s *Session) error {
		if s == nil {
			t.Error("expected a session for a one-event payload")
			return nil
		}
		s.OnMessage(line.MessageText, func(ctx context.Context, ev line.Event) error {
			return s.Reply(ctx, ev.ReplyToken, line.NewTextMessage("echo"))
		})
		return s.Dispatch(ctx)
	})

	body := []byte(`{"destination":"U123","events":[{"type":"message","replyToken":"RT1","message":{"type":"text","text":"hi"},"source":{"userId":"U999"}}]}`)
	w := postWebhook(t, h, body, sign(testSecret, body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}

	call := <-calls
	if call.path != "/v2/bot/message/reply" {
		t.Fatalf("api path = %q", call.path)
	}
	if call.auth != "Bearer "+testToken {
		t.Fatalf("auth header = %q", call.auth)
	}

	var req struct {
		ReplyToken string `json:"replyToken"`
		Messages   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(call.body, &req); err != nil {
		t.Fatal(err)
	}
	if req.ReplyToken != "RT1" {
		t.Fatalf("reply token = %q, want RT1", req.ReplyToken)
	}
	if len(req.Messages) != 1 || req.Messages[0].Type != "text" || req.Messages[0].Text != "echo" {
		t.Fatalf("messages = %+v", req.Messages)
	}

	select {
	case extra := <-calls:
		t.Fatalf("unexpected extra api call to %s", extra.path)
	default:
	}
}

func TestHandlerBadSignature(t *testing.T) {
	var invoked int32
	p := newTestPlugin(t, "")
	h := p.Handler(func(context.Context, *Session) error {
		atomic.AddInt32(&invoked, 1)
		return nil
	})

	body := []byte(`{"destination":"U123","events":[{"type":"follow","replyToken":"RT1"}]}`)
	w := postWebhook(t, h, body, sign("wrong-secret", body))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if atomic.LoadInt32(&invoked) != 0 {
		t.Fatal("session func ran despite signature mismatch")
	}
}

func TestHandlerMissingSignatureIgnored(t *testing.T) {
	var invoked int32
	p := newTestPlugin(t, "")
	h := p.Handler(func(context.Context, *Session) error {
		atomic.AddInt32(&invoked, 1)
		return nil
	})

	w := postWebhook(t, h, []byte(`{"events":[]}`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a non-platform request", w.Code)
	}
	if atomic.LoadInt32(&invoked) != 0 {
		t.Fatal("session func ran for a request without a signature header")
	}
}

func TestHandlerMalformedPayload(t *testing.T) {
	p := newTestPlugin(t, "")
	h := p.Handler(func(context.Context, *Session) error {
		t.Error("session func must not run for a malformed payload")
		return nil
	})

	body := []byte(`{"destination":`)
	w := postWebhook(t, h, body, sign(testSecret, body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	p := newTestPlugin(t, "")
	h := p.Handler(func(context.Context, *Session) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestHandlerZeroEventsNilSession(t *testing.T) {
	var sawNil int32
	p := newTestPlugin(t, "")
	h := p.Handler(func(_ context.Context, s *Session) error {
		if s == nil {
			atomic.AddInt32(&sawNil, 1)
		}
		return nil
	})

	body := []byte(`{"destination":"U123"}`)
	w := postWebhook(t, h, body, sign(testSecret, body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if atomic.LoadInt32(&sawNil) != 1 {
		t.Fatal("expected the session func to observe a nil session")
	}
}

func TestHandlerSessionError(t *testing.T) {
	p := newTestPlugin(t, "")
	h := p.Handler(func(context.Context, *Session) error {
		return fmt.Errorf("handler blew up")
	})

	body := []byte(`{"events":[{"type":"follow"}]}`)
	w := postWebhook(t, h, body, sign(testSecret, body))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandlerDispatchFailurePropagates(t *testing.T) {
	srv, _ := newAPIServer(t)
	p := newTestPlugin(t, srv.URL)

	boom := errors.New("push failed downstream")
	var siblingDone int32

	h := p.Handler(func(ctx context.Context, s *Session) error {
		s.OnAny(func(context.Context, line.Event) error {
			return boom
		})
		s.OnAny(func(context.Context, line.Event) error {
			atomic.StoreInt32(&siblingDone, 1)
			return nil
		})
		return s.Dispatch(ctx)
	})

	body := []byte(`{"events":[{"type":"follow","replyToken":"RT9"}]}`)
	w := postWebhook(t, h, body, sign(testSecret, body))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if atomic.LoadInt32(&siblingDone) != 1 {
		t.Fatal("sibling handler did not complete")
	}
}

func TestHandlerRedeliveryFiltered(t *testing.T) {
	p := newTestPlugin(t, "", WithSeenStore(seen.NewInMemory()))

	var sessions int32
	h := p.Handler(func(_ context.Context, s *Session) error {
		if s != nil {
			atomic.AddInt32(&sessions, 1)
		}
		return nil
	})

	first := []byte(`{"events":[{"type":"follow","webhookEventId":"W1"}]}`)
	if w := postWebhook(t, h, first, sign(testSecret, first)); w.Code != http.StatusOK {
		t.Fatalf("first delivery status = %d", w.Code)
	}

	redelivered := []byte(`{"events":[{"type":"follow","webhookEventId":"W1","deliveryContext":{"isRedelivery":true}}]}`)
	if w := postWebhook(t, h, redelivered, sign(testSecret, redelivered)); w.Code != http.StatusOK {
		t.Fatalf("redelivery status = %d", w.Code)
	}

	if n := atomic.LoadInt32(&sessions); n != 1 {
		t.Fatalf("expected 1 session (redelivery filtered), got %d", n)
	}
}

func TestHandlerFirstDeliveryNeverFiltered(t *testing.T) {
	p := newTestPlugin(t, "", WithSeenStore(seen.NewInMemory()))

	var sessions int32
	h := p.Handler(func(_ context.Context, s *Session) error {
		if s != nil {
			atomic.AddInt32(&sessions, 1)
		}
		return nil
	})

	// Same event ID twice, but neither flagged as a redelivery: both pass.
	body := []byte(`{"events":[{"type":"follow","webhookEventId":"W2"}]}`)
	postWebhook(t, h, body, sign(testSecret, body))
	postWebhook(t, h, body, sign(testSecret, body))

	if n := atomic.LoadInt32(&sessions); n != 2 {
		t.Fatalf("expected 2 sessions, got %d", n)
	}
}

func TestSessionAccessors(t *testing.T) {
	p := newTestPlugin(t, "")
	h := p.Handler(func(_ context.Context, s *Session) error {
		if s.Destination() != "U123" {
			t.Errorf("destination = %q", s.Destination())
		}
		if len(s.Events()) != 2 {
			t.Errorf("events = %d, want 2", len(s.Events()))
		}
		if s.Events()[0].Type != line.EventMessage || s.Events()[1].Type != line.EventLeave {
			t.Errorf("event order not preserved: %v, %v", s.Events()[0].Type, s.Events()[1].Type)
		}
		if s.Client() != p.Client() {
			t.Error("session does not expose the plugin's client")
		}
		return nil
	})

	body := []byte(`{"destination":"U123","events":[{"type":"message","message":{"type":"text","text":"a"}},{"type":"leave"}]}`)
	if w := postWebhook(t, h, body, sign(testSecret, body)); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
