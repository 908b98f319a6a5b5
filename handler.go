package linehook

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/RodrimaradoPT/linehook/line"
)

// SignatureHeader carries the webhook signature. Header lookup is
// case-insensitive per net/http canonicalization.
const SignatureHeader = "X-Line-Signature"

// SessionFunc receives the per-request session. The session is nil when the
// verified payload carried zero events; callers must check before
// registering handlers. A non-nil error becomes a 500 response.
type SessionFunc func(ctx context.Context, s *Session) error

// Handler returns the webhook intake endpoint. Per request it verifies the
// signature over the raw body, decodes the payload, and invokes fn.
// Requests without a signature header are acknowledged and ignored — they
// are not platform callbacks. Signature mismatches get 401, unreadable or
// malformed bodies 400; handler code never sees any of those requests.
func (p *Plugin) Handler(fn SessionFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			p.logger.Warn("webhook: read body", zap.Error(err))
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get(SignatureHeader)
		if signature == "" {
			p.debug("webhook: no signature header, ignoring")
			w.WriteHeader(http.StatusOK)
			return
		}
		if !ValidateSignature(p.cfg.ChannelSecret, signature, body) {
			p.logger.Warn("webhook: invalid signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		payload, err := line.ParsePayload(body)
		if err != nil {
			p.logger.Warn("webhook: decode payload", zap.Error(err))
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		p.debug("webhook: decoded",
			zap.String("destination", payload.Destination),
			zap.Int("events", len(payload.Events)))

		if p.tap != nil {
			if err := p.tap.Broadcast(payload); err != nil {
				p.logger.Warn("webhook: tap broadcast", zap.Error(err))
			}
		}

		events := p.filterRedelivered(payload.Events)

		var session *Session
		if len(events) > 0 {
			session = newSession(p.client, payload.Destination, events)
		}
		if err := fn(r.Context(), session); err != nil {
			p.logger.Error("webhook: handler", zap.Error(err))
			http.Error(w, "handler error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// filterRedelivered marks every event ID in the seen store and drops events
// the platform flags as redeliveries of an ID already recorded. First
// deliveries always pass through, as does everything when no store is
// configured or the store errors.
func (p *Plugin) filterRedelivered(events []line.Event) []line.Event {
	if p.seen == nil {
		return events
	}

	kept := make([]line.Event, 0, len(events))
	for _, ev := range events {
		if ev.WebhookEventID != "" {
			already, err := p.seen.Mark(ev.WebhookEventID)
			if err != nil {
				p.logger.Warn("webhook: seen store", zap.Error(err))
			} else if already && ev.DeliveryContext != nil && ev.DeliveryContext.IsRedelivery {
				p.debug("webhook: skipping redelivered event",
					zap.String("webhook_event_id", ev.WebhookEventID))
				continue
			}
		}
		kept = append(kept, ev)
	}
	return kept
}
