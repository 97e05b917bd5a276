// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/app"
	"reviewdesk/internal/domain"
)

// Handlers exposes the two inbound webhooks. Both sources deliver
// at-least-once and expect a 2xx acknowledgment; processing failures are
// reported in the response body, never as a 5xx, matching the upstream
// redelivery contracts.
type Handlers struct{ C *app.Coordinator }

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.root)
	s.mux.Post("/webhook/reviews", h.reviewWebhook)
	s.mux.Post("/webhook/whatsapp", h.whatsappWebhook)
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, "Review reply service is running")
}

// pubsubEnvelope is the push wrapper around the actual notification:
// message.data holds the base64-encoded JSON payload.
type pubsubEnvelope struct {
	Message struct {
		Data string `json:"data"`
	} `json:"message"`
}

func (h *Handlers) reviewWebhook(w http.ResponseWriter, r *http.Request) {
	var env pubsubEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeStatus(w, "bad envelope")
		return
	}
	if env.Message.Data == "" {
		writeStatus(w, "no data")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		writeStatus(w, "bad data encoding")
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeStatus(w, "bad payload")
		return
	}

	ev, err := app.NormalizeReviewEvent(payload)
	if err != nil {
		log.Warn().Err(err).Str("review", ev.SourceReviewID).Msg("unusable review notification")
		writeStatus(w, "missing location_id")
		return
	}

	switch err := h.C.Ingest(r.Context(), ev); {
	case err == nil:
		writeStatus(w, "accepted")
	case errors.Is(err, domain.ErrClientNotFound):
		log.Warn().Str("location", ev.LocationID).Msg("client not found for location")
		writeStatus(w, "client not found")
	case errors.Is(err, domain.ErrDraftUnavailable):
		log.Warn().Str("review", ev.SourceReviewID).Err(err).Msg("draft generation failed, dropping event")
		writeStatus(w, "AI generation failed")
	default:
		log.Error().Str("review", ev.SourceReviewID).Err(err).Msg("ingest failed")
		writeStatus(w, "error")
	}
}

// whatsappWebhook handles inbound chat messages: form-encoded From/Body.
// Every body, recognized or not, gets the empty TwiML acknowledgment.
func (h *Handlers) whatsappWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		twiml(w)
		return
	}
	from := stripChannelPrefix(r.PostFormValue("From"))
	body := r.PostFormValue("Body")

	if err := h.C.HandleCommand(r.Context(), from, body); err != nil {
		// Command failures never bounce back through the channel protocol;
		// the coordinator already notified the client where the contract
		// calls for it.
		log.Warn().Str("from", from).Str("body", body).Err(err).Msg("command failed")
	}
	twiml(w)
}

func stripChannelPrefix(from string) string {
	const p = "whatsapp:"
	if len(from) >= len(p) && from[:len(p)] == p {
		return from[len(p):]
	}
	return from
}

func twiml(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("<Response></Response>")); err != nil {
		log.Error().Err(err).Msg("failed to write TwiML response")
	}
}

func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		log.Error().Err(err).Msg("failed to write status response")
	}
}
