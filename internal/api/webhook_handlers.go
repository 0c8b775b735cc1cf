package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/telegram"
)

const maxUpdateBytes = 1 << 20

// handleWebhook accepts one Telegram update. Once the update was dispatched
// the answer is 200 even if handling failed, because the user was already
// notified and a redelivery would answer twice.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	secret := r.URL.Query().Get("secret")
	if s.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.WebhookSecret)) != 1 {
		log.Warn("webhook call with invalid secret")
		http.Error(w, "not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		handleError(w, r, errors.NewBadRequestError("malformed update: "+err.Error()))
		return
	}

	log = log.WithField("update_id", update.UpdateID)
	ctx := logger.NewContext(r.Context(), log)
	if err := s.Bot.HandleUpdate(ctx, update); err != nil {
		log.Warn("update handled with error: code=%s, err=%v", errors.CodeOf(err), err)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
