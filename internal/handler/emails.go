package handler

import (
	"net/http"
	"strings"

	"github.com/mrmailer/mrmailer/internal/model"
)

// EmailListResponse is the body of GET /api/v1/emails
type EmailListResponse struct {
	Emails []model.SendRecord `json:"emails"`
}

// ListEmails returns the newest sent emails, optionally filtered by ?to=
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	recipient := strings.TrimSpace(r.URL.Query().Get("to"))

	records, err := h.mailer.RecentEmails(r.Context(), recipient)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list emails")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list emails")
		return
	}

	writeJSON(w, http.StatusOK, EmailListResponse{Emails: records})
}

// DeleteEmail soft-deletes one sent email
func (h *Handler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.mailer.DeleteEmail(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("failed to delete email")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete email")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "Email not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email deleted successfully",
	})
}
