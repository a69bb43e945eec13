package handler

import (
	"errors"
	"net/http"

	"github.com/mrmailer/mrmailer/internal/cache"
	"github.com/mrmailer/mrmailer/internal/service"
)

// GetReceipt looks up which record a transport message id belongs to
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	messageID := r.PathValue("messageId")

	receipt, err := h.mailer.Receipt(r.Context(), messageID)
	switch {
	case errors.Is(err, service.ErrReceiptsDisabled):
		writeError(w, http.StatusNotFound, "receipts_disabled", "Receipt cache is not enabled")
	case errors.Is(err, cache.ErrReceiptNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Receipt not found")
	case err != nil:
		h.log.Error().Err(err).Str("message_id", messageID).Msg("failed to read receipt")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read receipt")
	default:
		writeJSON(w, http.StatusOK, receipt)
	}
}
