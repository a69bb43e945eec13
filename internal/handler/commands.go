package handler

import (
	"net/http"

	"github.com/mrmailer/mrmailer/internal/service"
)

// CommandRequest is the body of POST /api/v1/commands
type CommandRequest struct {
	Content string `json:"content"`
}

// RunCommand runs one chat command through the pipeline
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	out := h.mailer.Handle(r.Context(), req.Content)

	switch out.Status() {
	case service.StatusIgnored:
		writeError(w, http.StatusBadRequest, "invalid_command",
			"Content must look like: !pitch|!apply <recipient> | role: ... | desc: ... | extra: ...")
	case service.StatusFailed:
		writeJSON(w, http.StatusBadGateway, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}
