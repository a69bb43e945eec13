package router

import (
	"net/http"

	"github.com/mrmailer/mrmailer/internal/handler"
	"github.com/mrmailer/mrmailer/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"mrmailer API v1","version":"` + handler.Version + `"}`))
	})

	// Sent email log
	mux.HandleFunc("GET /api/v1/emails", h.ListEmails)
	mux.HandleFunc("DELETE /api/v1/emails/{id}", h.DeleteEmail)

	// Command pipeline
	mux.HandleFunc("POST /api/v1/commands", h.RunCommand)
	mux.HandleFunc("GET /api/v1/receipts/{messageId}", h.GetReceipt)

	// Apply middleware stack
	var handler http.Handler = mux

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
