package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{session_id}", h.GetSession)
		r.Delete("/{session_id}", h.DeleteSession)
		r.Post("/{session_id}/query", h.SubmitQuery)
		r.Post("/{session_id}/csv", h.LoadCSV)
		r.Put("/{session_id}/api-key", h.SetAPIKey)
		r.Get("/{session_id}/messages", h.ListMessages)
		r.Get("/{session_id}/export", h.ExportResult)
	})
}
