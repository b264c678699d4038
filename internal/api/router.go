package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/summary", h.Summary).Methods("GET")
	r.HandleFunc("/capillarity", h.Capillarity).Methods("GET")
	r.HandleFunc("/providers", h.Providers).Methods("GET")
	r.HandleFunc("/nps", h.NPS).Methods("GET")
	r.HandleFunc("/finance", h.Finance).Methods("GET")
	r.HandleFunc("/quality", h.Quality).Methods("GET")
	r.HandleFunc("/reload", h.Reload).Methods("POST")

	return r
}

// Handler wraps the router with access logging and panic recovery.
func Handler(h *Handlers, access io.Writer) http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(h.Log),
		handlers.PrintRecoveryStack(true),
	)(NewRouter(h))
	return handlers.CombinedLoggingHandler(access, recovered)
}
