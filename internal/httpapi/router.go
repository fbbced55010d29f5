package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the auth routes. Logout and me require a bearer access
// token; the rest are anonymous by nature.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/auth").Subrouter()
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	api.Handle("/logout", h.requireAuth(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)
	api.Handle("/me", h.requireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return r
}
