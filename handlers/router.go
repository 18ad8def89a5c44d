package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/amu-telemed/telemed-backend/middleware"
)

func NewRouter(socket *SocketServer, status *StatusHandler, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/ws/{token}", socket.Handle)

	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(middleware.JWTValidation(jwtSecret))
	secured.HandleFunc("/presence", status.Presence).Methods("GET")

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"service":   "Telemed Realtime Platform",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
