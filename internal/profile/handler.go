package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"redguardian/infrastructure"
	"redguardian/internal/auth"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) Get(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	viewerID := auth.UserID(r.Context())
	if targetID == "me" {
		targetID = viewerID
	}

	p, err := h.service.Get(r.Context(), targetID, viewerID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/users/{id}/profile", h.Get).Methods("GET")
}
