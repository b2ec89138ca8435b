package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"redguardian/infrastructure"
	"redguardian/internal/auth"
	"redguardian/internal/user"
)

// JSONHandler exposes the conversation views over REST. Each request runs
// against the caller's live Session so the optimistic state survives across
// requests from the same user.
type JSONHandler struct {
	manager *Manager
	users   *user.Service
}

func NewJSONHandler(manager *Manager, users *user.Service) *JSONHandler {
	return &JSONHandler{manager: manager, users: users}
}

func (h *JSONHandler) session(r *http.Request) (*Session, error) {
	u, err := h.users.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		return nil, err
	}
	return h.manager.Session(r.Context(), Identity{
		ID:    u.ID,
		Name:  u.DisplayName(),
		Email: u.Email,
	}), nil
}

// Conversations returns the caller's conversation list, most recent activity
// first.
func (h *JSONHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Refresh(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"conversations": s.Conversations(),
	})
}

// Select opens a conversation: the transcript comes back oldest first and
// every incoming unread message is marked read.
func (h *JSONHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	counterpartID := mux.Vars(r)["counterpartId"]
	transcript, ok := s.Select(r.Context(), counterpartID)
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"counterpart_id": counterpartID,
		"messages":       transcript,
	})
}

type sendRequest struct {
	Text string `json:"text"`
}

// Send posts a message into the conversation addressed by the URL. The
// conversation must already be open for this session.
func (h *JSONHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	counterpartID := mux.Vars(r)["counterpartId"]
	if s.Selected() != counterpartID {
		if _, ok := s.Select(r.Context(), counterpartID); !ok {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
	}

	msg := s.Send(r.Context(), req.Text)
	if msg == nil {
		http.Error(w, "message text is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

type directSendRequest struct {
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

// SendDirect creates a message for a receiver the caller may not have a
// conversation with yet, as when writing from another user's profile. The
// store write is synchronous; the new conversation shows up on the next
// refresh.
func (h *JSONHandler) SendDirect(w http.ResponseWriter, r *http.Request) {
	var req directSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.ReceiverID == "" || req.Text == "" {
		http.Error(w, "receiver_id and text are required", http.StatusBadRequest)
		return
	}

	sender, err := h.users.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	receiver, err := h.users.Get(r.Context(), req.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.manager.store.CreateMessage(r.Context(), Message{
		SenderID:      sender.ID,
		ReceiverID:    receiver.ID,
		SenderName:    sender.DisplayName(),
		SenderEmail:   sender.Email,
		ReceiverName:  receiver.DisplayName(),
		ReceiverEmail: receiver.Email,
		Text:          req.Text,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, infrastructure.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, infrastructure.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/conversations", h.Conversations).Methods("GET")
	r.HandleFunc("/conversations/{counterpartId}", h.Select).Methods("GET")
	r.HandleFunc("/conversations/{counterpartId}/messages", h.Send).Methods("POST")
	r.HandleFunc("/messages", h.SendDirect).Methods("POST")
}
