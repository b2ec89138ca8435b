package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"redguardian/infrastructure"
	"redguardian/internal/auth"
	"redguardian/internal/files"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) Feed(w http.ResponseWriter, r *http.Request) {
	kind := Kind(r.URL.Query().Get("filter"))

	reports, err := h.service.Feed(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

func (h *JSONHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *JSONHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, files.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	input := CreateReportInput{
		SenderID: auth.UserID(r.Context()),
		Kind:     Kind(r.FormValue("kind")),
		Summary:  r.FormValue("summary"),
		Filename: header.Filename,
		File:     file,
	}
	if v := r.FormValue("latitude"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid latitude", http.StatusBadRequest)
			return
		}
		input.Latitude = &lat
	}
	if v := r.FormValue("longitude"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid longitude", http.StatusBadRequest)
			return
		}
		input.Longitude = &lng
	}
	if v := strings.TrimSpace(r.FormValue("linked_problems")); v != "" {
		input.LinkedProblems = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(r.FormValue("collaborators")); v != "" {
		input.CollaboratorEmails = strings.Split(v, ",")
	}

	report, err := h.service.CreateReport(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}

func (h *JSONHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, files.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := AddCommentInput{
		ReportID: mux.Vars(r)["id"],
		AuthorID: auth.UserID(r.Context()),
		Text:     r.FormValue("text"),
	}
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		input.Image = file
	}

	comment, err := h.service.AddComment(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}

func (h *JSONHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.DeleteComment(r.Context(), vars["id"], vars["commentId"], auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JSONHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorited, err := h.service.ToggleFavorite(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorited": favorited})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, infrastructure.ErrReportNotFound),
		errors.Is(err, infrastructure.ErrCommentNotFound),
		errors.Is(err, infrastructure.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, infrastructure.ErrForbidden),
		errors.Is(err, infrastructure.ErrNotVerified):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, infrastructure.ErrInvalidInput),
		errors.Is(err, infrastructure.ErrFileTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetupJSONRoutes registers the report endpoints. The feed and single
// reports are public so shared links work without an account.
func SetupJSONRoutes(public, authed *mux.Router, h *JSONHandler) {
	public.HandleFunc("/reports", h.Feed).Methods("GET")
	public.HandleFunc("/reports/{id}", h.Get).Methods("GET")
	authed.HandleFunc("/reports", h.Create).Methods("POST")
	authed.HandleFunc("/reports/{id}/comments", h.AddComment).Methods("POST")
	authed.HandleFunc("/reports/{id}/comments/{commentId}", h.DeleteComment).Methods("DELETE")
	authed.HandleFunc("/reports/{id}/favorite", h.ToggleFavorite).Methods("POST")
}
