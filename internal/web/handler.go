// Package web exposes the sync pipeline over HTTP so an analysis job can
// POST its result payload instead of invoking the CLI.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cexll/reviewbot/internal/review"
)

// maxPayloadBytes caps the accepted result payload size.
const maxPayloadBytes = 4 << 20

// Handler handles review ingestion requests.
type Handler struct {
	store  review.CommentStore
	limits review.Limits
}

// NewHandler creates a new web handler.
func NewHandler(store review.CommentStore, limits review.Limits) *Handler {
	return &Handler{store: store, limits: limits}
}

// RegisterRoutes registers the ingestion routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/reviews/{owner}/{repo}/{number}", h.handlePublish).Methods("POST")
	r.HandleFunc("/healthz", h.handleHealth).Methods("GET")
}

type publishResponse struct {
	Status    string `json:"status"`
	Issues    int    `json:"issues"`
	New       int    `json:"new"`
	Resolved  int    `json:"resolved"`
	Unchanged int    `json:"unchanged"`
}

// handlePublish ingests an analyzer result and republishes the summary
// comment for the addressed pull request thread.
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	repo := vars["owner"] + "/" + vars["repo"]

	number, err := strconv.Atoi(vars["number"])
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PR number: %s", vars["number"]))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := review.ParseResult(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unparseable result payload: %v", err))
		return
	}

	report, err := review.Sync(r.Context(), h.store, repo, number, result, h.limits)
	if err != nil {
		log.Printf("[Web] Sync failed for %s#%d: %v", repo, number, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("sync failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{
		Status:    "published",
		Issues:    len(report.Entries),
		New:       len(report.Delta.New),
		Resolved:  len(report.Delta.Resolved),
		Unchanged: report.Delta.Unchanged,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Web] Failed to encode response: %v", err)
	}
}
