package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"carsight/internal/analysis"
	"carsight/internal/chat"
)

// Handler carries the service dependencies for all HTTP endpoints.
type Handler struct {
	analysis *analysis.Service
	sessions *chat.Registry
	log      *slog.Logger
}

func NewHandler(svc *analysis.Service, sessions *chat.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{analysis: svc, sessions: sessions, log: logger}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs the full pipeline. All-or-nothing: any stage failure
// yields a single generic notice, never a partial result body.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var query analysis.VehicleQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if msg := validateQuery(query); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.analysis.Analyze(r.Context(), query)
	if err != nil {
		h.log.Error("analysis failed", "vehicle", query.Label(), "error", err)
		writeError(w, http.StatusBadGateway, "analysis failed, please try again")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type issueDetailRequest struct {
	Vehicle analysis.VehicleQuery `json:"vehicle"`
	Issue   string                `json:"issue"`
}

type issueDetailResponse struct {
	Detail string `json:"detail"`
}

// handleIssueDetail is advisory: past request validation it always answers
// 200 with text, falling back inside the fetcher on upstream failure.
func (h *Handler) handleIssueDetail(w http.ResponseWriter, r *http.Request) {
	var req issueDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Issue) == "" {
		writeError(w, http.StatusBadRequest, "issue is required")
		return
	}
	detail := h.analysis.IssueDetail(r.Context(), req.Vehicle, req.Issue)
	writeJSON(w, http.StatusOK, issueDetailResponse{Detail: detail})
}

func validateQuery(q analysis.VehicleQuery) string {
	if strings.TrimSpace(q.Make) == "" || strings.TrimSpace(q.Model) == "" {
		return "make and model are required"
	}
	if q.Year <= 0 {
		return "year is required"
	}
	if q.Mileage < 0 || q.Price < 0 {
		return "mileage and price must be non-negative"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
