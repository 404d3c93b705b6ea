package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"relation-labels/internal/logging"
	"relation-labels/internal/resolve"
)

// resolveRequest is the JSON body of a resolve call. Options uses the same
// keys as host-side field configuration (localField, foreignLabelField, ...).
type resolveRequest struct {
	Table   string         `json:"table"`
	UID     int64          `json:"uid"`
	Options map[string]any `json:"options"`
}

type resolveResponse struct {
	Value  *string  `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	reqLogger := logging.FromContext(r.Context())

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Table == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "table is required"})
		return
	}
	if req.UID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "uid must be positive"})
		return
	}

	if req.Options == nil {
		req.Options = map[string]any{}
	}
	if _, ok := req.Options["languageId"]; !ok && s.defaultLanguageID != 0 {
		req.Options["languageId"] = s.defaultLanguageID
	}

	opts, err := resolve.DecodeOptions(req.Options)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := s.fetcher.FetchByIDs(r.Context(), req.Table, []int64{req.UID}, "")
	if err != nil {
		reqLogger.Error("failed to load source record",
			slog.String("table", req.Table),
			slog.Int64("uid", req.UID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load source record"})
		return
	}
	if len(records) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("record %s:%d not found", req.Table, req.UID),
		})
		return
	}

	result, err := s.resolver.Resolve(r.Context(), opts, records[0])
	if err != nil {
		if errors.Is(err, resolve.ErrMissingLocalField) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		reqLogger.Error("resolution failed",
			slog.String("table", req.Table),
			slog.Int64("uid", req.UID),
			slog.String("field", opts.LocalField),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "resolution failed"})
		return
	}

	if result.Multi() {
		values := result.Values()
		if values == nil {
			values = []string{}
		}
		writeJSON(w, http.StatusOK, resolveResponse{Values: values})
		return
	}
	joined := result.String()
	writeJSON(w, http.StatusOK, resolveResponse{Value: &joined})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqLogger := logging.FromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		reqLogger.Error("health check failed",
			slog.String("error", err.Error()),
			slog.String("check", "database"),
		)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, `{"status":"unhealthy","database":"failed"}`)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, `{"status":"healthy","database":"ok"}`)
}
