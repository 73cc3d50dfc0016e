package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mikey/fraud-shield/internal/core"
)

const cacheStatsMessage = "Cached responses save API quota by returning instant results"

type scanBody struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Provider  string `json:"provider"`
	CacheSize int    `json:"cacheSize"`
}

type cacheStatsResponse struct {
	CachedResponses int    `json:"cachedResponses"`
	Message         string `json:"message"`
}

func (s *Server) scanHandler(analysisType core.AnalysisType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body scanBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		record, err := s.service.Handle(r.Context(), &core.ScanRequest{
			Type: analysisType,
			Text: body.Text,
			URL:  body.URL,
		})
		if errors.Is(err, core.ErrEmptyContent) {
			writeError(w, http.StatusBadRequest, "Missing content to scan.")
			return
		}
		if err != nil {
			s.logger.Error("Scan failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := s.history.Append(r.Context(), record); err != nil {
			s.logger.Error("Failed to append scan to history",
				zap.String("id", record.ID),
				zap.Error(err))
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.history.List(r.Context())
	if err != nil {
		s.logger.Error("Failed to list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.logger.Error("Failed to clear history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("Failed to delete history record", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to read history record", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cacheStatsResponse{
		CachedResponses: s.cache.Size(),
		Message:         cacheStatsMessage,
	})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(core.TimestampLayout),
		Provider:  s.service.Provider(),
		CacheSize: s.cache.Size(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
