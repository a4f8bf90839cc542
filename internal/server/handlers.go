package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fieldstone/quarry/internal/models"
	"github.com/fieldstone/quarry/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("kind", q.Kind), zap.String("term", q.Term), zap.String("mode", string(q.Mode)))
	records, err := s.engine.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleSearchScored(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	response, err := s.engine.SearchScored(r.Context(), q)
	if err != nil {
		s.logger.Error("scored search failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	count, err := s.engine.Count(r.Context(), q)
	if err != nil {
		s.logger.Error("count failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var input models.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create record request", zap.String("id", input.ID), zap.String("kind", input.Kind))
	if err := s.indexer.IndexRecord(r.Context(), &input); err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": input.ID, "status": "indexed"})
}

// handleListRecords lists records, optionally restricted to one kind via the
// "kind" query parameter. "offset" and "limit" page through the set.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	offset := intParam(r, "offset", 0)
	limit := intParam(r, "limit", 100)

	var (
		records []*models.Record
		err     error
	)
	if kind := r.URL.Query().Get("kind"); kind != "" {
		if !s.registry.Has(kind) {
			s.respondError(w, http.StatusBadRequest, "unknown kind: "+kind)
			return
		}
		records, err = s.store.ListRecordsByKind(r.Context(), kind, offset, limit)
	} else {
		records, err = s.store.ListRecords(r.Context(), offset, limit)
	}
	if err != nil {
		s.logger.Error("list records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*models.Record{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.GetRecord(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "record not found")
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete record request", zap.String("id", id))
	if err := s.indexer.DeleteRecord(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	indexed, err := s.indexer.Rebuild(r.Context(), s.store)
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "rebuilt", "indexed": indexed})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	recordCount, err := s.store.CountRecords(r.Context())
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"records": recordCount,
		"kinds":   s.registry.Kinds(),
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.IndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
