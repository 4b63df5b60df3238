package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cedarkv/bptree/pkg/bptree"
)

const defaultRangeLimit = 1000

// Server holds the API server state.
type Server struct {
	index   Indexer
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server.
func NewServer(index Indexer, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		index:   index,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.recordIndexOp("put", false, start)
		sendError(w, "Key is required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.recordIndexOp("put", false, start)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.index.Insert(key, body); err != nil {
		s.recordIndexOp("put", false, start)
		if errors.Is(err, bptree.ErrDuplicateKey) {
			sendError(w, fmt.Sprintf("Key already exists: %v", err), http.StatusConflict)
			return
		}
		sendError(w, fmt.Sprintf("Failed to insert key-value: %v", err), http.StatusInternalServerError)
		return
	}

	s.recordIndexOp("put", true, start)
	if s.metrics != nil {
		s.metrics.UpdateIndexStats(s.index.Len())
	}
	sendSuccess(w, map[string]string{"key": key})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.recordIndexOp("get", false, start)
		sendError(w, "Key is required", http.StatusBadRequest)
		return
	}

	value, ok, err := s.index.Find(key)
	if err != nil {
		s.recordIndexOp("get", false, start)
		sendError(w, fmt.Sprintf("Failed to find key: %v", err), http.StatusInternalServerError)
		return
	}
	if !ok {
		s.recordIndexOp("get", false, start)
		sendError(w, "Key not found", http.StatusNotFound)
		return
	}

	s.recordIndexOp("get", true, start)
	sendSuccess(w, map[string]interface{}{"key": key, "value": value})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.recordIndexOp("delete", false, start)
		sendError(w, "Key is required", http.StatusBadRequest)
		return
	}

	if err := s.index.Delete(key); err != nil {
		s.recordIndexOp("delete", false, start)
		if errors.Is(err, bptree.ErrNotFound) {
			sendError(w, "Key not found", http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("Failed to delete key: %v", err), http.StatusInternalServerError)
		return
	}

	s.recordIndexOp("delete", true, start)
	if s.metrics != nil {
		s.metrics.UpdateIndexStats(s.index.Len())
	}
	sendSuccess(w, map[string]string{"key": key})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lo := r.URL.Query().Get("lo")
	hi := r.URL.Query().Get("hi")
	if lo == "" || hi == "" {
		s.recordIndexOp("range", false, start)
		sendError(w, "Query parameters lo and hi are required", http.StatusBadRequest)
		return
	}

	limit := defaultRangeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.recordIndexOp("range", false, start)
			sendError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	out := make([][]byte, limit)
	n, err := s.index.Range(lo, hi, out)
	if err != nil {
		s.recordIndexOp("range", false, start)
		sendError(w, fmt.Sprintf("Failed to range scan: %v", err), http.StatusBadRequest)
		return
	}

	s.recordIndexOp("range", true, start)
	sendSuccess(w, RangeResponse{Values: out[:n]})
}

func (s *Server) recordIndexOp(operation string, success bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordIndexOperation(operation, success, time.Since(start))
	}
}
