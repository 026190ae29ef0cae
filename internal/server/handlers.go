package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/viz"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string           `json:"error"`
	Status datastore.Status `json:"status,omitempty"`
}

// ReadyResponse is the body of /ready.
type ReadyResponse struct {
	Status datastore.Status `json:"status"`
	Stats  *datastore.Stats `json:"stats,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// SearchResponse is the body of /api/v1/search.
type SearchResponse struct {
	Query   string              `json:"query"`
	Results []paper.SearchEntry `json:"results"`
}

// GraphResponse is the body of /api/v1/graph/{id}.
type GraphResponse struct {
	Graph    *viz.Graph            `json:"graph"`
	Elements viz.CytoscapeElements `json:"elements"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("writing response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// snapshotOr503 returns the published snapshot or writes 503.
func (s *Server) snapshotOr503(w http.ResponseWriter) *datastore.Snapshot {
	snap, err := s.store.Require()
	if err != nil {
		resp := ErrorResponse{Error: err.Error(), Status: s.store.Status()}
		if errors.Is(err, datastore.ErrNotReady) {
			resp.Error = "graph data is still loading"
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return nil
	}
	return snap
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readinessCheck(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: s.store.Status()}
	if snap := s.store.Snapshot(); snap != nil {
		stats := snap.Stats()
		resp.Stats = &stats
	}
	if err := s.store.Err(); err != nil {
		resp.Error = err.Error()
	}

	status := http.StatusOK
	if resp.Status != datastore.StatusReady {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotOr503(w)
	if snap == nil {
		return
	}

	query := r.URL.Query().Get("q")
	limit := search.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, search.DefaultLimit)
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Results: search.Filter(query, limit, snap.Entries),
	})
}

func (s *Server) popularPapers(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotOr503(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.popular(snap))
}

func (s *Server) popular(snap *datastore.Snapshot) []paper.SearchEntry {
	entries := search.Popular(snap.Entries, s.opts.PopularCount)
	for i := range entries {
		entries[i].Title = search.ShortTitle(entries[i].DisplayTitle(), search.PopularTitleMaxLen)
	}
	return entries
}

func (s *Server) egoGraph(w http.ResponseWriter, r *http.Request) {
	id, err := paper.ParseID(chi.URLParam(r, "paperID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := s.snapshotOr503(w)
	if snap == nil {
		return
	}

	graph := viz.Build(id, snap.Titles, snap.Adjacency, s.opts.Graph)
	writeJSON(w, http.StatusOK, GraphResponse{Graph: graph, Elements: graph.ToCytoscape()})
}

func (s *Server) explorerPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(s.page))
}
