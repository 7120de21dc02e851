package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// CheckRequest is the body of POST /v1/check. Exactly one of SQL and SQLs
// must be set.
type CheckRequest struct {
	SQL  string   `json:"sql,omitempty"`
	SQLs []string `json:"sqls,omitempty"`
}

// CheckResponse is one checked text. AuditID is set when an audit store is
// configured.
type CheckResponse struct {
	*firewall.Result
	Allowed bool   `json:"allowed"`
	AuditID string `json:"audit_id,omitempty"`
}

// BatchResponse answers a batch request, in request order.
type BatchResponse struct {
	Results []CheckResponse `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if (req.SQL == "") == (len(req.SQLs) == 0) {
		writeError(w, http.StatusBadRequest, `exactly one of "sql" and "sqls" is required`)
		return
	}

	if req.SQL != "" {
		resp, err := s.respond(r, s.firewall.Check(req.SQL))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	results, err := s.firewall.CheckBatch(r.Context(), req.SQLs)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	batch := BatchResponse{Results: make([]CheckResponse, 0, len(results))}
	for _, res := range results {
		resp, err := s.respond(r, res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		batch.Results = append(batch.Results, resp)
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) respond(r *http.Request, res *firewall.Result) (CheckResponse, error) {
	resp := CheckResponse{Result: res, Allowed: res.Allowed()}
	if s.store != nil {
		id, err := s.store.Record(r.Context(), res)
		if err != nil {
			s.logger.Error("audit record failed", "error", err)
			return resp, err
		}
		resp.AuditID = id
	}
	return resp, nil
}

func (s *Server) handleChecks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Describe(s.firewall.Config()))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.firewall.Stats())
}

func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "audit store not configured")
		return
	}
	q := r.URL.Query()
	f := audit.Filter{Code: wall.Code(q.Get("code"))}
	if v := q.Get("denied"); v != "" {
		denied, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid denied: "+v)
			return
		}
		f.DeniedOnly = denied
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		f.Limit = limit
	}

	entries, err := s.store.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAuditGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "audit store not configured")
		return
	}
	e, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, audit.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
