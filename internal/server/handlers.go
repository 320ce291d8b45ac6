package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
	dagio "github.com/matzehuels/historydag/pkg/io"
	"github.com/matzehuels/historydag/pkg/observability"
)

var errNoDAG = herrors.New(herrors.ErrCodeNotFound, "no DAG loaded")

// SummaryResponse is the body of GET /summary and POST /merge.
type SummaryResponse struct {
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Leaves    int    `json:"leaves"`
	Histories string `json:"histories"`
	MinScore  int    `json:"min_score"`
	MaxScore  int    `json:"max_score"`
}

// HistogramBucket is one entry of GET /histogram, in ascending score order.
type HistogramBucket struct {
	Score int    `json:"score"`
	Count string `json:"count"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dag == nil {
		writeError(w, errNoDAG)
		return
	}
	writeJSON(w, http.StatusOK, summarize(s.dag))
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dag == nil {
		writeError(w, errNoDAG)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"histories": s.dag.CountHistories().String()})
}

func (s *Server) histogram(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dag == nil {
		writeError(w, errNoDAG)
		return
	}
	h := s.dag.ScoreHistogram(hdag.AmbiguousLeafHammingScore)
	buckets := make([]HistogramBucket, 0, len(h))
	for _, score := range h.Scores() {
		buckets = append(buckets, HistogramBucket{Score: score, Count: h[score].String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"histogram": buckets})
}

func (s *Server) exportDAG(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dag == nil {
		writeError(w, errNoDAG)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := dagio.WriteJSON(s.dag, w); err != nil {
		s.logger.Error("encode DAG", "err", err)
	}
}

func (s *Server) merge(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	in, err := dagio.ReadJSON(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return
		}
		writeError(w, err)
		return
	}
	_, _ = io.Copy(io.Discard, body)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.dag == nil {
		s.dag = in
	} else if err := s.dag.Merge(in); err != nil {
		observability.Pipeline().OnMergeComplete(r.Context(), s.dag.NodeCount(), s.dag.EdgeCount(), time.Since(start), err)
		s.logger.Warn("merge rejected", "id", RequestIDFromContext(r.Context()), "err", err)
		writeError(w, err)
		return
	}
	observability.Pipeline().OnMergeComplete(r.Context(), s.dag.NodeCount(), s.dag.EdgeCount(), time.Since(start), nil)
	s.logger.Info("merged",
		"id", RequestIDFromContext(r.Context()),
		"nodes", s.dag.NodeCount(),
		"edges", s.dag.EdgeCount())
	writeJSON(w, http.StatusOK, summarize(s.dag))
}

func summarize(d *hdag.DAG) SummaryResponse {
	sum := d.Summarize(hdag.AmbiguousLeafHammingScore)
	return SummaryResponse{
		Nodes:     sum.Nodes,
		Edges:     sum.Edges,
		Leaves:    sum.Leaves,
		Histories: sum.Histories.String(),
		MinScore:  sum.MinScore,
		MaxScore:  sum.MaxScore,
	}
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, herrors.HTTPStatus(err), errorResponse{
		Error: err.Error(),
		Code:  string(herrors.GetCode(err)),
	})
}
