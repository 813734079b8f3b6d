package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/goalseek"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/store"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return eris.Wrap(err, "server: decode request")
	}
	return nil
}

// statusForEngineErr maps engine rejections of request values to 422;
// anything else is a server-side failure.
func statusForEngineErr(err error) int {
	switch {
	case eris.Is(err, costing.ErrRateCardNotFound),
		eris.Is(err, goalseek.ErrUnsupportedField),
		eris.Is(err, goalseek.ErrInvalidBounds),
		eris.Is(err, normalize.ErrNoValidEstimate),
		eris.Is(err, normalize.ErrBandNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type estimateRequest struct {
	Items []model.ScopeItem `json:"items"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, eris.New("server: no items to estimate"))
		return
	}

	refs, err := s.referenceHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	res, err := normalize.New(s.pack.Estimation).EstimateBatch(r.Context(), req.Items, refs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(res.Estimates) == 0 {
		writeError(w, http.StatusUnprocessableEntity,
			eris.Errorf("server: no item could be estimated: %s", res.Failed[0].Reason))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// referenceHistory loads the stored observations that feed baseline
// shrinkage. Without a store estimation simply runs baseline-free.
func (s *Server) referenceHistory(ctx context.Context) ([]model.RefObservation, error) {
	if s.st == nil {
		return nil, nil
	}
	refs, err := s.st.ListReferenceObservations(ctx, store.ReferenceFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "server: load reference history")
	}
	return refs, nil
}

type costRequest struct {
	ManDays []costing.RoleManDays `json:"man_days"`
	Inputs  model.CostInputs      `json:"inputs"`
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := costing.NewCalculator(s.pack.Cost).Calculate(req.ManDays, req.Inputs)
	if err != nil {
		writeError(w, statusForEngineErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res.Rounded())
}

type goalseekRequest struct {
	ManDays []costing.RoleManDays `json:"man_days"`
	Inputs  model.CostInputs      `json:"inputs"`
	goalseek.Request
}

func (s *Server) handleGoalSeek(w http.ResponseWriter, r *http.Request) {
	var req goalseekRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	solver := goalseek.New(costing.NewCalculator(s.pack.Cost))
	resp, err := solver.Solve(req.ManDays, req.Inputs, req.Request)
	if err != nil {
		writeError(w, statusForEngineErr(err), err)
		return
	}
	resp.Result = resp.Result.Rounded()
	writeJSON(w, http.StatusOK, resp)
}

type timelineRequest struct {
	Tasks     []model.TimelineTask `json:"tasks"`
	TotalDays int                  `json:"total_days"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Tasks) == 0 {
		writeError(w, http.StatusBadRequest, eris.New("server: no tasks to allocate"))
		return
	}
	alloc := timeline.NewAllocator(s.pack.Cost.RoleOrder()).Allocate(req.Tasks, req.TotalDays)
	writeJSON(w, http.StatusOK, alloc)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	if s.st == nil {
		writeError(w, http.StatusServiceUnavailable, eris.New("server: no store configured"))
		return
	}
	a, err := s.st.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if s.st == nil {
		writeError(w, http.StatusServiceUnavailable, eris.New("server: no store configured"))
		return
	}

	filter := store.AssessmentFilter{Client: r.URL.Query().Get("client")}
	for param, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := r.URL.Query().Get(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, eris.Errorf("server: bad %s %q", param, v))
			return
		}
		*dst = n
	}

	list, err := s.st.ListAssessments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
