package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/internal/store"
	"github.com/me/cpusched/internal/validate"
	"github.com/me/cpusched/pkg/model"
)

// simulate validates and runs req. On failure it returns the HTTP status
// and API error to report; no partial result is ever returned.
func (s *Server) simulate(ctx context.Context, req *model.SimulationRequest) (*model.Result, int, *model.APIError) {
	normalizePolicies(req)
	if apiErr := validate.Request(req, s.limits); apiErr != nil {
		return nil, http.StatusBadRequest, apiErr
	}

	start := time.Now()
	res, err := sim.Run(req, s.simOpts)
	if err != nil {
		var unsupported *model.UnsupportedPolicyError
		switch {
		case errors.As(err, &unsupported):
			return nil, http.StatusBadRequest, &model.APIError{Code: model.ErrUnsupportedPolicy, Message: err.Error()}
		case errors.Is(err, sim.ErrInvariant), errors.Is(err, sim.ErrStepLimit):
			s.logger.ErrorContext(ctx, "simulation failed", "policy", req.Policy, "error", err)
			return nil, http.StatusInternalServerError, &model.APIError{Code: model.ErrSimulation, Message: err.Error()}
		default:
			return nil, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: err.Error()}
		}
	}

	s.logger.Info("simulation complete",
		"policy", req.Policy,
		"processes", req.ProcessCount(),
		"makespan", res.Metrics.Makespan,
		"duration", time.Since(start).String(),
	)
	return res, http.StatusOK, nil
}

// normalizePolicies rewrites policy aliases to canonical names. Unknown
// names are left for validation to report.
func normalizePolicies(req *model.SimulationRequest) {
	if p, err := model.ParsePolicy(string(req.Policy)); err == nil {
		req.Policy = p
	}
	for i := range req.Queues {
		if p, err := model.ParsePolicy(string(req.Queues[i].Policy)); err == nil {
			req.Queues[i].Policy = p
		}
	}
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	name := chi.URLParam(r, "policy")

	policy, err := model.ParsePolicy(name)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrUnsupportedPolicy,
			Message: err.Error(),
			Details: []model.FieldError{{Field: "policy", Message: "unknown policy " + strconv.Quote(name)}},
		})
		return
	}

	var req model.SimulationRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	req.Policy = policy

	res, status, apiErr := s.simulate(r.Context(), &req)
	if apiErr != nil {
		respondError(w, reqID, status, apiErr)
		return
	}
	respondOK(w, reqID, res)
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.SimulationRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	if req.Policy == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("missing required field",
				model.FieldError{Field: "policy", Message: "policy is required"}))
		return
	}

	res, status, apiErr := s.simulate(r.Context(), &req)
	if apiErr != nil {
		respondError(w, reqID, status, apiErr)
		return
	}

	run := &model.SimulationRun{
		ID:        s.newID(),
		Label:     req.Label,
		Policy:    req.Policy,
		Request:   req,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		respondInternal(w, reqID, err)
		return
	}

	s.logger.Info("simulation stored", "id", run.ID, "policy", run.Policy)
	respondCreated(w, reqID, run)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	q := r.URL.Query()

	opts := model.DefaultListOptions()
	var details []model.FieldError
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, model.FieldError{Field: "limit", Message: "must be a positive integer"})
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			details = append(details, model.FieldError{Field: "offset", Message: "must be a non-negative integer"})
		}
		opts.Offset = n
	}
	if v := q.Get("policy"); v != "" {
		p, err := model.ParsePolicy(v)
		if err != nil {
			details = append(details, model.FieldError{Field: "policy", Message: "unknown policy " + strconv.Quote(v)})
		}
		opts.Policy = p
	}
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid query parameters", details...))
		return
	}
	opts.Clamp()

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if runs == nil {
		runs = []*model.RunSummary{}
	}

	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	})
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
			return
		}
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("simulation deleted", "id", id)
	respondOK(w, reqID, map[string]any{"id": id, "deleted": true})
}
