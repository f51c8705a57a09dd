package server

import (
	"net/http"

	"github.com/me/cpusched/internal/compare"
	"github.com/me/cpusched/internal/validate"
	"github.com/me/cpusched/pkg/model"
)

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req compare.Request
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	var details []model.FieldError
	for i, p := range req.Policies {
		canonical, err := model.ParsePolicy(string(p))
		if err != nil {
			details = append(details, model.FieldError{Field: fieldIndex("policies", i), Message: err.Error()})
			continue
		}
		req.Policies[i] = canonical
	}
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrUnsupportedPolicy,
			Message: "unsupported policy",
			Details: details,
		})
		return
	}
	if apiErr := validate.Processes(req.Processes, s.limits); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	cmp, err := compare.Run(r.Context(), req, compare.Config{
		Workers: s.config.CompareWorkers,
		Options: s.simOpts,
	}, s.logger)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	respondOK(w, reqID, cmp)
}
