package server

import (
	"net/http"

	"github.com/me/cpusched/pkg/model"
)

type policyInfo struct {
	Name             model.Policy `json:"name"`
	Description      string       `json:"description"`
	Preemptive       bool         `json:"preemptive"`
	RequiresQuantum  bool         `json:"requires_quantum"`
	RequiresPriority bool         `json:"requires_priority"`
	QueueCompatible  bool         `json:"queue_compatible"`
}

func policyCatalogue() []policyInfo {
	out := make([]policyInfo, 0, len(model.AllPolicies))
	for _, p := range model.AllPolicies {
		out = append(out, policyInfo{
			Name:             p,
			Description:      p.Description(),
			Preemptive:       p.IsPreemptive(),
			RequiresQuantum:  p.RequiresQuantum(),
			RequiresPriority: p.RequiresPriority(),
			QueueCompatible:  p.QueueCompatible(),
		})
	}
	return out
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, policyCatalogue())
}
