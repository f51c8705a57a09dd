package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	GoVersion string         `json:"go_version"`
	Uptime    string         `json:"uptime"`
	Store     string         `json:"store"`
	Retention string         `json:"retention"`
	Limits    map[string]int `json:"limits"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	retention := "disabled"
	if s.retention != nil && s.config.Retention > 0 {
		retention = s.config.Retention.String()
	}
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     "sqlite",
		Retention: retention,
		Limits: map[string]int{
			"max_processes": s.limits.MaxProcesses,
			"max_time":      s.limits.MaxTime,
			"max_steps":     s.simOpts.MaxSteps,
		},
	})
}
