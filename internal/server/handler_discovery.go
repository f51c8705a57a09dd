package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "cpusched API",
		Version:     "v1",
		Description: "Discrete-time CPU scheduling simulation: FCFS, SJF, Priority, Round-Robin, SRTF and multi-level queues",
		Endpoints: []endpointInfo{
			{"/api/v1/policies", []string{"GET"}, "Supported scheduling policies"},
			{"/api/v1/schedule/{policy}", []string{"POST"}, "Simulate a workload under one policy without storing it"},
			{"/api/v1/simulations", []string{"GET", "POST"}, "Stored simulation runs. GET accepts ?policy=&limit=&offset="},
			{"/api/v1/simulations/{id}", []string{"GET", "DELETE"}, "Single stored run with its full result"},
			{"/api/v1/compare", []string{"POST"}, "Run several policies over one workload, ranked by average waiting time"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
