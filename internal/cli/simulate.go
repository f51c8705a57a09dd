package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/me/cpusched/internal/report"
	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/internal/validate"
	"github.com/me/cpusched/internal/workload"
	"github.com/me/cpusched/pkg/model"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var (
		policy         string
		quantum        int
		workConserving bool
		label          string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <workload>",
		Short: "Simulate one policy over a workload file",
		Long: `Simulate reads a workload (.yaml, .yml, .json or .csv) and runs it under one
policy. Flags override values from the file. CSV rows are id,burst,arrival[,priority].

Without --local the request is sent to the server, which stores the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := workload.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("policy") {
				p, err := model.ParsePolicy(policy)
				if err != nil {
					return err
				}
				req.Policy = p
			}
			if quantum > 0 {
				req.Quantum = quantum
			}
			if label != "" {
				req.Label = label
			}
			if workConserving {
				req.WorkConserving = true
			}
			if req.Policy == "" {
				return fmt.Errorf("no policy given: set --policy or a policy in %s", args[0])
			}

			out := cmd.OutOrStdout()
			if flagLocal {
				res, err := simulateLocal(req)
				if err != nil {
					return explain(err)
				}
				logger.Debug("simulation complete", "policy", req.Policy, "processes", req.ProcessCount(), "makespan", res.Metrics.Makespan)
				if asJSON {
					return writeJSON(out, res)
				}
				report.Result(out, title(req), res)
				return nil
			}

			resp, err := client.Post(cmd.Context(), "/api/v1/simulations", req)
			if err != nil {
				return fmt.Errorf("simulate: %w", explain(err))
			}
			if asJSON {
				_, err := out.Write(append(resp.Data, '\n'))
				return err
			}
			var run model.SimulationRun
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			report.Result(out, title(req), run.Result)
			fmt.Fprintf(out, "\nStored as %s\n", run.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", "", "Scheduling policy (fcfs, sjf, priority, rr, srtf, mlq)")
	cmd.Flags().IntVarP(&quantum, "quantum", "q", 0, "Round-Robin time quantum")
	cmd.Flags().BoolVar(&workConserving, "work-conserving", false, "MLQ: serve lower queues while higher ones have nothing ready")
	cmd.Flags().StringVar(&label, "label", "", "Label stored with the run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

// simulateLocal validates and runs req in-process.
func simulateLocal(req *model.SimulationRequest) (*model.Result, error) {
	if apiErr := validate.Request(req, validate.DefaultLimits()); apiErr != nil {
		return nil, apiErr
	}
	return sim.Run(req, sim.DefaultOptions())
}

func title(req *model.SimulationRequest) string {
	t := strings.ToUpper(string(req.Policy))
	if req.Policy.RequiresQuantum() {
		t = fmt.Sprintf("%s (quantum %d)", t, req.Quantum)
	}
	if req.Label != "" {
		t += ": " + req.Label
	}
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
