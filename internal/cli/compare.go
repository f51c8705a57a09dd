package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/me/cpusched/internal/compare"
	"github.com/me/cpusched/internal/report"
	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/internal/validate"
	"github.com/me/cpusched/internal/workload"
	"github.com/me/cpusched/pkg/model"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		policies []string
		quantum  int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "compare <workload>",
		Short: "Compare policies over the same workload",
		Long: `Compare runs several single-level policies over the processes of a workload
file and ranks them by average waiting time. By default fcfs, sjf and srtf run,
plus priority when every process has one and rr when a quantum is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := workload.Load(args[0])
			if err != nil {
				return err
			}
			req := compare.Request{Processes: wl.Processes, Quantum: wl.Quantum}
			if quantum > 0 {
				req.Quantum = quantum
			}
			for _, name := range policies {
				p, err := model.ParsePolicy(name)
				if err != nil {
					return err
				}
				req.Policies = append(req.Policies, p)
			}

			var cmp *model.Comparison
			if flagLocal {
				if apiErr := validate.Processes(req.Processes, validate.DefaultLimits()); apiErr != nil {
					return explain(apiErr)
				}
				cmp, err = compare.Run(cmd.Context(), req, compare.Config{
					Workers: runtime.NumCPU(),
					Options: sim.DefaultOptions(),
				}, logger)
				if err != nil {
					return err
				}
			} else {
				resp, err := client.Post(cmd.Context(), "/api/v1/compare", req)
				if err != nil {
					return fmt.Errorf("compare: %w", explain(err))
				}
				cmp = &model.Comparison{}
				if err := json.Unmarshal(resp.Data, cmp); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, cmp)
			}
			report.Comparison(out, cmp)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&policies, "policies", nil, "Policies to compare (comma-separated)")
	cmd.Flags().IntVarP(&quantum, "quantum", "q", 0, "Round-Robin time quantum")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")

	return cmd
}
