package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/me/cpusched/internal/report"
	"github.com/me/cpusched/pkg/model"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage simulation runs stored on the server",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd(), newRunsDeleteCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var (
		policy string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			if policy != "" {
				q.Set("policy", policy)
			}
			resp, err := client.Get(cmd.Context(), "/api/v1/simulations?"+q.Encode())
			if err != nil {
				return fmt.Errorf("list runs: %w", explain(err))
			}

			var runs []model.RunSummary
			if err := json.Unmarshal(resp.Data, &runs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found.")
				return nil
			}

			fmt.Fprintf(out, "%-40s  %-8s  %-20s  %5s  %8s  %8s  %s\n", "ID", "POLICY", "LABEL", "PROCS", "MAKESPAN", "AVG WAIT", "CREATED")
			fmt.Fprintf(out, "%-40s  %-8s  %-20s  %5s  %8s  %8s  %s\n", "--", "------", "-----", "-----", "--------", "--------", "-------")
			for _, r := range runs {
				fmt.Fprintf(out, "%-40s  %-8s  %-20s  %5d  %8d  %8.2f  %s\n",
					r.ID, r.Policy, truncate(r.Label, 20), r.ProcessCount, r.Makespan, r.AvgWaitingTime, humanize.Time(r.CreatedAt))
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(runs), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Only list runs of this policy")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Runs to skip")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get(cmd.Context(), "/api/v1/simulations/"+url.PathEscape(args[0]))
			if err != nil {
				return fmt.Errorf("show run: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				_, err := out.Write(append(resp.Data, '\n'))
				return err
			}
			var run model.SimulationRun
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			report.Result(out, title(&run.Request), run.Result)
			fmt.Fprintf(out, "\nRun %s, created %s (%s)\n", run.ID,
				run.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.CreatedAt))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if _, err := client.Delete(cmd.Context(), "/api/v1/simulations/"+url.PathEscape(id)); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
