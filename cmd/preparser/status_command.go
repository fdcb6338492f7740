package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"preparser/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var outcomeLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and recent completed requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				fmt.Fprintf(out, "Daemon: %s (pid %d, uptime %ds)\n",
					colorForStatus(runningLabel(status.Running), colorize), status.PID, status.UptimeSecs)
				fmt.Fprintf(out, "Live requests: %d\n", status.LiveRequests)
				fmt.Fprintf(out, "Socket: %s\n", status.SocketPath)
				if status.AuditPath != "" {
					fmt.Fprintf(out, "Audit journal: %s\n", status.AuditPath)
				}

				outcomes, err := client.Outcomes(outcomeLimit)
				if err != nil {
					fmt.Fprintf(out, "\n(no completion history available: %v)\n", err)
					return nil
				}
				if len(outcomes.Outcomes) == 0 {
					return nil
				}

				fmt.Fprintln(out)
				headers := []string{"Request", "Kind", "Domains", "Status", "Terminated"}
				rows := make([][]string, 0, len(outcomes.Outcomes))
				for _, o := range outcomes.Outcomes {
					rows = append(rows, []string{
						strconv.FormatUint(o.RequestID, 10),
						o.Kind,
						strings.Join(o.Domains, ","),
						colorForStatus(o.Status, colorize),
						o.TerminatedAt.Format("15:04:05"),
					})
				}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&outcomeLimit, "limit", 20, "Number of recent completed requests to show")
	return cmd
}

func runningLabel(running bool) string {
	if running {
		return "ok"
	}
	return "error"
}
