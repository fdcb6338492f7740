package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"preparser/internal/ipc"
)

func newCancelCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "cancel [request-id]",
		Short: "Cancel one request, or every live request with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uint64
			if !all {
				if len(args) != 1 {
					return fmt.Errorf("cancel requires a request id, or --all")
				}
				if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
					return fmt.Errorf("parse request id: %w", err)
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(id)
				if err != nil {
					return fmt.Errorf("cancel: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d request(s)\n", resp.Cancelled)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Cancel every live request")
	return cmd
}
