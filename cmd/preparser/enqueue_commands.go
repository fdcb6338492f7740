package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"preparser/internal/ipc"
)

func newEnqueueParseCommand(ctx *commandContext) *cobra.Command {
	var domains string
	var interact bool
	var subitems bool

	cmd := &cobra.Command{
		Use:   "enqueue-parse <source-path>",
		Short: "Submit a parse-family request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domainList := splitDomains(domains)
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnqueueParse(ipc.EnqueueParseRequest{
					SourcePath: args[0],
					Domains:    domainList,
					Interact:   interact,
					Subitems:   subitems,
				})
				if err != nil {
					return fmt.Errorf("enqueue parse: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Accepted request %d\n", resp.RequestID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&domains, "domains", "parse,fetchmeta_local,fetchmeta_net", "Comma-separated domains to run")
	cmd.Flags().BoolVar(&interact, "interact", false, "Set the interactive option flag")
	cmd.Flags().BoolVar(&subitems, "subitems", false, "Request subitem (chapter) synthesis")
	return cmd
}

func newEnqueueThumbnailCommand(ctx *commandContext) *cobra.Command {
	var seekKind string
	var ticks int64
	var fraction float64
	var precise bool
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "enqueue-thumbnail <source-path>",
		Short: "Submit a thumbnail request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnqueueThumbnail(ipc.EnqueueThumbnailRequest{
					SourcePath:     args[0],
					SeekKind:       seekKind,
					Ticks:          ticks,
					Fraction:       fraction,
					Precise:        precise,
					TimeoutSeconds: timeoutSeconds,
				})
				if err != nil {
					return fmt.Errorf("enqueue thumbnail: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Accepted request %d\n", resp.RequestID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&seekKind, "seek", "none", "Seek kind: none, time, position")
	cmd.Flags().Int64Var(&ticks, "ticks", 0, "Seek position in ticks, used when --seek=time")
	cmd.Flags().Float64Var(&fraction, "fraction", 0, "Seek position as a fraction in [0,1], used when --seek=position")
	cmd.Flags().BoolVar(&precise, "precise", false, "Request the Precise precision hint")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Per-request timeout in seconds; 0 uses the engine default")
	return cmd
}

func splitDomains(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
