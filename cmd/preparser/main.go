// Command preparser is the client CLI: it talks to a running preparserd
// over its Unix-socket IPC to enqueue work, cancel requests, and inspect
// status.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
