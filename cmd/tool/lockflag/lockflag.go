// Package lockflag holds the --lock-timeout flag shared by the tool
// subcommands.
package lockflag

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

const (
	name         = "lock-timeout"
	desc         = "how long to wait for a file lock before giving up, 0 never waits"
	defaultValue = 2 * time.Second
)

// Register adds --lock-timeout to cmd and all of its subcommands.
func Register(cmd *cobra.Command) {
	cmd.PersistentFlags().Duration(name, defaultValue, desc)
}

// Context bounds lock waits by the --lock-timeout value seen by cmd.
func Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	d, err := cmd.Flags().GetDuration(name)
	if err != nil || d <= 0 {
		// never done, so every lock attempt is non-blocking
		return context.Background(), func() {}
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
