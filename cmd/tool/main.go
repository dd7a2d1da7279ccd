package tool

import (
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/cmd/tool/inspect"
	"github.com/termlog/cirstore/cmd/tool/integrity"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
)

const (
	toolUsage     = "tool"
	toolShortDesc = "Executes tools as subcommands"
	toolLongDesc  = "This command executes the specified tool against ring files on local disk."
	toolExample   = "cirstore tool cat -f <file> [flags]"

	fileDesc = "path to the ring file"
)

var (
	// Cmd is the tool command.
	Cmd = &cobra.Command{
		Use:        toolUsage,
		Short:      toolShortDesc,
		Long:       toolLongDesc,
		Aliases:    []string{"t"},
		SuggestFor: []string{"inspect", "integrity"},
		Example:    toolExample,
	}
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	lockflag.Register(Cmd)

	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(statCmd)
	Cmd.AddCommand(catCmd)
	Cmd.AddCommand(appendCmd)
	Cmd.AddCommand(writeCmd)
	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(inspect.Cmd)
	Cmd.AddCommand(integrity.Cmd)
}
