package tool

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
	"github.com/termlog/cirstore/utils/log"
)

var (
	catCmd = &cobra.Command{
		Use:     "cat",
		Short:   "Write the readable bytes of a ring file to stdout",
		Example: "cirstore tool cat -f ~/.cirstore/out.cf --offset 1024 --max 4096",
		RunE:    executeCat,
	}
	appendCmd = &cobra.Command{
		Use:     "append",
		Short:   "Append stdin to a ring file",
		Example: "tail -f build.log | cirstore tool append -f ~/.cirstore/build.cf",
		RunE:    executeAppend,
	}
	writeCmd = &cobra.Command{
		Use:     "write",
		Short:   "Write stdin to a ring file at a logical position",
		Example: "echo hello | cirstore tool write -f ~/.cirstore/out.cf --pos 20",
		RunE:    executeWrite,
	}

	catFile           string
	catOffset, catMax int64
	appendFile        string
	writeFile         string
	writePos          int64
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	catCmd.Flags().StringVarP(&catFile, "file", "f", "", fileDesc)
	catCmd.Flags().Int64Var(&catOffset, "offset", -1, "logical offset to start at, default is the oldest byte")
	catCmd.Flags().Int64Var(&catMax, "max", 0, "maximum number of bytes to print, 0 prints everything")
	_ = catCmd.MarkFlagRequired("file")

	appendCmd.Flags().StringVarP(&appendFile, "file", "f", "", fileDesc)
	_ = appendCmd.MarkFlagRequired("file")

	writeCmd.Flags().StringVarP(&writeFile, "file", "f", "", fileDesc)
	writeCmd.Flags().Int64Var(&writePos, "pos", 0, "logical position of the first byte")
	_ = writeCmd.MarkFlagRequired("file")
}

func executeCat(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	f, err := cirfile.Open(catFile)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		offset int64
		data   []byte
	)
	if catOffset < 0 && catMax <= 0 {
		offset, data, err = f.ReadAll(ctx)
	} else {
		start := catOffset
		if start < 0 {
			start = 0
		}
		limit := catMax
		if limit <= 0 {
			limit = math.MaxInt64
		}
		offset, data, err = f.ReadAtWithMax(ctx, start, limit)
	}
	if err != nil {
		return err
	}
	log.Debug("read %d bytes from %s at offset %d", len(data), catFile, offset)
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func executeAppend(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	f, err := cirfile.Open(appendFile)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.CopyFrom(ctx, cmd.InOrStdin())
	if err != nil {
		return errors.Wrapf(err, "appended %d bytes", n)
	}
	log.Debug("appended %d bytes to %s", n, appendFile)
	return nil
}

func executeWrite(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	f, err := cirfile.Open(writeFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.WriteAt(ctx, data, writePos)
}
