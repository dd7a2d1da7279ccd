package inspect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
)

const (
	usage    = "inspect"
	short    = "Print the header and ring layout of a ring file"
	long     = "This command prints the header as stored on disk, the header after self-healing, and the physical ranges that hold live data and free space"
	example  = "cirstore tool inspect -f ~/.cirstore/out.cf"
	fileDesc = "path to the ring file"
)

var (
	// Cmd is the inspect command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Aliases: []string{"debug"},
		Example: example,
		RunE:    executeInspect,
	}
	// filePath is the path to the ring file.
	filePath string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	Cmd.Flags().StringVarP(&filePath, "file", "f", "", fileDesc)
	_ = Cmd.MarkFlagRequired("file")
}

func executeInspect(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	name := filepath.Clean(filePath)

	raw, err := readRawHeader(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "file:        %s\n", name)
	printMeta(out, "stored", raw)

	ctx, cancel := lockflag.Context(cmd)
	defer cancel()
	f, err := cirfile.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := f.ReadMeta(ctx)
	if err != nil {
		fmt.Fprintf(out, "healed:      %v\n", err)
		return err
	}
	printMeta(out, "healed", m)
	fmt.Fprintf(out, "live:        %s\n", formatRanges(m.LiveRanges()))
	fmt.Fprintf(out, "free:        %s\n", formatRanges(m.FreeRanges()))
	fmt.Fprintf(out, "readable:    [%d, %d) %s\n", m.FileOffset, m.LogicalEnd(), bytefmt.ByteSize(uint64(m.LiveSize())))
	return nil
}

// readRawHeader decodes the header without locking or healing it.
func readRawHeader(name string) (cirfile.Meta, error) {
	fp, err := os.Open(name)
	if err != nil {
		return cirfile.Meta{}, err
	}
	defer fp.Close()
	buf := make([]byte, cirfile.HeaderLen)
	if _, err := io.ReadFull(fp, buf); err != nil {
		return cirfile.Meta{}, fmt.Errorf("reading header of %s: %w", name, err)
	}
	m, err := cirfile.DecodeHeader(buf)
	if err != nil {
		return cirfile.Meta{}, err
	}
	finfo, err := fp.Stat()
	if err != nil {
		return cirfile.Meta{}, err
	}
	m.DataSize = finfo.Size() - cirfile.HeaderLen
	return m, nil
}

func printMeta(w io.Writer, label string, m cirfile.Meta) {
	fmt.Fprintf(w, "%-12s version=%d maxsize=%s fileoffset=%d startpos=%d endpos=%d datasize=%s\n",
		label+":", m.Version, bytefmt.ByteSize(uint64(m.MaxSize)), m.FileOffset, m.StartPos, m.EndPos,
		bytefmt.ByteSize(uint64(m.DataSize)))
}

func formatRanges(rs []cirfile.Range) string {
	if len(rs) == 0 {
		return "none"
	}
	s := ""
	for i, r := range rs {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d+%d", r.Pos, r.Len)
	}
	return s
}
