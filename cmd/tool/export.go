package tool

import (
	"bytes"
	"fmt"
	"os"

	"github.com/klauspost/compress/snappy"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
	"github.com/termlog/cirstore/utils/log"
)

// An export is one snappy block holding a header line and the live bytes.
const (
	exportHeaderFormat = "CIRX%02d %d %d\n"
	exportHeaderScan   = "CIRX%d %d %d\n"
)

var (
	exportCmd = &cobra.Command{
		Use:     "export",
		Short:   "Write the live bytes of a ring file to a compressed export",
		Example: "cirstore tool export -f ~/.cirstore/out.cf -o out.snappy",
		RunE:    executeExport,
	}
	importCmd = &cobra.Command{
		Use:     "import",
		Short:   "Create a ring file from a compressed export",
		Example: "cirstore tool import -i out.snappy -f ~/.cirstore/out.cf",
		RunE:    executeImport,
	}

	exportFile, exportOut string
	importFile, importIn  string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", fileDesc)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "path of the export to write")
	_ = exportCmd.MarkFlagRequired("file")
	_ = exportCmd.MarkFlagRequired("out")

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path of the ring file to create")
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "path of the export to read")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("in")
}

// EncodeExport packs the live bytes of a ring for export.
func EncodeExport(m cirfile.Meta, offset int64, data []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, exportHeaderFormat, m.Version, offset, m.MaxSize)
	buf.Write(data)
	return snappy.Encode(nil, buf.Bytes())
}

// DecodeExport unpacks an export into its offset, max size and data.
func DecodeExport(block []byte) (offset int64, maxSize int64, data []byte, err error) {
	raw, err := snappy.Decode(nil, block)
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "decompressing export")
	}
	nl := bytes.IndexByte(raw, '\n')
	if nl < 0 {
		return 0, 0, nil, errors.New("export has no header line")
	}
	var version int
	if _, err := fmt.Sscanf(string(raw[:nl+1]), exportHeaderScan, &version, &offset, &maxSize); err != nil {
		return 0, 0, nil, errors.Wrapf(err, "bad export header %q", raw[:nl])
	}
	if version != cirfile.CurrentVersion {
		return 0, 0, nil, errors.Wrapf(cirfile.ErrInvalidVersion, "export version[%d]", version)
	}
	if offset < 0 || maxSize <= 0 || int64(len(raw)-nl-1) > maxSize {
		return 0, 0, nil, errors.Errorf("bad export header %q", raw[:nl])
	}
	return offset, maxSize, raw[nl+1:], nil
}

func executeExport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	f, err := cirfile.Open(exportFile)
	if err != nil {
		return err
	}
	defer f.Close()

	offset, data, err := f.ReadAll(ctx)
	if err != nil {
		return err
	}
	block := EncodeExport(f.Meta(), offset, data)
	if err := os.WriteFile(exportOut, block, 0o600); err != nil {
		return errors.Wrap(err, "writing export")
	}
	log.Info("exported %d bytes at offset %d from %s (%d compressed)", len(data), offset, exportFile, len(block))
	return nil
}

func executeImport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	block, err := os.ReadFile(importIn)
	if err != nil {
		return errors.Wrap(err, "reading export")
	}
	offset, maxSize, data, err := DecodeExport(block)
	if err != nil {
		return err
	}
	f, err := cirfile.CreateAt(importFile, maxSize, offset)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.AppendData(ctx, data); err != nil {
		return err
	}
	log.Info("imported %d bytes at offset %d into %s", len(data), offset, importFile)
	return nil
}
