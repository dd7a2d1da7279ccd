package tool

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
)

var (
	createCmd = &cobra.Command{
		Use:     "create",
		Short:   "Create an empty ring file",
		Example: "cirstore tool create -f ~/.cirstore/out.cf -s 1M",
		RunE:    executeCreate,
	}
	statCmd = &cobra.Command{
		Use:     "stat",
		Short:   "Print the header summary of a ring file",
		Example: "cirstore tool stat -f ~/.cirstore/out.cf",
		RunE:    executeStat,
	}

	createFile, createSize string
	statFile               string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", fileDesc)
	createCmd.Flags().StringVarP(&createSize, "size", "s", "1M", "maximum data size, e.g. 512K or 5M")
	_ = createCmd.MarkFlagRequired("file")

	statCmd.Flags().StringVarP(&statFile, "file", "f", "", fileDesc)
	_ = statCmd.MarkFlagRequired("file")
}

func parseSize(s string) (int64, error) {
	size, err := bytefmt.ToBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(size), nil
}

func executeCreate(cmd *cobra.Command, _ []string) error {
	maxSize, err := parseSize(createSize)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	f, err := cirfile.Create(createFile, maxSize)
	if err != nil {
		return err
	}
	return f.Close()
}

// statOutput is what stat prints, in YAML.
type statOutput struct {
	Location   string `yaml:"location"`
	Version    int    `yaml:"version"`
	MaxSize    string `yaml:"max_size"`
	FileOffset int64  `yaml:"file_offset"`
	DataSize   int64  `yaml:"data_size"`
}

func executeStat(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	st, err := cirfile.StatFile(ctx, statFile)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(statOutput{
		Location:   st.Location,
		Version:    st.Version,
		MaxSize:    bytefmt.ByteSize(uint64(st.MaxSize)),
		FileOffset: st.FileOffset,
		DataSize:   st.DataSize,
	})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
