package integrity

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/cmd/tool/lockflag"
	"github.com/termlog/cirstore/utils/log"
	"github.com/termlog/cirstore/utils/pool"
)

const (
	usage   = "integrity"
	short   = "Check the headers of every ring file under a directory"
	long    = "This command loads the header of every ring file under a directory and reports the ones that needed self-healing or could not be read"
	example = "cirstore tool integrity --dir <path> --fix --parallel"

	// Flag descriptions.
	rootDirPathDesc = "set filesystem path of the directory containing the files to evaluate"
	parallelDesc    = "run evaluation in parallel, default is false"
	fixHeadersDesc  = "write healed headers back to disk, default is false"

	maxParallel = 8
)

// status of one file
const (
	statusOK      = "ok"
	statusHealed  = "healed"
	statusFixed   = "fixed"
	statusCorrupt = "corrupt"
)

var (
	// Available flags.
	rootDirPath          string
	parallel, fixHeaders bool

	// Cmd is the integrity command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Aliases: []string{"ic", "integritycheck"},
		Example: example,
		RunE:    executeIntegrity,
	}

	ringFileGlob = glob.MustCompile("*.cf")
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	Cmd.Flags().StringVarP(&rootDirPath, "dir", "d", "", rootDirPathDesc)
	_ = Cmd.MarkFlagRequired("dir")
	Cmd.Flags().BoolVar(&parallel, "parallel", false, parallelDesc)
	Cmd.Flags().BoolVar(&fixHeaders, "fix", false, fixHeadersDesc)
}

type result struct {
	path   string
	status string
	err    error
}

func executeIntegrity(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	root, err := filepath.Abs(filepath.Clean(rootDirPath))
	if err != nil {
		return err
	}
	finfo, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	if !finfo.IsDir() {
		return fmt.Errorf("root directory: %s is not a directory", root)
	}

	files, err := findRingFiles(root)
	if err != nil {
		return err
	}
	if parallel {
		log.Info("Running in parallel")
	}
	policy := cirfile.PathPolicy{HomeDir: root}

	var (
		mu      sync.Mutex
		results = make(map[string]result, len(files))
	)
	workers := 1
	if parallel {
		workers = maxParallel
	}
	pool.NewPool(workers, func(name string) {
		r := checkFile(cmd, name, policy)
		mu.Lock()
		results[name] = r
		mu.Unlock()
	}).Run(files)

	out := cmd.OutOrStdout()
	var numCorrupt int
	for _, name := range files {
		r := results[name]
		rel, _ := filepath.Rel(root, r.path)
		if r.err != nil {
			numCorrupt++
			fmt.Fprintf(out, "%-8s %s: %v\n", r.status, rel, r.err)
			continue
		}
		fmt.Fprintf(out, "%-8s %s\n", r.status, rel)
	}
	if numCorrupt > 0 {
		return fmt.Errorf("%d of %d ring files could not be read", numCorrupt, len(files))
	}
	return nil
}

func findRingFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && ringFileGlob.Match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func checkFile(cmd *cobra.Command, name string, policy cirfile.PathPolicy) result {
	ctx, cancel := lockflag.Context(cmd)
	defer cancel()

	f, err := cirfile.Open(name, cirfile.WithPathPolicy(policy))
	if err != nil {
		return result{path: name, status: statusCorrupt, err: err}
	}
	defer f.Close()

	healed, err := f.Check(ctx)
	switch {
	case err != nil:
		return result{path: name, status: statusCorrupt, err: err}
	case !healed:
		return result{path: name, status: statusOK}
	case !fixHeaders:
		return result{path: name, status: statusHealed}
	}
	if _, err := f.Repair(ctx); err != nil {
		return result{path: name, status: statusCorrupt, err: err}
	}
	log.Info("fixed header of %s", name)
	return result{path: name, status: statusFixed}
}
