package cirfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// HomeVarName names the environment variable that overrides the
// application data directory.
const HomeVarName = "CIRSTORE_HOME"

const homeDirName = ".cirstore"

// name.cf or name.qualifier.cf, where no part may contain a period
var baseNameGlob = glob.MustCompile("{?*.cf,?*.?*.cf}", '.')

// PathPolicy lists the only two directory trees ring files may live in.
type PathPolicy struct {
	HomeDir string
	TempDir string
}

// DefaultHomeDir returns $CIRSTORE_HOME, falling back to ~/.cirstore.
func DefaultHomeDir() string {
	if dir := os.Getenv(HomeVarName); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = string(filepath.Separator)
	}
	return filepath.Join(home, homeDirName)
}

// DefaultPathPolicy allows the default home dir and the OS temp dir.
func DefaultPathPolicy() PathPolicy {
	return PathPolicy{HomeDir: DefaultHomeDir(), TempDir: os.TempDir()}
}

// Validate returns a *PathError if fileName is not an acceptable ring file
// path. It does not touch the filesystem.
func (p PathPolicy) Validate(fileName string) error {
	if fileName == "" {
		return &PathError{Path: fileName, Reason: "empty path"}
	}
	for _, part := range strings.Split(filepath.ToSlash(fileName), "/") {
		if part == ".." {
			return &PathError{Path: fileName, Reason: "parent directory references are not allowed"}
		}
	}
	dir, base := filepath.Split(fileName)
	if dir == "" {
		return &PathError{Path: fileName, Reason: "missing directory component"}
	}
	cleanDir := filepath.Clean(dir)
	if filepath.Dir(cleanDir) == cleanDir {
		return &PathError{Path: fileName, Reason: "must not be in the root directory"}
	}
	if !baseNameGlob.Match(base) {
		return &PathError{Path: fileName, Reason: "file name must look like name.cf or name.qualifier.cf"}
	}
	absPath, err := filepath.Abs(fileName)
	if err != nil {
		return &PathError{Path: fileName, Reason: "cannot get absolute path: " + err.Error()}
	}
	if within(p.HomeDir, absPath) || within(p.TempDir, absPath) {
		return nil
	}
	return &PathError{
		Path:   fileName,
		Reason: "must be in homedir[" + p.HomeDir + "] or tempdir[" + p.TempDir + "]",
	}
}

func within(root string, absPath string) bool {
	if root == "" {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
