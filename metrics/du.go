package metrics

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"

	"github.com/termlog/cirstore/utils/log"
)

var ringFileGlob = glob.MustCompile("*.cf")

// Setter is an interface for prometheus metrics to improve unit-testability.
type Setter interface {
	Set(m float64)
}

// StartDiskUsageMonitor measures the ring files under rootDir at each interval
// and sets the total as a prometheus metric. It returns when ctx is done.
func StartDiskUsageMonitor(ctx context.Context, s Setter, rootDir string, interval time.Duration) {
	s.Set(float64(DiskUsage(rootDir)))

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Set(float64(DiskUsage(rootDir)))
		}
	}
}

// DiskUsage sums the sizes of the *.cf files under path. A missing path
// counts as zero.
func DiskUsage(path string) int64 {
	var totalSize int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ringFileGlob.Match(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// removed while walking
			return nil
		}
		totalSize += info.Size()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("get the disk usage of the directory %s for monitoring: %v", path, err)
	}
	return totalSize
}
