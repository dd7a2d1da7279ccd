package ptystore

import (
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

var ringFileGlob = glob.MustCompile("*.cf")

type DiskSize struct {
	NumFiles   int    `json:"numfiles"`
	TotalSize  int64  `json:"totalsize"`
	ErrorCount int    `json:"errorcount"`
	Location   string `json:"location"`
}

func directorySize(dirName string) (DiskSize, error) {
	rtn := DiskSize{Location: dirName}
	entries, err := os.ReadDir(dirName)
	if err != nil {
		return rtn, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			rtn.ErrorCount++
			continue
		}
		if !ringFileGlob.Match(entry.Name()) {
			continue
		}
		finfo, err := entry.Info()
		if err != nil {
			rtn.ErrorCount++
			continue
		}
		rtn.NumFiles++
		rtn.TotalSize += finfo.Size()
	}
	return rtn, nil
}

func (s *Store) ScreenDiskSize(screenId string) (DiskSize, error) {
	screenDir, err := s.EnsureScreenDir(screenId)
	if err != nil {
		return DiskSize{}, err
	}
	return directorySize(screenDir)
}

// FullScreenDiskSize reports every screen directory, keyed by screen id.
// Entries that are not UUID named directories are skipped.
func (s *Store) FullScreenDiskSize() (map[string]DiskSize, error) {
	sdir := s.ScreensDir()
	entries, err := os.ReadDir(sdir)
	if os.IsNotExist(err) {
		return map[string]DiskSize{}, nil
	}
	if err != nil {
		return nil, err
	}
	rtn := make(map[string]DiskSize)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := uuid.Parse(name); err != nil {
			continue
		}
		diskSize, err := directorySize(filepath.Join(sdir, name))
		if err != nil {
			continue
		}
		rtn[name] = diskSize
	}
	return rtn, nil
}
