// Package ptystore keeps the terminal output of each command line in its own
// ring file, laid out as <home>/screens/<screenId>/<lineId>.ptyout.cf.
package ptystore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/termlog/cirstore/cirfile"
)

const (
	screensDirName = "screens"
	ptyOutSuffix   = ".ptyout.cf"
	dirPerm        = 0o700
)

// ErrInvalidID is returned when a screen or line id is not a UUID.
var ErrInvalidID = errors.New("ptystore: invalid id")

type Config struct {
	HomeDir        string
	TempDir        string
	DefaultMaxSize int64
	LockTimeout    time.Duration
}

// PtyDataUpdate describes bytes written to a line's output, ready to be sent
// to clients.
type PtyDataUpdate struct {
	ScreenId   string `json:"screenid" msgpack:"screenid"`
	LineId     string `json:"lineid" msgpack:"lineid"`
	PtyPos     int64  `json:"ptypos" msgpack:"ptypos"`
	PtyData64  string `json:"ptydata64" msgpack:"ptydata64"`
	PtyDataLen int64  `json:"ptydatalen" msgpack:"ptydatalen"`
}

// Publisher receives every successful append.
type Publisher interface {
	Publish(update *PtyDataUpdate)
}

type Store struct {
	cfg       Config
	opts      []cirfile.Option
	publisher Publisher

	mu         sync.Mutex
	screenDirs map[string]string
}

func New(cfg Config) (*Store, error) {
	if cfg.HomeDir == "" {
		return nil, errors.New("ptystore: home directory is not set")
	}
	if cfg.DefaultMaxSize <= 0 {
		return nil, errors.Errorf("ptystore: invalid default max size %d", cfg.DefaultMaxSize)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if err := os.MkdirAll(cfg.HomeDir, dirPerm); err != nil {
		return nil, errors.Wrap(err, "ptystore: creating home directory")
	}
	policy := cirfile.PathPolicy{HomeDir: cfg.HomeDir, TempDir: cfg.TempDir}
	return &Store{
		cfg:        cfg,
		opts:       []cirfile.Option{cirfile.WithPathPolicy(policy)},
		screenDirs: make(map[string]string),
	}, nil
}

// SetPublisher installs p to receive append updates. A nil p disables
// publishing.
func (s *Store) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

func (s *Store) getPublisher() Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publisher
}

func (s *Store) ScreensDir() string {
	return filepath.Join(s.cfg.HomeDir, screensDirName)
}

func validateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrapf(ErrInvalidID, "%s[%s]", kind, id)
	}
	return nil
}

// EnsureScreenDir returns the directory for screenId, creating it if needed.
func (s *Store) EnsureScreenDir(screenId string) (string, error) {
	if err := validateID("screenid", screenId); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir, ok := s.screenDirs[screenId]; ok {
		return dir, nil
	}
	dir := filepath.Join(s.ScreensDir(), screenId)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "ptystore: creating screen dir %s", dir)
	}
	s.screenDirs[screenId] = dir
	return dir, nil
}

// PtyOutFile returns the ring file path for a line, creating its screen
// directory.
func (s *Store) PtyOutFile(screenId string, lineId string) (string, error) {
	if err := validateID("lineid", lineId); err != nil {
		return "", err
	}
	dir, err := s.EnsureScreenDir(screenId)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, lineId+ptyOutSuffix), nil
}

func (s *Store) forgetScreenDir(screenId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.screenDirs, screenId)
}

// withTimeout bounds lock waits for callers that did not set a deadline.
// With no LockTimeout such callers never wait: a contended lock fails with
// cirfile.ErrWouldBlock.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	if s.cfg.LockTimeout <= 0 {
		return context.WithoutCancel(ctx), func() {}
	}
	return context.WithTimeout(ctx, s.cfg.LockTimeout)
}
