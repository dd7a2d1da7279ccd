package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/utils/log"
)

const (
	defaultListenPort        = "5995"
	defaultMaxSize           = 5 * bytefmt.MEGABYTE
	defaultLockTimeout       = 2 * time.Second
	defaultDiskUsageInterval = 10 * time.Minute
)

// CirConfig is the server configuration read from cirstore.yml.
type CirConfig struct {
	RootDirectory     string
	TempDirectory     string
	ListenPort        string
	UtilitiesURL      string
	LogLevel          log.Level
	DefaultMaxSize    int64
	LockTimeout       time.Duration
	DiskUsageInterval time.Duration
	StartTime         time.Time
}

// DefaultConfig is what an empty config file parses to.
func DefaultConfig() *CirConfig {
	return &CirConfig{
		RootDirectory:     cirfile.DefaultHomeDir(),
		TempDirectory:     os.TempDir(),
		ListenPort:        ":" + defaultListenPort,
		LogLevel:          log.INFO,
		DefaultMaxSize:    defaultMaxSize,
		LockTimeout:       defaultLockTimeout,
		DiskUsageInterval: defaultDiskUsageInterval,
	}
}

// ParseConfig parses a YAML config and applies its log level.
func ParseConfig(data []byte) (*CirConfig, error) {
	c := DefaultConfig()
	if err := c.Parse(data); err != nil {
		return nil, err
	}
	log.SetLevel(c.LogLevel)
	return c, nil
}

// PathPolicy returns the directories ring files are allowed in.
func (c *CirConfig) PathPolicy() cirfile.PathPolicy {
	return cirfile.PathPolicy{HomeDir: c.RootDirectory, TempDir: c.TempDirectory}
}

func (c *CirConfig) Parse(data []byte) error {
	var aux struct {
		RootDirectory     string `yaml:"root_directory"`
		TempDirectory     string `yaml:"temp_directory"`
		ListenPort        string `yaml:"listen_port"`
		UtilitiesURL      string `yaml:"utilities_url"`
		LogLevel          string `yaml:"log_level"`
		DefaultMaxSize    string `yaml:"default_max_size"`
		LockTimeout       string `yaml:"lock_timeout"`
		DiskUsageInterval string `yaml:"disk_usage_interval"`
	}

	if err := yaml.Unmarshal(data, &aux); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}

	if dir := os.Getenv(cirfile.HomeVarName); dir != "" {
		aux.RootDirectory = dir
	}
	if aux.RootDirectory != "" {
		c.RootDirectory = expandHome(aux.RootDirectory)
	}
	if aux.TempDirectory != "" {
		c.TempDirectory = expandHome(aux.TempDirectory)
	}
	if c.RootDirectory == "" {
		return errors.New("invalid root directory")
	}

	if aux.ListenPort != "" {
		c.ListenPort = fmt.Sprintf(":%v", strings.TrimPrefix(aux.ListenPort, ":"))
	}
	c.UtilitiesURL = aux.UtilitiesURL

	if aux.LogLevel != "" {
		c.LogLevel = log.ParseLevel(aux.LogLevel)
	}

	if aux.DefaultMaxSize != "" {
		size, err := bytefmt.ToBytes(aux.DefaultMaxSize)
		if err != nil {
			return errors.Wrapf(err, "invalid default_max_size %q", aux.DefaultMaxSize)
		}
		if size == 0 {
			return errors.Errorf("invalid default_max_size %q", aux.DefaultMaxSize)
		}
		c.DefaultMaxSize = int64(size)
	}

	if aux.LockTimeout != "" {
		d, err := time.ParseDuration(aux.LockTimeout)
		if err != nil {
			return errors.Wrapf(err, "invalid lock_timeout %q", aux.LockTimeout)
		}
		c.LockTimeout = d
	}

	if aux.DiskUsageInterval != "" {
		d, err := time.ParseDuration(aux.DiskUsageInterval)
		if err != nil || d <= 0 {
			return errors.Errorf("invalid disk_usage_interval %q", aux.DiskUsageInterval)
		}
		c.DiskUsageInterval = d
	}

	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn("cannot expand %s: %v", p, err)
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
