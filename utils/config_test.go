package utils_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/utils"
	"github.com/termlog/cirstore/utils/log"
)

const sampleConfig = `
root_directory: /var/lib/cirstore
temp_directory: /scratch
listen_port: 6000
utilities_url: localhost:6001
log_level: debug
default_max_size: 1M
lock_timeout: 500ms
disk_usage_interval: 1m
`

func TestParseConfig(t *testing.T) {
	t.Setenv(cirfile.HomeVarName, "")
	defer log.SetLevel(log.INFO)

	c, err := utils.ParseConfig([]byte(sampleConfig))
	require.Nil(t, err)
	assert.Equal(t, "/var/lib/cirstore", c.RootDirectory)
	assert.Equal(t, "/scratch", c.TempDirectory)
	assert.Equal(t, ":6000", c.ListenPort)
	assert.Equal(t, "localhost:6001", c.UtilitiesURL)
	assert.Equal(t, log.DEBUG, c.LogLevel)
	assert.Equal(t, log.DEBUG, log.GetLevel())
	assert.Equal(t, int64(1024*1024), c.DefaultMaxSize)
	assert.Equal(t, 500*time.Millisecond, c.LockTimeout)
	assert.Equal(t, time.Minute, c.DiskUsageInterval)
	assert.Equal(t, cirfile.PathPolicy{HomeDir: "/var/lib/cirstore", TempDir: "/scratch"}, c.PathPolicy())
}

func TestParseConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(cirfile.HomeVarName, home)

	c, err := utils.ParseConfig([]byte(""))
	require.Nil(t, err)
	assert.Equal(t, home, c.RootDirectory)
	assert.Equal(t, ":5995", c.ListenPort)
	assert.Equal(t, int64(5*1024*1024), c.DefaultMaxSize)
	assert.Equal(t, 2*time.Second, c.LockTimeout)
	assert.Equal(t, 10*time.Minute, c.DiskUsageInterval)
}

func TestParseConfigEnvOverride(t *testing.T) {
	home := filepath.Join(t.TempDir(), "override")
	t.Setenv(cirfile.HomeVarName, home)

	c, err := utils.ParseConfig([]byte("root_directory: /ignored\n"))
	require.Nil(t, err)
	assert.Equal(t, home, c.RootDirectory)
}

func TestParseConfigErrors(t *testing.T) {
	t.Setenv(cirfile.HomeVarName, "")

	for _, data := range []string{
		"default_max_size: lots\n",
		"default_max_size: 0\n",
		"lock_timeout: soon\n",
		"disk_usage_interval: -1s\n",
		"root_directory: [a, b]\n",
	} {
		_, err := utils.ParseConfig([]byte(data))
		assert.NotNil(t, err, data)
	}
}
