package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlog/cirstore/metrics"
)

type mockMetricsSetter struct {
	mu    sync.Mutex
	value float64
}

func (m *mockMetricsSetter) Set(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = v
}

func (m *mockMetricsSetter) get() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func writeFile(t *testing.T, name string, size int) {
	t.Helper()

	require.Nil(t, os.MkdirAll(filepath.Dir(name), 0o700))
	require.Nil(t, os.WriteFile(name, make([]byte, size), 0o600))
}

func TestDiskUsage(t *testing.T) {
	rootDir := t.TempDir()
	writeFile(t, filepath.Join(rootDir, "screens", "a", "l1.ptyout.cf"), 300)
	writeFile(t, filepath.Join(rootDir, "screens", "b", "l2.ptyout.cf"), 500)
	writeFile(t, filepath.Join(rootDir, "screens", "b", "notes.txt"), 1000)
	writeFile(t, filepath.Join(rootDir, "screens", "b", "l3.cf.bak"), 1000)
	writeFile(t, filepath.Join(rootDir, "screens", "cf"), 1000)

	assert.Equal(t, int64(800), metrics.DiskUsage(rootDir))
	assert.Equal(t, int64(0), metrics.DiskUsage(filepath.Join(rootDir, "missing")))
}

func TestStartDiskUsageMonitor(t *testing.T) {
	rootDir := t.TempDir()
	writeFile(t, filepath.Join(rootDir, "x.cf"), 256)

	m := &mockMetricsSetter{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		metrics.StartDiskUsageMonitor(ctx, m, rootDir, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.get() == 256 }, time.Second, 5*time.Millisecond)
	writeFile(t, filepath.Join(rootDir, "y.cf"), 100)
	assert.Eventually(t, func() bool { return m.get() == 356 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
