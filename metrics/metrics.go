package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var namespace = "termlog"
var subsystem = "cirstore"

var (
	// StartupTime stores how long the startup took (in seconds)
	StartupTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "startup_seconds",
			Help:      "Seconds taken by the startup",
		},
	)

	// RPCTotalRequestDuration stores the processing time for every request
	RPCTotalRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rpc_total_request_duration_seconds",
		Help:      "RPC request processing time for every request",
	})

	// RPCTotalRequestsTotal stores the number of requests
	RPCTotalRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rpc_total_requests_total",
		Help:      "Number of RPC requests received including ones resulting in errors",
	})

	// RPCSuccessfulRequestsTotal stores the number of successful
	// requests partitioned by method
	RPCSuccessfulRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rpc_successful_requests_total",
		Help:      "Number of RPC successful requests partitioned by method",
	}, []string{"method"})

	// PtyBytesWrittenTotal counts bytes accepted into pty output files
	PtyBytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pty_bytes_written_total",
		Help:      "Bytes written to pty output ring files",
	})

	// PtyBytesReadTotal counts bytes returned from pty output files
	PtyBytesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pty_bytes_read_total",
		Help:      "Bytes read from pty output ring files",
	})

	// LockContentionTotal counts operations that gave up waiting for a file lock
	LockContentionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "lock_contention_total",
		Help:      "Ring file operations that failed to get the file lock, partitioned by operation",
	}, []string{"op"})

	// TotalDiskUsageBytes is the size of all ring files under the root directory
	TotalDiskUsageBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "total_disk_usage_bytes",
		Help:      "Total size of the ring files under the root directory",
	})
)
