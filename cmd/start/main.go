package start

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/termlog/cirstore/frontend"
	"github.com/termlog/cirstore/frontend/stream"
	"github.com/termlog/cirstore/internal/di"
	"github.com/termlog/cirstore/metrics"
	"github.com/termlog/cirstore/utils"
	"github.com/termlog/cirstore/utils/log"
)

const (
	usage                 = "start"
	short                 = "Start a cirstore server"
	long                  = "This command starts a cirstore server serving pty output files over JSON-RPC and websocket"
	example               = "cirstore start --config <path>"
	defaultConfigFilePath = "./cirstore.yml"
	configDesc            = "set the path for the cirstore YAML configuration file"

	shutdownTimeout = 5 * time.Second
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"boot", "up"},
		Example:    example,
		RunE:       executeStart,
	}
	// configFilePath set flag for a path to the config file.
	configFilePath string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	Cmd.Flags().StringVarP(&configFilePath, "config", "c", defaultConfigFilePath, configDesc)
}

// executeStart implements the start command.
func executeStart(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Attempt to read config file.
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to read configuration file error: %w", err)
	}

	// Don't output command usage if args(=only the filepath to cirstore.yml at the moment) are correct
	cmd.SilenceUsage = true

	log.Info("using %v for configuration", configFilePath)

	config, err := utils.ParseConfig(data)
	if err != nil {
		return fmt.Errorf("failed to parse configuration file error: %w", err)
	}
	config.StartTime = time.Now()

	c := di.NewContainer(config)

	log.Info("initializing cirstore...")
	start := time.Now()

	root := c.GetAbsRootDir()
	if root == "" {
		return fmt.Errorf("failed to prepare root directory %s", config.RootDirectory)
	}
	go metrics.StartDiskUsageMonitor(ctx, metrics.TotalDiskUsageBytes, root, config.DiskUsageInterval)

	mux := http.NewServeMux()

	log.Info("launching rpc data server...")
	mux.Handle("/rpc", c.GetHTTPServer())

	log.Info("initializing websocket...")
	stream.Initialize()
	c.GetPtyStore().SetPublisher(stream.Publisher{})
	mux.HandleFunc("/ws", stream.Handler)

	log.Info("launching prometheus metrics server...")
	mux.Handle("/metrics", promhttp.Handler())

	startupTime := time.Since(start)
	metrics.StartupTime.Set(startupTime.Seconds())
	log.Info("startup time: %s", startupTime)

	if config.UtilitiesURL != "" {
		log.Info("launching utility service...")
		uah := frontend.NewUtilityAPIHandlers(config.StartTime)
		go func() {
			if err2 := http.ListenAndServe(config.UtilitiesURL, uah.Mux()); err2 != nil {
				log.Error("utility API handle error: %v", err2)
			}
		}()
	}

	srv := &http.Server{
		Addr:              config.ListenPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Spawn a goroutine and listen for a signal.
	const defaultSignalChanLen = 10
	signalChan := make(chan os.Signal, defaultSignalChanLen)
	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 request")
				if err2 := pprof.Lookup("goroutine").WriteTo(os.Stdout, 1); err2 != nil {
					log.Error("failed to write goroutine pprof: %v", err2)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info("initiating graceful shutdown due to '%v' request", s)
				atomic.StoreUint32(&frontend.Ready, 0)
				cancel()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				if err2 := srv.Shutdown(shutdownCtx); err2 != nil {
					log.Error("failed to shutdown server: %v", err2)
				}
				shutdownCancel()
				return
			}
		}
	}()
	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	log.Info("enabling data access...")
	atomic.StoreUint32(&frontend.Ready, 1)

	log.Info("launching tcp listener on %s...", config.ListenPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server - error: %w", err)
	}
	log.Info("exiting...")
	return nil
}
