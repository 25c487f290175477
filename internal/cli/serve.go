package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentx-labs/copybridge/internal/bridge"
	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/agentx-labs/copybridge/internal/logfields"
	"github.com/agentx-labs/copybridge/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveWorkers     int
	serveQueue       int
	serveMetricsAddr string
	serveWatchConfig bool
)

func init() {
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Number of invocations run concurrently (default from config)")
	serveCmd.Flags().IntVar(&serveQueue, "queue", 0, "Pending invocations accepted before reporting busy (default from config)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	serveCmd.Flags().BoolVar(&serveWatchConfig, "watch-config", false, "Reload the log level when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command bridge over stdin/stdout",
	Long: `Read one JSON request per line from stdin and write one JSON response per
line to stdout as each invocation completes. Responses carry the request id and
may arrive out of order. Logs go to stderr.

Request:  {"id":"1","command":"copy_directory","args":{"source":"/a","destination":"/b"}}
Response: {"id":"1","ok":true}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers, queue, addr := settings.Workers, settings.QueueSize, settings.MetricsAddr
	if cmd.Flags().Changed("workers") {
		workers = serveWorkers
	}
	if cmd.Flags().Changed("queue") {
		queue = serveQueue
	}
	if cmd.Flags().Changed("metrics-addr") {
		addr = serveMetricsAddr
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var srv *http.Server
	if addr != "" {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewPrometheusRecorder(promReg)

		var err error
		srv, err = startMetricsServer(addr, promReg)
		if err != nil {
			return err
		}
	}

	reg, err := newRegistry(settings, rec)
	if err != nil {
		return err
	}

	if serveWatchConfig {
		config.Watch(func(e fsnotify.Event, s config.Settings, err error) {
			log := logger.WithField(logfields.KeyConfigFile, e.Name)
			if err != nil {
				log.WithFields(logfields.Error(err)).Warn("ignoring invalid configuration change")
				return
			}
			level, _ := logrus.ParseLevel(s.LogLevel)
			logger.SetLevel(level)
			log.WithField("level", level.String()).Info("configuration reloaded")
		})
	}

	d := bridge.NewDispatcher(reg, bridge.DispatcherOptions{
		Workers:   workers,
		QueueSize: queue,
		Logger:    logger,
		Recorder:  rec,
	})
	logger.WithField(logfields.KeyWorkers, workers).Info("bridge serving on stdin/stdout")

	serveErr := bridge.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), d)
	d.Close()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithFields(logfields.Error(err)).Warn("metrics server shutdown")
		}
	}

	logger.Info("bridge stopped")
	return serveErr
}

func startMetricsServer(addr string, reg *prometheus.Registry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logfields.Error(err)).Error("metrics server failed")
		}
	}()
	logger.WithField("addr", ln.Addr().String()).Info("serving metrics")
	return srv, nil
}
