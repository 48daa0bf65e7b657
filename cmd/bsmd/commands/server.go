package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	//nolint:gosec // pprof is opt-in via --pprof-enabled
	_ "net/http/pprof"

	"github.com/spf13/cobra"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/apiserver"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/config"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/demo"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/ingest"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/lifecycle"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/tracing"
)

var (
	dataDir               string
	apiPort               int
	analyticsConfigPath   string
	maxConcurrentRequests int
	demoData              bool
	cacheEnabled          bool
	cacheMaxEntries       int
	cacheTTLSeconds       int
	pprofEnabled          bool
	pprofPort             int
	tracingEnabled        bool
	tracingEndpoint       string
	tracingTLSCAPath      string
	tracingTLSInsecure    bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bsmd API server",
	Long: `Start the bsmd server: load the change and incident exports, build the
hypergraph, and serve analysis endpoints over HTTP.`,
	Run: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory containing changes.json and incidents.json")
	serverCmd.Flags().IntVar(&apiPort, "api-port", 8080, "Port the API server listens on")
	serverCmd.Flags().StringVar(&analyticsConfigPath, "analytics-config", "",
		"Path to the YAML file with analytics thresholds. Watched for changes; empty uses built-in defaults.")
	serverCmd.Flags().IntVar(&maxConcurrentRequests, "max-concurrent-requests", 16, "Maximum number of concurrent analysis requests")
	serverCmd.Flags().BoolVar(&demoData, "demo", false, "Serve the built-in demo dataset instead of reading --data-dir")
	serverCmd.Flags().BoolVar(&cacheEnabled, "cache-enabled", true, "Enable analysis response caching")
	serverCmd.Flags().IntVar(&cacheMaxEntries, "cache-max-entries", 128, "Maximum number of cached analysis responses")
	serverCmd.Flags().IntVar(&cacheTTLSeconds, "cache-ttl-seconds", 60, "Lifetime of a cached analysis response in seconds")
	serverCmd.Flags().BoolVar(&pprofEnabled, "pprof-enabled", false, "Enable pprof profiling server")
	serverCmd.Flags().IntVar(&pprofPort, "pprof-port", 9999, "Port the pprof server listens on")
	serverCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry tracing")
	serverCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", "", "OTLP gRPC endpoint for traces (e.g., otel-collector:4317)")
	serverCmd.Flags().StringVar(&tracingTLSCAPath, "tracing-tls-ca", "", "Path to CA certificate for TLS verification (optional)")
	serverCmd.Flags().BoolVar(&tracingTLSInsecure, "tracing-tls-insecure", false, "Skip TLS certificate verification (insecure, use only for testing)")
}

// watcherComponent adapts the analytics config watcher to the lifecycle
// manager.
type watcherComponent struct {
	watcher *config.AnalyticsWatcher
}

func (w *watcherComponent) Start(ctx context.Context) error { return w.watcher.Start(ctx) }
func (w *watcherComponent) Stop(ctx context.Context) error  { return w.watcher.Stop() }
func (w *watcherComponent) Name() string                    { return "Analytics Config Watcher" }

func runServer(cmd *cobra.Command, args []string) {
	cfg := &config.Config{
		DataDir:               dataDir,
		APIPort:               apiPort,
		LogLevel:              "info",
		AnalyticsConfigPath:   analyticsConfigPath,
		MaxConcurrentRequests: maxConcurrentRequests,
		CacheEnabled:          cacheEnabled,
		CacheMaxEntries:       cacheMaxEntries,
		CacheTTLSeconds:       cacheTTLSeconds,
		TracingEnabled:        tracingEnabled,
		TracingEndpoint:       tracingEndpoint,
		TracingTLSCAPath:      tracingTLSCAPath,
	}
	if err := cfg.Validate(); err != nil {
		HandleError(err, "Configuration error")
	}

	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.GetLogger("server")

	logger.Info("starting bsmd v%s", Version)

	manager := lifecycle.NewManager()

	tracingProvider, err := tracing.NewProvider(tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		TLSCAPath:   cfg.TracingTLSCAPath,
		TLSInsecure: tracingTLSInsecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracing (continuing without): %v", err)
		tracingProvider = nil
	}
	if tracingProvider != nil {
		if err := manager.Register(tracingProvider); err != nil {
			HandleError(err, "Tracing registration error")
		}
	}

	if pprofEnabled {
		go func() {
			pprofAddr := fmt.Sprintf(":%d", pprofPort)
			logger.Info("starting pprof server on %s", pprofAddr)
			if err := http.ListenAndServe(pprofAddr, nil); err != nil { //nolint:gosec // debug server
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	// Resolve analytics options: file overrides on top of defaults.
	analyticsOpts := analytics.DefaultOptions()
	if cfg.AnalyticsConfigPath != "" {
		file, err := config.LoadAnalyticsFile(cfg.AnalyticsConfigPath)
		if err != nil {
			HandleError(err, "Analytics config error")
		}
		analyticsOpts = file.Options()
	}

	serverOpts := apiserver.Options{
		Port:                  cfg.APIPort,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		Analytics:             analyticsOpts,
		Cache: apiserver.AnalysisCacheConfig{
			Enabled:    cfg.CacheEnabled,
			MaxEntries: cfg.CacheMaxEntries,
			TTL:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
		},
	}
	if tracingProvider != nil {
		serverOpts.TracingProvider = tracingProvider
	}

	apiComponent, err := apiserver.New(serverOpts)
	if err != nil {
		HandleError(err, "API server initialization error")
	}

	// Load the dataset before serving so the readiness probe flips as soon
	// as the listener is up.
	if demoData {
		changes, incidents := demo.GetDemoDataset(time.Now().AddDate(0, 0, -60))
		apiComponent.SetDataset(changes, incidents)
		logger.Info("demo dataset loaded: %d change records, %d incidents", len(changes), len(incidents))
	} else {
		ds, err := ingest.LoadDataset(cfg.DataDir)
		if err != nil {
			HandleError(err, "Dataset load error")
		}
		apiComponent.SetDataset(ds.Changes, ds.Incidents)
	}

	if tracingProvider != nil {
		if err := manager.Register(apiComponent, tracingProvider); err != nil {
			HandleError(err, "API server registration error")
		}
	} else {
		if err := manager.Register(apiComponent); err != nil {
			HandleError(err, "API server registration error")
		}
	}

	// Hot-reload analytics thresholds when the config file changes.
	if cfg.AnalyticsConfigPath != "" {
		analyticsWatcher, err := config.NewAnalyticsWatcher(config.AnalyticsWatcherConfig{
			FilePath: cfg.AnalyticsConfigPath,
		}, func(file *config.AnalyticsFile) error {
			apiComponent.UpdateAnalytics(file.Options())
			return nil
		})
		if err != nil {
			HandleError(err, "Analytics watcher initialization error")
		}
		if err := manager.Register(&watcherComponent{watcher: analyticsWatcher}, apiComponent); err != nil {
			HandleError(err, "Analytics watcher registration error")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := manager.Start(ctx); err != nil {
		HandleError(err, "Startup error")
	}

	logger.Info("bsmd started, listening on port %d", cfg.APIPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("shutdown signal received, gracefully shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Error("error during shutdown: %v", err)
	}

	logger.Info("shutdown complete")
}
