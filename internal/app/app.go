package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/flowlens/internal/cache"
	"github.com/bobmcallan/flowlens/internal/clients/gemini"
	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/services/analysis"
	"github.com/bobmcallan/flowlens/internal/services/ingest"
	"github.com/bobmcallan/flowlens/internal/services/report"
	"github.com/bobmcallan/flowlens/internal/storage/surrealdb"
)

// App holds all initialized services, clients and storage.
// It is the shared core used by cmd/flowlens-server and cmd/flowlens-ingest.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	Cache           interfaces.Cache
	GeminiClient    interfaces.GeminiClient
	IngestService   interfaces.IngestService
	AnalysisService interfaces.AnalysisService
	ReportService   interfaces.ReportService
	StartupTime     time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FLOWLENS_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FLOWLENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "flowlens.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/flowlens.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize storage
	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Analysis-result cache: Redis when configured and reachable, in-process otherwise
	cacheClient := cache.New(logger, config)

	// Gemini is optional; without it reports carry no generated narrative.
	// Assigned only on success so the interface stays nil on failure.
	var geminiClient interfaces.GeminiClient
	if key := config.Clients.Gemini.APIKey; key != "" {
		opts := []gemini.ClientOption{gemini.WithLogger(logger)}
		if config.Clients.Gemini.Model != "" {
			opts = append(opts, gemini.WithModel(config.Clients.Gemini.Model))
		}
		client, err := gemini.NewClient(context.Background(), key, opts...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - report narratives will be unavailable")
	}

	// Initialize services
	ingestService := ingest.NewService(storageManager, cacheClient, logger)
	analysisService := analysis.NewService(storageManager, cacheClient, config, logger)
	reportService := report.NewService(analysisService, geminiClient, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		Cache:           cacheClient,
		GeminiClient:    geminiClient,
		IngestService:   ingestService,
		AnalysisService: analysisService,
		ReportService:   reportService,
		StartupTime:     startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, close clients, cache, storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.GeminiClient != nil {
		a.GeminiClient.Close()
		a.GeminiClient = nil
	}
	if a.Cache != nil {
		a.Cache.Close()
		a.Cache = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.AnalysisService, a.Storage, a.Logger)
	}()
}

// StartScheduler launches the background re-analysis loop when enabled.
func (a *App) StartScheduler() {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Analysis scheduler: disabled")
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startAnalysisScheduler(schedulerCtx, a.AnalysisService, a.Storage, a.Config, a.Logger)
}
