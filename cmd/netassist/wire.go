package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/netassist/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/netassist/internal/adapters/driven/config/file"
	storagefile "github.com/custodia-labs/netassist/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/netassist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/netassist/internal/adapters/driven/websearch/duckduckgo"
	"github.com/custodia-labs/netassist/internal/adapters/driving/cli"
	"github.com/custodia-labs/netassist/internal/connectors/vendordocs"
	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/services"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
	"github.com/custodia-labs/netassist/internal/postprocessors"
)

// stores groups the persistence adapters for one run.
type stores struct {
	vectors driven.VectorStore
	state   driven.UpdateStateStore
	tasks   driven.SchedulerStore
	close   func()
}

// bootstrap loads configuration and wires every service for a command.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config directory: %w", err)
	}
	settings, err := configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.DataDir != "" {
		settings.DataDir = opts.DataDir
	}
	if settings.DataDir == "" {
		settings.DataDir = filepath.Join(configStore.Dir(), "data")
	}

	if err := logger.Init(logger.Options{Level: settings.Log.Level, Format: settings.Log.Format}); err != nil {
		return nil, err
	}
	logger.SetVerbose(opts.Verbose)

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService, Config: settings}, nil
	}

	st, err := openStores(settings.DataDir, opts.Ephemeral)
	if err != nil {
		return nil, err
	}
	closers := []func(){st.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	ledgerDir := settings.DataDir
	if opts.Ephemeral {
		tmp, err := os.MkdirTemp("", "netassist-ledger-")
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
		closers = append(closers, func() { _ = os.RemoveAll(tmp) })
		ledgerDir = tmp
	}
	ledger, err := storagefile.NewLedger(ledgerDir)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("open ingestion ledger: %w", err)
	}

	aiServices, err := ai.Initialise(settings, false)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, aiServices.Close)
	for _, w := range aiServices.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(configStore.Dir(), "prompts"))
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	pipeline, err := postprocessors.NewDefaultRegistry().Pipeline(domain.PipelineConfigFor(settings.Chunking))
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	scraper, err := vendordocs.New(settings.Scrape)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("create scraper: %w", err)
	}

	var web driven.WebSearcher
	if settings.WebSearch.Enabled {
		web = duckduckgo.New(settings.WebSearch, duckduckgo.WithUserAgent(settings.Scrape.UserAgent))
	}

	mt := metrics.New()

	collections := services.NewCollectionManager(
		st.vectors,
		aiServices.EmbeddingService,
		domain.NewRoutingPolicy(settings.Retrieval.Layout),
		services.WithLedger(ledger),
		services.WithCollectionMetrics(mt),
	)
	if err := collections.InitializeCollections(ctx); err != nil {
		logger.Warn("bootstrap: %v", err)
	}

	analyzer := services.NewRegexAnalyzer()
	assistant := services.NewAssistantService(
		services.AssistantConfig{
			ResultsPerQuery:      settings.Retrieval.ResultsPerQuery,
			SufficiencyThreshold: settings.Retrieval.SufficiencyThreshold,
			WebSearchEnabled:     settings.WebSearch.Enabled,
			MaxTokens:            settings.LLM.MaxTokens,
			Temperature:          settings.LLM.Temperature,
		},
		analyzer,
		collections,
		aiServices.LLMService,
		prompts,
		web,
		services.NewTopologyService(aiServices.LLMService, prompts),
		mt,
	)

	ingestion := services.NewIngestionService(
		scraper,
		services.NewDocumentProcessor(pipeline),
		collections,
		ledger,
		settings.Updates.Sources,
		settings.Ingest.Files,
		mt,
	)
	updates := services.NewUpdateChecker(scraper, st.state, ingestion, settings.Updates.Sources, mt)
	scheduler := services.NewScheduler(services.SchedulerConfig{
		DefaultInterval: settings.Updates.Interval.Std(),
		StopTimeout:     settings.Updates.StopTimeout.Std(),
		HistoryLimit:    settings.Updates.HistoryLimit,
	}, updates, st.tasks)

	return &cli.Services{
		Assistant:   assistant,
		Analyzer:    analyzer,
		Collections: collections,
		Ingestion:   ingestion,
		Updates:     updates,
		Scheduler:   scheduler,
		Settings:    settingsService,
		Web:         web,
		Metrics:     mt,
		Config:      settings,
		Close:       closeAll,
	}, nil
}

// openStores opens SQLite under dataDir, or in-memory stores when ephemeral.
func openStores(dataDir string, ephemeral bool) (*stores, error) {
	if ephemeral {
		return &stores{
			vectors: memory.NewVectorStore(),
			state:   memory.NewUpdateStateStore(),
			tasks:   memory.NewSchedulerStore(),
			close:   func() {},
		}, nil
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &stores{
		vectors: db.VectorStore(),
		state:   db.UpdateStateStore(),
		tasks:   db.SchedulerStore(),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database: %v", err)
			}
		},
	}, nil
}
