// Package cli implements the netassist command line.
//
// Commands are package-level cobra commands registered from init. Services
// are package variables populated by the bootstrap hook main installs; tests
// assign them directly and leave the hook nil.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
	"github.com/custodia-labs/netassist/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

// Annotation keys on commands.
const (
	// annotationNoServices skips bootstrapping entirely.
	annotationNoServices = "netassist/no-services"

	// annotationSettingsOnly bootstraps configuration without AI or storage.
	annotationSettingsOnly = "netassist/settings-only"
)

// Options are the global flags handed to the bootstrap hook.
type Options struct {
	ConfigDir    string
	DataDir      string
	Ephemeral    bool
	Verbose      bool
	SettingsOnly bool
}

// Services are the wired application services.
type Services struct {
	Assistant   driving.Assistant
	Analyzer    driving.QueryAnalyzer
	Collections driving.CollectionService
	Ingestion   driving.IngestionService
	Updates     driving.UpdateService
	Scheduler   driving.Scheduler
	Settings    driving.SettingsService
	Web         driven.WebSearcher
	Metrics     *metrics.Metrics

	// Config is the effective configuration the services were built from.
	Config domain.Settings

	// Close releases stores and clients. May be nil.
	Close func()
}

// BootstrapFunc builds services for a command invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var bootstrap BootstrapFunc

// Services used by commands.
var (
	assistantService  driving.Assistant
	queryAnalyzer     driving.QueryAnalyzer
	collectionService driving.CollectionService
	ingestionService  driving.IngestionService
	updateService     driving.UpdateService
	schedulerService  driving.Scheduler
	settingsService   driving.SettingsService
	webSearcher       driven.WebSearcher
	appMetrics        *metrics.Metrics
	appConfig         = domain.DefaultSettings()
	closeServices     func()
)

var globalOpts Options

var rootCmd = &cobra.Command{
	Use:   "netassist",
	Short: "Answer network equipment integration questions from vendor documentation",
	Long: `netassist answers questions about integrating, configuring and
troubleshooting network equipment from multiple vendors.

It ingests vendor documentation into a local vector store, routes each
question to the relevant collections, falls back to web search when local
material is thin, and generates an answer with an LLM.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { teardown() },
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.netassist)")
	pf.StringVar(&globalOpts.DataDir, "data-dir", "", "data directory (overrides configuration)")
	pf.BoolVar(&globalOpts.Ephemeral, "ephemeral", false, "keep everything in memory for this run")
	pf.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "log pipeline detail to stderr")
}

// SetBootstrap installs the hook that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	if bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	opts := globalOpts
	opts.SettingsOnly = cmd.Annotations[annotationSettingsOnly] == "true"

	svc, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	useServices(svc)
	return nil
}

// useServices assigns wired services to the command variables.
func useServices(svc *Services) {
	if svc == nil {
		return
	}
	assistantService = svc.Assistant
	queryAnalyzer = svc.Analyzer
	collectionService = svc.Collections
	ingestionService = svc.Ingestion
	updateService = svc.Updates
	schedulerService = svc.Scheduler
	settingsService = svc.Settings
	webSearcher = svc.Web
	appMetrics = svc.Metrics
	appConfig = svc.Config
	closeServices = svc.Close
}

func teardown() {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
	logger.Sync()
}

// errNotConfigured reports a service missing for the command.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s not configured", name)
}

// errCanceled is returned when the user declines a prompt.
var errCanceled = errors.New("canceled")
