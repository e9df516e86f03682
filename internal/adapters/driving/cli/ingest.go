package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/adapters/driving/watch"
	"github.com/custodia-labs/netassist/internal/core/domain"
)

var (
	ingestVendor     string
	ingestDocType    string
	ingestCollection string
	ingestDebounce   time.Duration
	ingestNoScan     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest vendor documentation",
	Long: `Ingest vendor documentation into the vector store.

Without a subcommand every configured source, file and data file is
ingested. Documents already recorded in the ingestion ledger are skipped.`,
	RunE: runIngestAll,
}

var ingestSourceCmd = &cobra.Command{
	Use:   "source <listing-url>",
	Short: "Ingest every document on a listing page",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestSource,
}

var ingestFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Ingest a JSON file of scraped records",
	Long: `Ingest a JSON file holding an array of records with title, content,
url, vendor and date fields. Records are routed by vendor unless
--collection names one collection for the whole file.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestFile,
}

var ingestURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Ingest a single web page",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestURL,
}

var ingestSitemapCmd = &cobra.Command{
	Use:   "sitemap <url-list> <output.json>",
	Short: "Scrape a list of URLs into a JSON data file",
	Long: `Fetch every URL listed (one per line) in url-list and write the
extracted pages to output.json, ready for 'netassist ingest file'.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngestSitemap,
}

var ingestWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest JSON files as they appear in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngestWatch,
}

func init() {
	ingestSourceCmd.Flags().StringVar(&ingestVendor, "vendor", "", "vendor the documents belong to (required)")
	ingestSourceCmd.Flags().StringVar(&ingestDocType, "type", string(domain.DocTypeReleaseNotes),
		"listing format: release_notes, config_guides, aruba_docs, posts or page")
	_ = ingestSourceCmd.MarkFlagRequired("vendor")

	ingestFileCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection key for every record")
	ingestURLCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection key (default: vendor from the host)")

	ingestWatchCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection key for every file")
	ingestWatchCmd.Flags().DurationVar(&ingestDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is ingested")
	ingestWatchCmd.Flags().BoolVar(&ingestNoScan, "no-scan", false, "ignore files already in the directory")

	ingestCmd.AddCommand(ingestSourceCmd)
	ingestCmd.AddCommand(ingestFileCmd)
	ingestCmd.AddCommand(ingestURLCmd)
	ingestCmd.AddCommand(ingestSitemapCmd)
	ingestCmd.AddCommand(ingestWatchCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestAll(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	cmd.Println("Ingesting configured sources...")
	report, err := ingestionService.IngestAll(cmd.Context())
	printIngestReport(cmd, report)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}

func runIngestSource(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	src := domain.WatchedSource{
		URL:     args[0],
		Vendor:  ingestVendor,
		DocType: domain.DocType(ingestDocType),
	}
	if !src.DocType.IsValid() {
		return fmt.Errorf("document type %q: %w", ingestDocType, domain.ErrUnsupportedType)
	}

	cmd.Printf("Ingesting %s into %s...\n", src.URL, src.CollectionKey())
	report, err := ingestionService.IngestSource(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("ingest source: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func runIngestFile(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	report, err := ingestionService.IngestJSONFile(cmd.Context(), args[0], ingestCollection)
	if err != nil {
		return fmt.Errorf("ingest file: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func runIngestURL(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	report, err := ingestionService.IngestURL(cmd.Context(), args[0], ingestCollection)
	if err != nil {
		return fmt.Errorf("ingest url: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func runIngestSitemap(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	n, err := ingestionService.ScrapeSitemap(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("scrape sitemap: %w", err)
	}
	cmd.Printf("Wrote %d pages to %s\n", n, args[1])
	return nil
}

func runIngestWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errNotConfigured("ingestion service")
	}

	dir := appConfig.Ingest.WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no directory given and ingest.watch_dir is unset: %w", domain.ErrInvalidInput)
	}

	w := watch.New(dir, ingestionService,
		watch.WithCollection(ingestCollection),
		watch.WithDebounce(ingestDebounce),
		watch.WithInitialScan(!ingestNoScan),
		watch.OnResult(func(r watch.Result) {
			if r.Err != nil {
				cmd.PrintErrf("%s: %v\n", r.Path, r.Err)
				return
			}
			cmd.Printf("%s: %d ingested, %d chunks\n", r.Path, r.Report.Ingested, r.Report.Chunks)
		}),
	)

	cmd.Printf("Watching %s for JSON files (Ctrl+C to stop)\n", dir)
	return w.Run(cmd.Context())
}

func printIngestReport(cmd *cobra.Command, r domain.IngestReport) {
	cmd.Printf("Discovered: %d\n", r.Discovered)
	cmd.Printf("Ingested:   %d\n", r.Ingested)
	cmd.Printf("Skipped:    %d\n", r.Skipped)
	cmd.Printf("Failed:     %d\n", r.Failed)
	cmd.Printf("Chunks:     %d\n", r.Chunks)
}
