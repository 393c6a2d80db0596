package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minsucho/passagetrace/internal/model"
	"github.com/minsucho/passagetrace/internal/pipeline"
)

var (
	poolSize    int
	resultsPath string
	errorsPath  string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <folder>",
	Short: "Crawl a folder of PDFs and resolve sentence provenance",
	Long: `Crawl discovers every PDF under the given folder (recursively), extracts
candidate English sentences, and resolves each sentence against the
configured search service in parallel.

The run always produces both artifacts: the merged results map and the
error log. Failures are enumerated in the error log rather than aborting
the run. Site selectors, timeouts, and delays come from the config file.

Example:
  passagetrace crawl ./worksheets
  passagetrace crawl ./worksheets --pool 6
  passagetrace crawl ./worksheets --results 2022_results.json --errors 2022_error_log.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntVar(&poolSize, "pool", 0, "number of parallel document workers (default: CPU count)")
	crawlCmd.Flags().StringVar(&resultsPath, "results", "", "output path for the results JSON")
	crawlCmd.Flags().StringVar(&errorsPath, "errors", "", "output path for the error log JSON")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	folder := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if poolSize > 0 {
		cfg.Crawl.PoolSize = poolSize
	}
	if resultsPath != "" {
		cfg.Output.ResultsPath = resultsPath
	}
	if errorsPath != "" {
		cfg.Output.ErrorsPath = errorsPath
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if cfg.Search.URL == "" {
		return fmt.Errorf("no search URL configured (set search.url in the config file or PASSAGETRACE_SEARCH_URL)")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Passagetrace Crawl\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input folder: %s\n", folder)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Crawl.PoolSize)
	fmt.Fprintf(os.Stderr, "  Driver:       %s\n", cfg.Search.Driver)
	fmt.Fprintf(os.Stderr, "  Results:      %s\n", cfg.Output.ResultsPath)
	fmt.Fprintf(os.Stderr, "  Error log:    %s\n", cfg.Output.ErrorsPath)
	fmt.Fprintf(os.Stderr, "\n")

	orchestrator, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("configure pipeline: %w", err)
	}

	results, errLog, stats, err := orchestrator.Run(context.Background(), folder)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	store := pipeline.NewResultStore(cfg.Output.ResultsPath, cfg.Output.ErrorsPath)
	if err := store.Save(results, errLog); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}

	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Crawl Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:  %d\n", stats.Documents)
	fmt.Fprintf(os.Stderr, "  Sentences:  %d\n", stats.Sentences)
	fmt.Fprintf(os.Stderr, "  Passages:   %d\n", stats.Passages)
	fmt.Fprintf(os.Stderr, "  Errors:     %d\n", stats.Errors)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// loadConfig merges defaults, the config file, and PASSAGETRACE_*
// environment variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
