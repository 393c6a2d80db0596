package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minsucho/passagetrace/internal/verify"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <results.json>",
	Short: "Check a results file for missing passage numbers",
	Long: `Verify loads a results JSON produced by crawl and reports gaps in the
numeric second-level keys: for each matching top-level key it expects
every number from 1 up to the highest seen, and lists the ones that are
absent.

Top-level keys can be filtered with verify.require_keywords and
verify.exclude_keywords in the config file.

Example:
  passagetrace verify results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results, err := verify.Load(path)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	gaps := verify.Check(results, cfg.Verify)
	if len(gaps) == 0 {
		fmt.Fprintf(os.Stderr, "no gaps found in %s\n", path)
		return nil
	}

	for _, gap := range gaps {
		fmt.Printf("%s / %s: missing %s\n", gap.TopKey, gap.Lesson, strings.Join(gap.Missing, ", "))
	}
	fmt.Fprintf(os.Stderr, "\n%d gap(s) found\n", len(gaps))
	return nil
}
