package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/minsucho/passagetrace/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "passagetrace",
	Short: "Passagetrace - textbook passage provenance crawler",
	Long: `Passagetrace ingests scanned worksheet PDFs, extracts candidate English
sentences, and resolves each sentence against a full-text search service to
recover structured provenance: textbook edition, lesson, passage number, and
the canonical passage text.

The output is a three-level JSON map (edition → lesson → passage number →
passage text) plus a parallel error log, ready for database ingestion.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("passagetrace v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.passagetrace/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.passagetrace")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PASSAGETRACE_*
	viper.SetEnvPrefix("PASSAGETRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	registerDefaults()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults seeds viper with every key of the built-in defaults.
// AutomaticEnv only resolves keys viper already knows about during
// Unmarshal, so without this a key set purely through the environment
// (no config file entry) would never reach the decoded Config.
func registerDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	defaults := viper.New()
	defaults.SetConfigType("yaml")
	if err := defaults.ReadConfig(bytes.NewReader(data)); err != nil {
		return
	}
	for _, key := range defaults.AllKeys() {
		viper.SetDefault(key, defaults.Get(key))
	}
}
