package model

import (
	"runtime"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Verify  VerifyConfig  `yaml:"verify" mapstructure:"verify"`
}

// SearchConfig describes the remote search UI and how to drive it.
type SearchConfig struct {
	URL    string `yaml:"url" mapstructure:"url"`
	Driver string `yaml:"driver" mapstructure:"driver"` // "chrome" or "http"

	// CSS selectors for the chrome driver.
	ReadySelector  string `yaml:"ready_selector" mapstructure:"ready_selector"`
	InputSelector  string `yaml:"input_selector" mapstructure:"input_selector"`
	SubmitSelector string `yaml:"submit_selector" mapstructure:"submit_selector"`

	// Query parameter name for the http driver.
	QueryParam string `yaml:"query_param" mapstructure:"query_param"`

	// Result-page structure for the shared parser.
	EchoClass        string `yaml:"echo_class" mapstructure:"echo_class"`
	BlockClass       string `yaml:"block_class" mapstructure:"block_class"`
	ProvenanceHeader string `yaml:"provenance_header" mapstructure:"provenance_header"`
	PassageHeader    string `yaml:"passage_header" mapstructure:"passage_header"`

	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	ReadyTimeout time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	Cooldown     time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`

	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ExtractConfig tunes sentence extraction.
type ExtractConfig struct {
	// StripPattern matches annotation-script runs removed from page text
	// before splitting (the script used for annotations, not the target
	// language).
	StripPattern string `yaml:"strip_pattern" mapstructure:"strip_pattern"`
	MinSpaces    int    `yaml:"min_spaces" mapstructure:"min_spaces"`
}

// CrawlConfig controls document discovery and fan-out.
type CrawlConfig struct {
	Extension string `yaml:"extension" mapstructure:"extension"`
	PoolSize  int    `yaml:"pool_size" mapstructure:"pool_size"`
}

// OutputConfig names the two run artifacts.
type OutputConfig struct {
	ResultsPath string `yaml:"results_path" mapstructure:"results_path"`
	ErrorsPath  string `yaml:"errors_path" mapstructure:"errors_path"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// VerifyConfig filters top-level keys in coverage verification.
type VerifyConfig struct {
	RequireKeywords []string `yaml:"require_keywords" mapstructure:"require_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords" mapstructure:"exclude_keywords"`
}

// DefaultConfig returns the built-in defaults. Site-specific selectors and
// labels are placeholders; deployments point them at their search UI via the
// config file.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Driver:            "chrome",
			ReadySelector:     ".search-panel",
			InputSelector:     "#searchText",
			SubmitSelector:    ".search-panel button.btn-search",
			QueryParam:        "q",
			EchoClass:         "query-echo",
			BlockClass:        "result-block",
			ProvenanceHeader:  "Source",
			PassageHeader:     "Passage",
			UserAgent:         "passagetrace/0.1 (+https://github.com/minsucho/passagetrace)",
			MaxBodyBytes:      2_000_000,
			ReadyTimeout:      15 * time.Second,
			SettleDelay:       3 * time.Second,
			Cooldown:          5 * time.Second,
			MaxAttempts:       3,
			RequestsPerSecond: 1,
			Burst:             2,
			CacheTTL:          time.Hour,
			RespectRobots:     true,
		},
		Extract: ExtractConfig{
			StripPattern: `[\x{3131}-\x{314E}\x{AC00}-\x{D7A3}]+`,
			MinSpaces:    3,
		},
		Crawl: CrawlConfig{
			Extension: ".pdf",
			PoolSize:  runtime.NumCPU(),
		},
		Output: OutputConfig{
			ResultsPath: "results.json",
			ErrorsPath:  "error_log.json",
		},
	}
}
