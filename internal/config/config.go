package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/company-match/internal/match"
	"github.com/sells-group/company-match/internal/scrape"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Index  IndexConfig  `yaml:"index" mapstructure:"index"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Crawl  CrawlConfig  `yaml:"crawl" mapstructure:"crawl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DataConfig locates the input files.
type DataConfig struct {
	CompaniesPath string `yaml:"companies_path" mapstructure:"companies_path"`
	WebsitesPath  string `yaml:"websites_path" mapstructure:"websites_path"`
	QueriesPath   string `yaml:"queries_path" mapstructure:"queries_path"`
}

// IndexConfig configures the fuzzy index.
type IndexConfig struct {
	Threshold float64      `yaml:"threshold" mapstructure:"threshold"`
	Weights   WeightConfig `yaml:"weights" mapstructure:"weights"`
}

// WeightConfig holds per-field index weights.
type WeightConfig struct {
	CommercialName float64 `yaml:"company_commercial_name" mapstructure:"company_commercial_name"`
	LegalName      float64 `yaml:"company_legal_name" mapstructure:"company_legal_name"`
	AllNames       float64 `yaml:"company_all_available_names" mapstructure:"company_all_available_names"`
	Domain         float64 `yaml:"domain" mapstructure:"domain"`
	PhoneNumbers   float64 `yaml:"phone_numbers" mapstructure:"phone_numbers"`
	Facebook       float64 `yaml:"facebook" mapstructure:"facebook"`
}

// MatchConfig configures the match cascade.
type MatchConfig struct {
	AcceptScore     float64 `yaml:"accept_score" mapstructure:"accept_score"`
	FuzzyNameMax    float64 `yaml:"fuzzy_name_max" mapstructure:"fuzzy_name_max"`
	FuzzyNameHigh   float64 `yaml:"fuzzy_name_high" mapstructure:"fuzzy_name_high"`
	Fallback        bool    `yaml:"fallback" mapstructure:"fallback"`
	FallbackFloor   float64 `yaml:"fallback_floor" mapstructure:"fallback_floor"`
	PolicyFile      string  `yaml:"policy_file" mapstructure:"policy_file"`
	BulkConcurrency int     `yaml:"bulk_concurrency" mapstructure:"bulk_concurrency"`
}

// CrawlConfig configures the website crawler.
type CrawlConfig struct {
	BatchSize   int     `yaml:"batch_size" mapstructure:"batch_size"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyKB   int     `yaml:"max_body_kb" mapstructure:"max_body_kb"`
	Retries     int     `yaml:"retries" mapstructure:"retries"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	return load(v)
}

// LoadFile reads configuration from an explicit file path plus environment.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Environment
	v.SetEnvPrefix("MATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional when searched for)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	p := match.DefaultPolicy()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("data.companies_path", "data/sample-websites-company-names.csv")
	v.SetDefault("data.websites_path", "data/sample-websites.csv")
	v.SetDefault("data.queries_path", "data/API-input-sample.csv")
	v.SetDefault("index.threshold", p.Threshold)
	v.SetDefault("index.weights.company_commercial_name", p.Weights.CommercialName)
	v.SetDefault("index.weights.company_legal_name", p.Weights.LegalName)
	v.SetDefault("index.weights.company_all_available_names", p.Weights.AllNames)
	v.SetDefault("index.weights.domain", p.Weights.Domain)
	v.SetDefault("index.weights.phone_numbers", p.Weights.PhoneNumbers)
	v.SetDefault("index.weights.facebook", p.Weights.Facebook)
	v.SetDefault("match.accept_score", p.AcceptScore)
	v.SetDefault("match.fuzzy_name_max", p.FuzzyNameMax)
	v.SetDefault("match.fuzzy_name_high", p.FuzzyNameHigh)
	v.SetDefault("match.fallback", p.Fallback)
	v.SetDefault("match.fallback_floor", p.FallbackFloor)
	v.SetDefault("match.policy_file", "")
	v.SetDefault("match.bulk_concurrency", 8)
	v.SetDefault("crawl.batch_size", 10)
	v.SetDefault("crawl.timeout_secs", 10)
	v.SetDefault("crawl.rate_per_sec", 20)
	v.SetDefault("crawl.user_agent", scrape.DefaultUserAgent)
	v.SetDefault("crawl.max_body_kb", 1024)
	v.SetDefault("crawl.retries", 1)
}

// Validate checks the settings a command mode depends on.
// Modes: serve, resolve, crawl, bulk.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Data.WebsitesPath == "" {
			errs = append(errs, "data.websites_path is required")
		}
		if c.Data.QueriesPath == "" {
			errs = append(errs, "data.queries_path is required")
		}
	case "resolve":
	case "crawl":
		if c.Data.WebsitesPath == "" {
			errs = append(errs, "data.websites_path is required")
		}
	case "bulk":
		if c.Data.QueriesPath == "" {
			errs = append(errs, "data.queries_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.CompaniesPath == "" {
		errs = append(errs, "data.companies_path is required")
	}
	if c.Match.BulkConcurrency < 1 || c.Match.BulkConcurrency > 64 {
		errs = append(errs, "match.bulk_concurrency must be between 1 and 64")
	}
	if c.Crawl.BatchSize < 1 || c.Crawl.BatchSize > 100 {
		errs = append(errs, "crawl.batch_size must be between 1 and 100")
	}
	if c.Crawl.TimeoutSecs <= 0 {
		errs = append(errs, "crawl.timeout_secs must be > 0")
	}
	if c.Crawl.RatePerSec < 0 {
		errs = append(errs, "crawl.rate_per_sec must be >= 0")
	}
	if c.Crawl.Retries < 0 || c.Crawl.Retries > 5 {
		errs = append(errs, "crawl.retries must be between 0 and 5")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Policy builds the match policy from the index and match sections, then
// applies the policy file when one is configured.
func (c *Config) Policy() (match.Policy, error) {
	w := c.Index.Weights
	p := match.Policy{
		AcceptScore:   c.Match.AcceptScore,
		FuzzyNameMax:  c.Match.FuzzyNameMax,
		FuzzyNameHigh: c.Match.FuzzyNameHigh,
		Fallback:      c.Match.Fallback,
		FallbackFloor: c.Match.FallbackFloor,
		Threshold:     c.Index.Threshold,
		Weights: match.Weights{
			CommercialName: w.CommercialName,
			LegalName:      w.LegalName,
			AllNames:       w.AllNames,
			Domain:         w.Domain,
			PhoneNumbers:   w.PhoneNumbers,
			Facebook:       w.Facebook,
		},
	}

	if c.Match.PolicyFile != "" {
		return match.LoadPolicy(c.Match.PolicyFile, p)
	}
	if err := p.Validate(); err != nil {
		return match.Policy{}, eris.Wrap(err, "config: invalid match settings")
	}
	return p, nil
}

// FetcherOptions returns the page fetcher settings.
func (c CrawlConfig) FetcherOptions() scrape.FetcherOptions {
	return scrape.FetcherOptions{
		Timeout:   c.pageTimeout(),
		UserAgent: c.UserAgent,
		MaxBodyKB: c.MaxBodyKB,
	}
}

// CrawlerOptions returns the batch crawler settings.
func (c CrawlConfig) CrawlerOptions() scrape.CrawlerOptions {
	return scrape.CrawlerOptions{
		BatchSize:   c.BatchSize,
		PageTimeout: c.pageTimeout(),
		RatePerSec:  c.RatePerSec,
		Retries:     c.Retries,
	}
}

func (c CrawlConfig) pageTimeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
