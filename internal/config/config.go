// Package config loads service settings from environment variables,
// dotenv files, an optional YAML file and command-line flags.
//
// Precedence, highest first: flags, environment (including values loaded
// from .env.local then .env), config file, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/logging"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultEnvFiles are loaded in order; earlier files win because dotenv
// never overrides a variable that is already set.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds all service settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// PDFConfig configures the PDF engine.
type PDFConfig struct {
	TimeoutMS   int     `mapstructure:"timeoutMs"`
	MaxPages    int     `mapstructure:"maxPages"` // 0 = auto
	NoSandbox   bool    `mapstructure:"noSandbox"`
	BrowserBin  string  `mapstructure:"browserBin"`
	PageSize    string  `mapstructure:"pageSize"`
	Orientation string  `mapstructure:"orientation"`
	MarginMM    float64 `mapstructure:"marginMm"`
}

// Timeout returns the per-conversion timeout.
func (p PDFConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// PageSettings returns the configured PDF page.
func (p PDFConfig) PageSettings() *docgen.PageSettings {
	return &docgen.PageSettings{
		Size:        p.PageSize,
		Orientation: p.Orientation,
		MarginMM:    p.MarginMM,
	}
}

// TemplatesConfig configures template loading and caching.
type TemplatesConfig struct {
	CacheEnabled bool   `mapstructure:"cacheEnabled"`
	Dir          string `mapstructure:"dir"`     // empty = built-in templates
	Catalog      string `mapstructure:"catalog"` // empty = {Dir}/catalog.yaml or built-in
	Watch        bool   `mapstructure:"watch"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig configures the generate endpoint limiter.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"` // 0 disables limiting
	Burst int     `mapstructure:"burst"`
}

// setting binds a config key to its default, environment names and flag.
type setting struct {
	key  string
	def  any
	env  []string
	flag string
}

var settings = []setting{
	{key: "server.addr", def: ":3000", env: []string{"SERVER_ADDR"}, flag: "addr"},
	{key: "server.shutdownTimeout", def: 15 * time.Second, env: []string{"SERVER_SHUTDOWN_TIMEOUT"}},
	{key: "pdf.timeoutMs", def: 30000, env: []string{"PDF_TIMEOUT_MS"}, flag: "pdf-timeout-ms"},
	{key: "pdf.maxPages", def: 0, env: []string{"PDF_MAX_PAGES"}, flag: "pdf-max-pages"},
	{key: "pdf.noSandbox", def: false, env: []string{"PDF_NO_SANDBOX", "ROD_NO_SANDBOX"}, flag: "no-sandbox"},
	{key: "pdf.browserBin", def: "", env: []string{"ROD_BROWSER_BIN"}, flag: "browser-bin"},
	{key: "pdf.pageSize", def: "a4", env: []string{"PDF_PAGE_SIZE"}},
	{key: "pdf.orientation", def: "portrait", env: []string{"PDF_ORIENTATION"}},
	{key: "pdf.marginMm", def: 20.0, env: []string{"PDF_MARGIN_MM"}},
	{key: "templates.cacheEnabled", def: true, env: []string{"TEMPLATE_CACHE_ENABLED"}},
	{key: "templates.dir", def: "", env: []string{"TEMPLATES_DIR"}, flag: "templates-dir"},
	{key: "templates.catalog", def: "", env: []string{"TEMPLATES_CATALOG"}, flag: "catalog"},
	{key: "templates.watch", def: false, env: []string{"TEMPLATES_WATCH"}, flag: "watch"},
	{key: "log.level", def: "info", env: []string{"LOG_LEVEL"}, flag: "log-level"},
	{key: "log.format", def: "console", env: []string{"LOG_FORMAT"}, flag: "log-format"},
	{key: "rateLimit.rps", def: 0.0, env: []string{"RATE_LIMIT_RPS"}},
	{key: "rateLimit.burst", def: 1, env: []string{"RATE_LIMIT_BURST"}},
}

// RegisterFlags defines the flags Load binds. Flag defaults are ignored;
// only flags the user actually sets override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", "", "HTTP listen address (env SERVER_ADDR, default :3000)")
	fs.Int("pdf-timeout-ms", 0, "PDF conversion timeout in milliseconds (env PDF_TIMEOUT_MS)")
	fs.Int("pdf-max-pages", 0, "concurrent PDF pages, 0 = auto (env PDF_MAX_PAGES)")
	fs.Bool("no-sandbox", false, "disable the Chrome sandbox (env PDF_NO_SANDBOX)")
	fs.String("browser-bin", "", "Chrome binary path (env ROD_BROWSER_BIN)")
	fs.String("templates-dir", "", "custom template directory (env TEMPLATES_DIR)")
	fs.String("catalog", "", "catalog YAML path (env TEMPLATES_CATALOG)")
	fs.Bool("watch", false, "reload templates when files change (env TEMPLATES_WATCH)")
	fs.String("log-level", "", "debug, info, warn, error (env LOG_LEVEL)")
	fs.String("log-format", "", "console or json (env LOG_FORMAT)")
}

// Options controls Load.
type Options struct {
	ConfigFile string         // optional YAML file; empty skips it
	EnvFiles   []string       // dotenv files; nil uses DefaultEnvFiles
	Flags      *pflag.FlagSet // optional; flags from RegisterFlags
}

// Load builds a validated Config.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(append([]string{s.key}, s.env...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", s.key, err)
		}
		if opts.Flags != nil && s.flag != "" {
			if f := opts.Flags.Lookup(s.flag); f != nil {
				if err := v.BindPFlag(s.key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", s.flag, err)
				}
			}
		}
	}

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" {
		cfg.PDF.NoSandbox = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":3000", ShutdownTimeout: 15 * time.Second},
		PDF:       PDFConfig{TimeoutMS: 30000, PageSize: "a4", Orientation: "portrait", MarginMM: 20},
		Templates: TemplatesConfig{CacheEnabled: true},
		Log:       LogConfig{Level: "info", Format: "console"},
		RateLimit: RateLimitConfig{Burst: 1},
	}
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address cannot be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}
	if c.PDF.TimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("PDF_TIMEOUT_MS must be positive, got %d", c.PDF.TimeoutMS))
	}
	if err := c.PDF.PageSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.PDF.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("PDF_MAX_PAGES cannot be negative, got %d", c.PDF.MaxPages))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := logging.ValidateFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS cannot be negative, got %v", c.RateLimit.RPS))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimit.Burst))
	}
	if c.Templates.Watch && c.Templates.Dir == "" {
		errs = append(errs, errors.New("TEMPLATES_WATCH requires TEMPLATES_DIR"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// loadEnvFiles loads each existing dotenv file. Missing files are skipped.
func loadEnvFiles(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
		}
	}
	return nil
}
