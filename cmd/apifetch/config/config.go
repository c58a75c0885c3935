package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/apifetch"
	"github.com/loykin/apifetch/internal/constants"
	"github.com/loykin/apifetch/internal/httpc"
	"github.com/loykin/apifetch/internal/util"
	"github.com/loykin/apifetch/pkg/catalog"
	"github.com/loykin/apifetch/pkg/env"
	"gopkg.in/yaml.v3"
)

type EnvConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Value        string `mapstructure:"value" yaml:"value"`
	ValueFromEnv string `mapstructure:"valueFromEnv" yaml:"valueFromEnv"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
}

type ClientConfig struct {
	Insecure      bool              `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string            `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string            `mapstructure:"max_tls_version" yaml:"max_tls_version"`
	Timeout       string            `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string            `mapstructure:"user_agent" yaml:"user_agent"`
	Headers       map[string]string `mapstructure:"headers" yaml:"headers"`
	// StrictQuery fails calls with params that have no query-string form
	// instead of dropping them.
	StrictQuery bool `mapstructure:"strict_query" yaml:"strict_query"`
}

type WaitConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Status   int    `mapstructure:"status" yaml:"status"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
	Interval string `mapstructure:"interval" yaml:"interval"`
}

type SearchConfig struct {
	BaseAddress string `mapstructure:"base_address" yaml:"base_address"`
	Path        string `mapstructure:"path" yaml:"path"`
	Limit       int    `mapstructure:"limit" yaml:"limit"`
}

type ConfigDoc struct {
	Env     []EnvConfig   `mapstructure:"env" yaml:"env"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Wait    WaitConfig    `mapstructure:"wait" yaml:"wait"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	// Catalog is an inline endpoint catalog; CatalogFile points to one on
	// disk, relative to the config file. Inline wins when both are set.
	Catalog     *catalog.Catalog `mapstructure:"catalog" yaml:"catalog"`
	CatalogFile string           `mapstructure:"catalog_file" yaml:"catalog_file"`
	// BatchLimit caps concurrent calls in the batch command.
	BatchLimit int `mapstructure:"batch_limit" yaml:"batch_limit"`

	path string
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", clean, err)
	}
	c.path = clean
	if c.Catalog != nil {
		if err := c.Catalog.Validate(); err != nil {
			return fmt.Errorf("config %s: catalog: %w", clean, err)
		}
	}
	return nil
}

// GetEnv builds the global template variables. valueFromEnv entries are read
// from the process environment on first use.
func (c *ConfigDoc) GetEnv() *env.Env {
	base := env.New()
	for _, kv := range c.Env {
		name, ok := util.TrimEmptyCheck(kv.Name)
		if !ok {
			continue
		}
		if envVar, hasEnvVar := util.TrimEmptyCheck(kv.ValueFromEnv); kv.Value == "" && hasEnvVar {
			if _, set := os.LookupEnv(envVar); !set {
				slog.Warn("env variable requested but not set", "name", name, "env_var", envVar)
			}
			base.Global[name] = env.FromOS(envVar)
			continue
		}
		base.Global[name] = env.Str(kv.Value)
	}
	return base
}

// LoadCatalog returns the inline catalog or reads CatalogFile.
func (c *ConfigDoc) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog != nil {
		return c.Catalog, nil
	}
	p, ok := util.TrimEmptyCheck(c.CatalogFile)
	if !ok {
		return nil, fmt.Errorf("no catalog configured (set catalog or catalog_file)")
	}
	if !filepath.IsAbs(p) && c.path != "" {
		p = filepath.Join(filepath.Dir(c.path), p)
	}
	return catalog.LoadFile(p)
}

// HTTPC translates the client section into transport settings.
func (c *ConfigDoc) HTTPC() (*httpc.Httpc, error) {
	tlsCfg, err := httpc.TLSOptions{
		Insecure:   c.Client.Insecure,
		MinVersion: c.Client.MinTLSVersion,
		MaxVersion: c.Client.MaxTLSVersion,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	timeout := constants.DefaultTimeout
	if s, ok := util.TrimEmptyCheck(c.Client.Timeout); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("client.timeout: %w", err)
		}
		timeout = d
	}
	return &httpc.Httpc{
		TLSConfig: tlsCfg,
		Timeout:   timeout,
		UserAgent: util.TrimWithDefault(c.Client.UserAgent, constants.DefaultUserAgent),
	}, nil
}

func (c *ConfigDoc) parseLogLevel() (apifetch.LogLevel, error) {
	level := util.TrimAndLower(c.Logging.Level)
	switch level {
	case "error":
		return apifetch.LogLevelError, nil
	case "warn", "warning":
		return apifetch.LogLevelWarn, nil
	case "info", "":
		return apifetch.LogLevelInfo, nil
	case "debug":
		return apifetch.LogLevelDebug, nil
	default:
		return apifetch.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *apifetch.Logger
	format := util.TrimAndLower(c.Logging.Format)

	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	switch format {
	case "json":
		logger = apifetch.NewJSONLogger(level)
	case "color", "colour":
		logger = apifetch.NewColorLogger(level)
	case "text", "":
		if useColor {
			logger = apifetch.NewColorLogger(level)
		} else {
			logger = apifetch.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(maskingEnabled)
	apifetch.SetDefaultLogger(logger)
	apifetch.EnableMasking(maskingEnabled)

	logger.Debug("logging configured",
		"level", util.TrimWithDefault(util.TrimAndLower(c.Logging.Level), "info"),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
