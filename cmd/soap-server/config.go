package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/thapar25/EMR/scribe"
	"github.com/thapar25/EMR/scribe/provider"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	APIKey             string        `yaml:"api_key"`
	BaseURL            string        `yaml:"base_url"`
	SummaryModel       string        `yaml:"summary_model"`
	ExtractModel       string        `yaml:"extract_model"`
	SummaryTemperature float64       `yaml:"summary_temperature"`
	ExtractTemperature float64       `yaml:"extract_temperature"`
	MaxOutputTokens    int           `yaml:"max_output_tokens"`
	MaxInputChars      int           `yaml:"max_input_chars"`
	ExtractTimeout     time.Duration `yaml:"extract_timeout"`
	RateLimit          float64       `yaml:"rate_limit"`
	RateBurst          int           `yaml:"rate_burst"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	Retries            int           `yaml:"retries"`
	Debug              bool          `yaml:"debug"`

	ConfigPath string `yaml:"-"`
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("missing -addr")
	}
	if c.SummaryModel == "" {
		return errors.New("missing -summary-model")
	}
	if c.ExtractModel == "" {
		return errors.New("missing -extract-model")
	}
	if c.SummaryTemperature < 0 || c.SummaryTemperature > 2 || c.ExtractTemperature < 0 || c.ExtractTemperature > 2 {
		return errors.New("temperatures must be within [0, 2]")
	}
	if c.MaxOutputTokens < 0 {
		return errors.New("max-output-tokens must be >= 0")
	}
	if c.ExtractTimeout < 0 {
		return errors.New("extract-timeout must be >= 0")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("rate limits must be >= 0")
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		return errors.New("rate-burst must be > 0 when rate-limit is set")
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("max-body-bytes must be >= 0")
	}
	if c.Retries < 0 {
		return errors.New("retries must be >= 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Addr:               ":8080",
		SummaryModel:       provider.DefaultSummaryModel,
		ExtractModel:       provider.DefaultExtractionModel,
		SummaryTemperature: provider.DefaultSummaryTemperature,
		ExtractTemperature: 0,
		MaxInputChars:      scribe.DefaultMaxInputChars,
		ExtractTimeout:     2 * time.Minute,
		RateLimit:          5,
		RateBurst:          10,
		MaxBodyBytes:       1 << 20,
	}
}

// parseFlags applies the optional -config YAML file over the defaults, then the remaining flags,
// so a flag always wins over the file.
func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	if path := configPathArg(args); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ConfigPath = path
	}

	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Optional YAML config file; flags override its values")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Optional OpenAI-compatible base URL")
	fs.StringVar(&cfg.SummaryModel, "summary-model", cfg.SummaryModel, "Model used to stream summaries")
	fs.StringVar(&cfg.ExtractModel, "extract-model", cfg.ExtractModel, "Model used for structured extraction")
	fs.Float64Var(&cfg.SummaryTemperature, "summary-temperature", cfg.SummaryTemperature, "Sampling temperature for summaries")
	fs.Float64Var(&cfg.ExtractTemperature, "extract-temperature", cfg.ExtractTemperature, "Sampling temperature for extraction")
	fs.IntVar(&cfg.MaxOutputTokens, "max-output-tokens", cfg.MaxOutputTokens, "Max output tokens per call (0 leaves the provider default)")
	fs.IntVar(&cfg.MaxInputChars, "max-input-chars", cfg.MaxInputChars, "Max dialogue/summary length in characters (negative disables)")
	fs.DurationVar(&cfg.ExtractTimeout, "extract-timeout", cfg.ExtractTimeout, "Deadline for one extraction request (0 disables)")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second per client IP (0 disables)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "Burst size per client IP")
	fs.Func("allowed-origins", "Comma-separated CORS origins (* allows any)", func(v string) error {
		cfg.AllowedOrigins = splitList(v)
		return nil
	})
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Max request body size in bytes (0 disables)")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries on rate-limit and server errors (0 disables)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Development logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configPathArg finds -config before the flag set is built, since the file supplies flag defaults.
func configPathArg(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return ""
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func loadConfigFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read -config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse -config %s: %w", path, err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
