package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/thapar25/EMR/scribe"
	"github.com/thapar25/EMR/scribe/provider"
)

type Config struct {
	InPath    string
	OutDir    string
	Narrative bool

	VisitDate string
	Clinician string
	Patient   string
	Setting   string
	Reason    string

	HTML      bool
	Pretty    bool
	Overwrite bool

	APIKey        string
	BaseURL       string
	SummaryModel  string
	ExtractModel  string
	MaxInputChars int
	Retries       int
	Quiet         bool
	Debug         bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutDir == "" {
		return errors.New("missing -out")
	}
	if c.SummaryModel == "" && !c.Narrative {
		return errors.New("missing -summary-model")
	}
	if c.ExtractModel == "" {
		return errors.New("missing -extract-model")
	}
	if c.VisitDate != "" {
		if _, err := scribe.ParseDate(c.VisitDate); err != nil {
			return errors.New("visit-date must be YYYY-MM-DD")
		}
	}
	if c.Retries < 0 {
		return errors.New("retries must be >= 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutDir:        filepath.FromSlash("out"),
		SummaryModel:  provider.DefaultSummaryModel,
		ExtractModel:  provider.DefaultExtractionModel,
		MaxInputChars: scribe.DefaultMaxInputChars,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to a transcript (or narrative, with -narrative) text file")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for summary, record and rendered note")
	fs.BoolVar(&cfg.Narrative, "narrative", false, "Treat -in as an existing clinical summary and skip summarization")
	fs.StringVar(&cfg.VisitDate, "visit-date", "", "Visit date (YYYY-MM-DD) passed to the summarizer")
	fs.StringVar(&cfg.Clinician, "clinician", "", "Clinician name passed to the summarizer")
	fs.StringVar(&cfg.Patient, "patient", "", "Patient name passed to the summarizer")
	fs.StringVar(&cfg.Setting, "setting", "", "Care setting passed to the summarizer (e.g. outpatient)")
	fs.StringVar(&cfg.Reason, "reason", "", "Reason for visit passed to the summarizer")
	fs.BoolVar(&cfg.HTML, "html", false, "Also write <name>.soap.html")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print <name>.soap.json")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Regenerate outputs that already exist")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Optional OpenAI-compatible base URL")
	fs.StringVar(&cfg.SummaryModel, "summary-model", cfg.SummaryModel, "OpenAI model used for the summary")
	fs.StringVar(&cfg.ExtractModel, "extract-model", cfg.ExtractModel, "OpenAI model used for extraction")
	fs.IntVar(&cfg.MaxInputChars, "max-input-chars", cfg.MaxInputChars, "Max input length in characters (negative disables)")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries on rate-limit and server errors (0 disables)")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Do not stream the summary to stdout")
	fs.BoolVar(&cfg.Debug, "debug", false, "Log collaborator calls to stderr")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	cfg.OutDir = filepath.Clean(cfg.OutDir)
	return cfg, nil
}
