package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/thapar25/EMR/scribe"
	"github.com/thapar25/EMR/scribe/fileutils"
	"github.com/thapar25/EMR/scribe/provider"
	"github.com/thapar25/EMR/scribe/render"
	"go.uber.org/zap"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("init logger: %w", err).Error())
			os.Exit(2)
		}
		defer logger.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := provider.NewClient(apiKey, cfg.BaseURL)
	retry := provider.BackoffPolicy(cfg.Retries + 1)
	summarizer := scribe.NewSummarizer(&provider.ChatStreamer{
		Client:      client,
		Model:       cfg.SummaryModel,
		Temperature: provider.DefaultSummaryTemperature,
		Retry:       retry,
		Logger:      logger,
	}, scribe.SummarizerOptions{MaxInputChars: cfg.MaxInputChars, Logger: logger})
	extractor := scribe.NewExtractor(&provider.ResponsesCompleter{
		Client: client,
		Model:  cfg.ExtractModel,
		Retry:  retry,
		Logger: logger,
	}, scribe.ExtractorOptions{MaxInputChars: cfg.MaxInputChars, Logger: logger})

	res, err := run(ctx, cfg, summarizer, extractor, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "summary=%s record=%s text=%s html=%s missing=%d findings=%d resumed=%d\n",
		res.SummaryPath, res.RecordPath, res.TextPath, res.HTMLPath, res.Missing, res.Findings, res.Resumed)
}

type outputPaths struct {
	Summary string
	Record  string
	Text    string
	HTML    string
}

func pathsFor(cfg Config) outputPaths {
	base := filepath.Base(cfg.InPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return outputPaths{
		Summary: filepath.Join(cfg.OutDir, name+".summary.md"),
		Record:  filepath.Join(cfg.OutDir, name+".soap.json"),
		Text:    filepath.Join(cfg.OutDir, name+".soap.txt"),
		HTML:    filepath.Join(cfg.OutDir, name+".soap.html"),
	}
}

type runResult struct {
	SummaryPath string
	RecordPath  string
	TextPath    string
	HTMLPath    string
	Missing     int
	Findings    int
	// Resumed counts stages read back from existing outputs instead of regenerated.
	Resumed int
}

// run takes one input file through summary, extraction and rendering. Existing summary and record
// files are reused unless cfg.Overwrite is set; the rendered note is always rewritten.
func run(ctx context.Context, cfg Config, summarizer *scribe.Summarizer, extractor *scribe.Extractor, stdout io.Writer) (runResult, error) {
	input, err := os.ReadFile(cfg.InPath)
	if err != nil {
		return runResult{}, fmt.Errorf("read -in: %w", err)
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return runResult{}, fmt.Errorf("mkdir -out: %w", err)
	}
	paths := pathsFor(cfg)
	var res runResult

	narrative := string(input)
	if !cfg.Narrative {
		res.SummaryPath = paths.Summary
		if !cfg.Overwrite && fileutils.FileExists(paths.Summary) {
			b, err := os.ReadFile(paths.Summary)
			if err != nil {
				return runResult{}, fmt.Errorf("read summary: %w", err)
			}
			narrative = string(b)
			res.Resumed++
		} else {
			visit, err := visitFor(cfg)
			if err != nil {
				return runResult{}, err
			}
			narrative, err = summarize(ctx, summarizer, scribe.ComposeDialogue(visit, string(input)), stdout, cfg.Quiet)
			if err != nil {
				return runResult{}, err
			}
			if err := fileutils.WriteFileAtomicSameDir(paths.Summary, []byte(narrative), 0o644); err != nil {
				return runResult{}, fmt.Errorf("write summary: %w", err)
			}
		}
	}

	res.RecordPath = paths.Record
	var rec *scribe.ClinicalRecord
	if !cfg.Overwrite && fileutils.FileExists(paths.Record) {
		b, err := os.ReadFile(paths.Record)
		if err != nil {
			return runResult{}, fmt.Errorf("read record: %w", err)
		}
		if rec, err = scribe.DecodeRecord(string(b)); err != nil {
			return runResult{}, fmt.Errorf("existing record %s: %w", paths.Record, err)
		}
		res.Resumed++
	} else {
		if rec, err = extractor.Extract(ctx, narrative); err != nil {
			return runResult{}, err
		}
		if err := fileutils.WriteJSONFileAtomic(paths.Record, rec, cfg.Pretty); err != nil {
			return runResult{}, fmt.Errorf("write record: %w", err)
		}
	}

	doc, err := render.Render(rec)
	if err != nil {
		return runResult{}, err
	}
	res.TextPath = paths.Text
	if err := fileutils.WriteFileAtomicSameDir(paths.Text, []byte(render.Text(doc)), 0o644); err != nil {
		return runResult{}, fmt.Errorf("write text: %w", err)
	}
	if cfg.HTML {
		html, err := render.HTML(doc)
		if err != nil {
			return runResult{}, err
		}
		res.HTMLPath = paths.HTML
		if err := fileutils.WriteFileAtomicSameDir(paths.HTML, html, 0o644); err != nil {
			return runResult{}, fmt.Errorf("write html: %w", err)
		}
	}
	res.Missing = len(doc.MissingFields())
	res.Findings = len(doc.Findings)
	return res, nil
}

func visitFor(cfg Config) (scribe.Visit, error) {
	v := scribe.Visit{
		Clinician: cfg.Clinician,
		Patient:   cfg.Patient,
		Setting:   cfg.Setting,
		Reason:    cfg.Reason,
	}
	if cfg.VisitDate != "" {
		d, err := scribe.ParseDate(cfg.VisitDate)
		if err != nil {
			return scribe.Visit{}, err
		}
		v.Date = &d
	}
	return v, nil
}

// summarize streams the summary to stdout as it arrives, unless quiet.
func summarize(ctx context.Context, summarizer *scribe.Summarizer, dialogue string, stdout io.Writer, quiet bool) (string, error) {
	stream, err := summarizer.GenerateSummary(ctx, dialogue)
	if err != nil {
		return "", err
	}
	var w io.Writer
	if !quiet {
		w = stdout
	}
	text, err := scribe.CollectSummary(stream, w)
	if err != nil {
		return "", err
	}
	if w != nil && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
	return text, nil
}
