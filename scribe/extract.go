package scribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/thapar25/EMR/scribe/fileutils"
	"go.uber.org/zap"
)

// StructuredRequest is one schema-constrained completion call.
type StructuredRequest struct {
	Name         string
	Description  string
	Instructions string
	Input        string
	Schema       map[string]interface{}
}

// StructuredCompleter returns the raw JSON text produced for req.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, req StructuredRequest) (string, error)
}

type ExtractorOptions struct {
	// MaxInputChars limits the narrative length in characters. Zero means DefaultMaxInputChars,
	// a negative value disables the limit.
	MaxInputChars int
	Logger        *zap.Logger
}

// Extractor turns a clinical narrative into a validated ClinicalRecord.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	completer StructuredCompleter
	maxChars  int
	logger    *zap.Logger
}

func NewExtractor(completer StructuredCompleter, opts ExtractorOptions) *Extractor {
	if opts.MaxInputChars == 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{completer: completer, maxChars: opts.MaxInputChars, logger: opts.Logger}
}

// Extract makes one structured-completion call for narrative and returns the decoded record.
// Errors are *InputError (no call made), *CollaboratorError or *ValidationError; no record is
// returned alongside an error.
func (e *Extractor) Extract(ctx context.Context, narrative string) (*ClinicalRecord, error) {
	if err := checkInput("summary", narrative, e.maxChars); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := e.completer.CompleteStructured(ctx, StructuredRequest{
		Name:         "clinical_record",
		Description:  "SOAP-formatted clinical record extracted from a clinical note summary",
		Instructions: extractionPrompt,
		Input:        narrative,
		Schema:       ClinicalRecordSchema(),
	})
	if err != nil {
		e.logger.Warn("extraction call failed",
			zap.String("prompt_version", ExtractionPromptVersion),
			zap.Int("input_chars", len(narrative)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &CollaboratorError{Op: "extract", Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &CollaboratorError{Op: "extract", Err: errors.New("empty response")}
	}

	rec, err := DecodeRecord(raw)
	if err != nil {
		e.logger.Warn("extraction rejected",
			zap.String("prompt_version", ExtractionPromptVersion),
			zap.Int("output_chars", len(raw)),
			zap.Error(err),
		)
		return nil, err
	}

	findings := Review(rec)
	for _, f := range findings {
		e.logger.Info("record finding", zap.String("path", f.Path), zap.String("finding", f.Message))
	}
	e.logger.Info("extraction complete",
		zap.String("prompt_version", ExtractionPromptVersion),
		zap.Int("input_chars", len(narrative)),
		zap.Int("output_chars", len(raw)),
		zap.Int("primary_diagnoses", len(rec.Assessment.PrimaryDiagnoses)),
		zap.Int("findings", len(findings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rec, nil
}

// DecodeRecord decodes raw model JSON into a record, then normalizes and validates it.
// Type mismatches and malformed dates become a *ValidationError at the offending path.
func DecodeRecord(raw string) (*ClinicalRecord, error) {
	var rec ClinicalRecord
	if err := fileutils.DecodeModelJSON(raw, &rec); err != nil {
		return nil, decodeViolation(err)
	}
	Normalize(&rec)
	if err := Validate(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func decodeViolation(err error) error {
	var (
		typeErr    *json.UnmarshalTypeError
		dateErr    *DateError
		resultsErr *resultsError
	)
	switch {
	case errors.As(err, &resultsErr):
		return &ValidationError{Violations: []FieldViolation{{Path: "objective.diagnostic_results", Rule: "type"}}}
	case errors.As(err, &dateErr):
		return &ValidationError{Violations: []FieldViolation{{Path: "visit_date", Rule: "date", Param: dateErr.Value}}}
	case errors.As(err, &typeErr):
		return &ValidationError{Violations: []FieldViolation{{Path: typeErr.Field, Rule: "type", Param: typeErr.Type.String()}}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &ValidationError{Violations: []FieldViolation{{Rule: "json", Param: "truncated"}}}
	default:
		return &ValidationError{Violations: []FieldViolation{{Rule: "json", Param: fmt.Sprint(err)}}}
	}
}
