package scribe

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxInputChars bounds dialogue and narrative length.
const DefaultMaxInputChars = 50000

// FragmentStream is a single-pass sequence of text fragments from the completion service.
type FragmentStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// TextStreamer opens a streaming completion for fixed instructions plus user input.
type TextStreamer interface {
	StreamText(ctx context.Context, instructions, input string) (FragmentStream, error)
}

type SummarizerOptions struct {
	// MaxInputChars limits the dialogue length in characters. Zero means DefaultMaxInputChars,
	// a negative value disables the limit.
	MaxInputChars int
	Logger        *zap.Logger
}

// Summarizer turns a clinical dialogue into a streamed narrative summary.
// It holds no per-call state and is safe for concurrent use.
type Summarizer struct {
	streamer TextStreamer
	maxChars int
	logger   *zap.Logger
}

func NewSummarizer(streamer TextStreamer, opts SummarizerOptions) *Summarizer {
	if opts.MaxInputChars == 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Summarizer{streamer: streamer, maxChars: opts.MaxInputChars, logger: opts.Logger}
}

// GenerateSummary validates dialogue and opens a summary stream. Blank or oversize input is an
// *InputError and no call is made. The caller must Close the returned stream.
func (s *Summarizer) GenerateSummary(ctx context.Context, dialogue string) (*SummaryStream, error) {
	if err := checkInput("dialogue", dialogue, s.maxChars); err != nil {
		return nil, err
	}
	start := time.Now()
	fs, err := s.streamer.StreamText(ctx, summaryPrompt, dialogue)
	if err != nil {
		s.logger.Warn("summary stream open failed",
			zap.String("prompt_version", SummaryPromptVersion),
			zap.Int("input_chars", len(dialogue)),
			zap.Error(err),
		)
		return nil, &CollaboratorError{Op: "summary", Err: err}
	}
	s.logger.Debug("summary stream opened",
		zap.String("prompt_version", SummaryPromptVersion),
		zap.Int("input_chars", len(dialogue)),
	)
	return &SummaryStream{ctx: ctx, fs: fs, logger: s.logger, start: start}, nil
}

// SummaryStream forwards fragments in the order the completion service emits them, without
// buffering. It is not restartable and must be consumed by a single goroutine.
type SummaryStream struct {
	ctx    context.Context
	fs     FragmentStream
	logger *zap.Logger
	start  time.Time

	cur       string
	fragments int
	chars     int
	err       error
	done      bool
	closeOnce sync.Once
	closeErr  error
}

// Next advances to the next non-empty fragment. It returns false at the end of the stream or on
// failure; Err distinguishes the two.
func (s *SummaryStream) Next() bool {
	if s.done {
		return false
	}
	for s.fs.Next() {
		frag := s.fs.Current()
		if frag == "" {
			continue
		}
		s.cur = frag
		s.fragments++
		s.chars += len(frag)
		return true
	}
	s.done = true
	s.cur = ""
	err := s.fs.Err()
	if err == nil && s.ctx.Err() != nil {
		err = s.ctx.Err()
	}
	if err != nil {
		s.err = &CollaboratorError{Op: "summary", Err: err}
		s.logger.Warn("summary stream failed",
			zap.Int("fragments", s.fragments),
			zap.Duration("elapsed", time.Since(s.start)),
			zap.Error(err),
		)
		return false
	}
	s.logger.Info("summary stream complete",
		zap.Int("fragments", s.fragments),
		zap.Int("output_chars", s.chars),
		zap.Duration("elapsed", time.Since(s.start)),
	)
	return false
}

// Fragment returns the fragment Next advanced to.
func (s *SummaryStream) Fragment() string { return s.cur }

// Err returns the *CollaboratorError that ended the stream early, if any. A stream that ends with
// a non-nil Err is truncated; fragments already returned are not retracted.
func (s *SummaryStream) Err() error { return s.err }

// Close releases the underlying connection. It is safe to call more than once and before the
// stream is drained.
func (s *SummaryStream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		s.closeErr = s.fs.Close()
	})
	return s.closeErr
}

// CollectSummary drains stream, copying each fragment to w when w is non-nil, and returns the
// concatenated text. On failure the partial text is returned together with the error.
func CollectSummary(stream *SummaryStream, w io.Writer) (string, error) {
	defer stream.Close()
	var b strings.Builder
	for stream.Next() {
		frag := stream.Fragment()
		b.WriteString(frag)
		if w != nil {
			if _, err := io.WriteString(w, frag); err != nil {
				return b.String(), err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return b.String(), err
	}
	return b.String(), nil
}
