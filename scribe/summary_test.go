package scribe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateSummary_ConcatenationReproducesOutput(t *testing.T) {
	t.Parallel()

	fragments := []string{"CC: ", "foot pain.", "", "\nHPI: ", "burning ", "pain for 2 weeks; ", "ünïcödé ok."}
	st := &fakeStreamer{stream: &sliceStream{fragments: fragments}}
	s := NewSummarizer(st, SummarizerOptions{})

	stream, err := s.GenerateSummary(context.Background(), "Doctor: what brings you in?\nPatient: my foot hurts.")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	var got []string
	for stream.Next() {
		got = append(got, stream.Fragment())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err=%v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if strings.Join(got, "") != strings.Join(fragments, "") {
		t.Fatalf("joined=%q, want %q", strings.Join(got, ""), strings.Join(fragments, ""))
	}
	if len(got) != len(fragments)-1 {
		t.Fatalf("fragments=%d, want %d (empty fragment skipped)", len(got), len(fragments)-1)
	}
	for i, want := range []string{"CC: ", "foot pain.", "\nHPI: "} {
		if got[i] != want {
			t.Fatalf("got[%d]=%q, want %q", i, got[i], want)
		}
	}
}

func TestGenerateSummary_BlankInputMakesNoCall(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\n\t "} {
		st := &fakeStreamer{stream: &sliceStream{}}
		s := NewSummarizer(st, SummarizerOptions{})
		stream, err := s.GenerateSummary(context.Background(), in)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Fatalf("input %q: err=%v, want *InputError", in, err)
		}
		if stream != nil {
			t.Fatalf("input %q: expected nil stream", in)
		}
		if n := st.calls.Load(); n != 0 {
			t.Fatalf("input %q: calls=%d, want 0", in, n)
		}
	}
}

func TestGenerateSummary_OversizeInput(t *testing.T) {
	t.Parallel()

	st := &fakeStreamer{stream: &sliceStream{}}
	s := NewSummarizer(st, SummarizerOptions{MaxInputChars: 10})
	_, err := s.GenerateSummary(context.Background(), strings.Repeat("é", 11))
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("err=%v, want *InputError", err)
	}
	if st.calls.Load() != 0 {
		t.Fatalf("expected no call for oversize input")
	}

	// Exactly at the limit, counted in characters rather than bytes.
	if _, err := s.GenerateSummary(context.Background(), strings.Repeat("é", 10)); err != nil {
		t.Fatalf("at limit: %v", err)
	}
}

func TestGenerateSummary_MidStreamFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	st := &fakeStreamer{stream: &sliceStream{fragments: []string{"CC: ", "foot"}, err: boom}}
	s := NewSummarizer(st, SummarizerOptions{})
	stream, err := s.GenerateSummary(context.Background(), "dialogue")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}

	text, err := CollectSummary(stream, nil)
	if text != "CC: foot" {
		t.Fatalf("partial=%q, want %q", text, "CC: foot")
	}
	var ce *CollaboratorError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v, want *CollaboratorError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v does not wrap cause", err)
	}
	if st.stream.closed != 1 {
		t.Fatalf("closed=%d, want 1", st.stream.closed)
	}
}

func TestGenerateSummary_OpenFailure(t *testing.T) {
	t.Parallel()

	st := &fakeStreamer{openErr: errors.New("503")}
	s := NewSummarizer(st, SummarizerOptions{})
	_, err := s.GenerateSummary(context.Background(), "dialogue")
	var ce *CollaboratorError
	if !errors.As(err, &ce) || ce.Op != "summary" {
		t.Fatalf("err=%v, want *CollaboratorError op=summary", err)
	}
}

func TestSummaryStream_CloseIsIdempotentAndStopsIteration(t *testing.T) {
	t.Parallel()

	st := &fakeStreamer{stream: &sliceStream{fragments: []string{"a", "b", "c"}}}
	s := NewSummarizer(st, SummarizerOptions{})
	stream, err := s.GenerateSummary(context.Background(), "dialogue")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if !stream.Next() || stream.Fragment() != "a" {
		t.Fatalf("first fragment=%q", stream.Fragment())
	}
	_ = stream.Close()
	_ = stream.Close()
	if st.stream.closed != 1 {
		t.Fatalf("closed=%d, want 1", st.stream.closed)
	}
	if stream.Next() {
		t.Fatalf("Next after Close returned true")
	}
}

func TestSummaryStream_CanceledContextIsCollaboratorError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	st := &fakeStreamer{stream: &sliceStream{fragments: []string{"a"}}}
	s := NewSummarizer(st, SummarizerOptions{})
	stream, err := s.GenerateSummary(ctx, "dialogue")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	cancel()
	_, err = CollectSummary(stream, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestCollectSummary_WritesThrough(t *testing.T) {
	t.Parallel()

	st := &fakeStreamer{stream: &sliceStream{fragments: []string{"one ", "two"}}}
	s := NewSummarizer(st, SummarizerOptions{})
	stream, err := s.GenerateSummary(context.Background(), "dialogue")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	var sb strings.Builder
	text, err := CollectSummary(stream, &sb)
	if err != nil {
		t.Fatalf("CollectSummary: %v", err)
	}
	if text != "one two" || sb.String() != "one two" {
		t.Fatalf("text=%q written=%q", text, sb.String())
	}
}
