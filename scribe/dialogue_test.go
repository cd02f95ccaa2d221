package scribe

import (
	"strings"
	"testing"
	"time"
)

func TestComposeDialogue(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.January, 5)
	got := ComposeDialogue(Visit{Date: &d, Clinician: "Dr. Rao", Setting: " clinic "}, "\nDoctor: Hi.\nPatient: My foot hurts.\n")
	want := "visit_metadata:\n- visit_date: 2024-01-05\n- clinician: Dr. Rao\n- setting: clinic\n\ntranscript:\nDoctor: Hi.\nPatient: My foot hurts.\n"
	if got != want {
		t.Fatalf("got=%q\nwant=%q", got, want)
	}

	if got := ComposeDialogue(Visit{}, "Patient: hi"); strings.Contains(got, "visit_metadata") {
		t.Fatalf("empty visit should not emit metadata: %q", got)
	}
	if got := ComposeDialogue(Visit{Clinician: "Dr. Rao"}, "  "); got != "" {
		t.Fatalf("blank transcript=%q, want empty", got)
	}
}
