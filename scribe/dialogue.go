package scribe

import (
	"strings"
)

// Visit is the metadata that accompanies a transcript. Every field is optional.
type Visit struct {
	Date      *Date  `json:"date,omitempty"`
	Clinician string `json:"clinician,omitempty"`
	Patient   string `json:"patient,omitempty"`
	Setting   string `json:"setting,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (v Visit) lines() []string {
	var out []string
	add := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			out = append(out, "- "+key+": "+val)
		}
	}
	if v.Date != nil && !v.Date.IsZero() {
		add("visit_date", v.Date.String())
	}
	add("clinician", v.Clinician)
	add("patient", v.Patient)
	add("setting", v.Setting)
	add("reason_for_visit", v.Reason)
	return out
}

// ComposeDialogue builds the single text block handed to GenerateSummary: a visit_metadata block
// (omitted when the visit carries nothing) followed by the transcript. A blank transcript yields ""
// so that the caller gets an InputError instead of summarizing metadata alone.
func ComposeDialogue(v Visit, transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return ""
	}
	var b strings.Builder
	if meta := v.lines(); len(meta) > 0 {
		b.WriteString("visit_metadata:\n")
		for _, l := range meta {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("transcript:\n")
	b.WriteString(transcript)
	b.WriteByte('\n')
	return b.String()
}
