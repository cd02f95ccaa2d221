package scribe

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.March, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("json=%s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != d.String() || !back.Time().Equal(d.Time()) {
		t.Fatalf("back=%v, want %v", back, d)
	}
}

func TestParseDate_RejectsNonCalendarForms(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "03/09/2024", "2024-3-9", "2024-02-30", "2024-03-09T00:00:00Z", "March 9, 2024"} {
		_, err := ParseDate(s)
		var de *DateError
		if !errors.As(err, &de) {
			t.Fatalf("%q: err=%v, want *DateError", s, err)
		}
		if de.Value != s {
			t.Fatalf("%q: Value=%q", s, de.Value)
		}
	}
}

func TestDiagnosticResults_ObjectKeepsOrder(t *testing.T) {
	t.Parallel()

	in := `{"objective_line":"x","zeta":"1","alpha":"2","mid":"3"}`
	var m struct {
		R DiagnosticResults `json:"r"`
	}
	if err := json.Unmarshal([]byte(`{"r":`+in+`}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(m.R) != 4 || m.R[1].Test != "zeta" || m.R[2].Test != "alpha" {
		t.Fatalf("results=%+v", m.R)
	}
	if v, ok := m.R.Get("mid"); !ok || v != "3" {
		t.Fatalf("Get(mid)=%q,%v", v, ok)
	}
	out, err := json.Marshal(m.R)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("json=%s, want %s", out, in)
	}
}

func TestDiagnosticResults_AcceptsPairs(t *testing.T) {
	t.Parallel()

	var r DiagnosticResults
	if err := json.Unmarshal([]byte(`[{"test":"HbA1c","result":"8.2%"},{"test":"LDL","result":"130"}]`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, _ := json.Marshal(r)
	if string(out) != `{"HbA1c":"8.2%","LDL":"130"}` {
		t.Fatalf("json=%s", out)
	}

	if err := json.Unmarshal([]byte(`"HbA1c 8.2%"`), &r); err == nil {
		t.Fatalf("expected error for a string")
	}
}

func TestDiagnosticResults_ObjectKeepsRepeatedTests(t *testing.T) {
	t.Parallel()

	var r DiagnosticResults
	if err := json.Unmarshal([]byte(`{"A1c":"7.2","A1c":"8.0"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(r) != 2 || r[0].Result != "7.2" || r[1].Result != "8.0" {
		t.Fatalf("results=%+v, want both A1c pairs", r)
	}

	raw := strings.Replace(footPainJSON, `"diagnostic_results": null`, `"diagnostic_results": {"A1c": "7.2", "A1c": "8.0"}`, 1)
	_, err := DecodeRecord(raw)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v, want *ValidationError", err)
	}
	if ve.Path() != "objective.diagnostic_results" || ve.Violations[0].Rule != "unique" {
		t.Fatalf("violations=%+v, want unique at objective.diagnostic_results", ve.Violations)
	}

	if err := json.Unmarshal([]byte(`{"A1c": 7.2}`), &r); err == nil {
		t.Fatalf("expected error for a numeric result")
	}
}
