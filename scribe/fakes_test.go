package scribe

import (
	"context"
	"errors"
	"sync/atomic"
)

// footPainJSON is what a schema-constrained completion returns for the narrative
// "Patient reports foot pain. BP 140/90, HR 78. Diagnosed with diabetic neuropathy (E11.40), stable."
const footPainJSON = `{
  "visit_date": null,
  "subjective": {
    "patient_name": null,
    "age": null,
    "gender": null,
    "ethnicity": null,
    "chief_complaint": "Foot pain",
    "history_present_illness": "Patient reports foot pain.",
    "medical_history": [],
    "surgical_history": null,
    "family_history": null,
    "social_history": null,
    "current_medications": [],
    "allergies": null,
    "review_of_systems": null
  },
  "objective": {
    "vital_signs": {
      "blood_pressure_systolic": 140,
      "blood_pressure_diastolic": 90,
      "heart_rate": 78,
      "respiratory_rate": null,
      "temperature": null,
      "oxygen_saturation": null,
      "oxygen_saturation_on_room_air": null,
      "weight_kg": null,
      "bmi": null,
      "weight_change": null
    },
    "physical_exam": null,
    "diagnostic_results": null
  },
  "assessment": {
    "primary_diagnoses": [
      {"condition": "diabetic neuropathy", "icd10_code": "E11.40", "status": "stable", "severity": null}
    ],
    "secondary_diagnoses": null,
    "social_determinants": null,
    "clinical_impression": null
  },
  "plan": {
    "medications": null,
    "orders": null,
    "referrals": null,
    "care_coordination": null,
    "patient_education": null,
    "follow_up": null,
    "preventive_care": null
  },
  "billing_info": null
}`

const footPainNarrative = "Patient reports foot pain. BP 140/90, HR 78. Diagnosed with diabetic neuropathy (E11.40), stable."

type fakeCompleter struct {
	out   string
	err   error
	calls atomic.Int32
	last  StructuredRequest
}

func (f *fakeCompleter) CompleteStructured(ctx context.Context, req StructuredRequest) (string, error) {
	f.calls.Add(1)
	f.last = req
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.out, f.err
}

// sliceStream replays fragments and then reports err.
type sliceStream struct {
	fragments []string
	err       error
	i         int
	cur       string
	closed    int
}

func (s *sliceStream) Next() bool {
	if s.closed > 0 || s.i >= len(s.fragments) {
		return false
	}
	s.cur = s.fragments[s.i]
	s.i++
	return true
}

func (s *sliceStream) Current() string { return s.cur }
func (s *sliceStream) Err() error      { return s.err }

func (s *sliceStream) Close() error {
	s.closed++
	return nil
}

type fakeStreamer struct {
	stream  *sliceStream
	openErr error
	calls   atomic.Int32
	input   string
}

func (f *fakeStreamer) StreamText(ctx context.Context, instructions, input string) (FragmentStream, error) {
	f.calls.Add(1)
	f.input = input
	if instructions == "" {
		return nil, errors.New("missing instructions")
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
