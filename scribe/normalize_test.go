package scribe

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize_TrimsAndDropsBlanks(t *testing.T) {
	t.Parallel()

	rec := &ClinicalRecord{
		Subjective: &Subjective{
			PatientName:     strPtr("  Jane Doe "),
			Gender:          strPtr("   "),
			ChiefComplaint:  " foot pain\n",
			MedicalHistory:  []string{"diabetes", " ", ""},
			SurgicalHistory: []string{"", "  "},
			SocialHistory:   &SocialHistory{Occupation: strPtr(" ")},
			Allergies:       []string{" penicillin "},
		},
		Objective: &Objective{
			VitalSigns: &VitalSigns{},
			DiagnosticResults: DiagnosticResults{
				{Test: " HbA1c ", Result: " 8.2% "},
				{Test: "", Result: ""},
			},
		},
		Assessment: &Assessment{},
		Plan: &Plan{
			FollowUp:         &FollowUp{Timing: " ", Location: strPtr(""), Purpose: strPtr("recheck")},
			PatientEducation: []string{},
		},
	}
	Normalize(rec)

	s := rec.Subjective
	if s.PatientName == nil || *s.PatientName != "Jane Doe" {
		t.Fatalf("patient_name=%v", s.PatientName)
	}
	if s.Gender != nil {
		t.Fatalf("blank gender should be absent, got %q", *s.Gender)
	}
	if s.ChiefComplaint != "foot pain" {
		t.Fatalf("chief_complaint=%q", s.ChiefComplaint)
	}
	if len(s.MedicalHistory) != 1 || s.MedicalHistory[0] != "diabetes" {
		t.Fatalf("medical_history=%q", s.MedicalHistory)
	}
	if s.SurgicalHistory != nil {
		t.Fatalf("surgical_history=%q, want absent", s.SurgicalHistory)
	}
	if s.SocialHistory != nil {
		t.Fatalf("all-blank social_history should be absent")
	}
	if s.CurrentMedications == nil || len(s.CurrentMedications) != 0 {
		t.Fatalf("current_medications=%v, want empty list", s.CurrentMedications)
	}
	if s.Allergies[0] != "penicillin" {
		t.Fatalf("allergies=%q", s.Allergies)
	}

	if rec.Objective.VitalSigns != nil {
		t.Fatalf("empty vital_signs should be absent")
	}
	// The blank pair is kept so that Validate can name it.
	if len(rec.Objective.DiagnosticResults) != 2 || rec.Objective.DiagnosticResults[0].Test != "HbA1c" {
		t.Fatalf("diagnostic_results=%+v", rec.Objective.DiagnosticResults)
	}

	// Required sections and lists are never removed, even when empty.
	if rec.Assessment == nil || rec.Plan == nil {
		t.Fatalf("required sections removed")
	}
	if rec.Plan.PatientEducation != nil {
		t.Fatalf("empty optional list should be absent")
	}
	// A partly filled follow_up survives with its blank timing; Validate reports it.
	if rec.Plan.FollowUp == nil || rec.Plan.FollowUp.Location != nil || rec.Plan.FollowUp.Timing != "" {
		t.Fatalf("follow_up=%+v", rec.Plan.FollowUp)
	}
}

func TestNormalize_KeepsStatedFalseAndZero(t *testing.T) {
	t.Parallel()

	rec := &ClinicalRecord{
		Subjective: &Subjective{
			ChiefComplaint: "cough",
			SocialHistory:  &SocialHistory{FoodInsecurity: boolPtr(false)},
		},
		Objective: &Objective{VitalSigns: &VitalSigns{HeartRate: intPtr(0)}},
	}
	Normalize(rec)

	if rec.Subjective.SocialHistory == nil || rec.Subjective.SocialHistory.FoodInsecurity == nil || *rec.Subjective.SocialHistory.FoodInsecurity {
		t.Fatalf("food_insecurity=false must survive normalization")
	}
	if rec.Objective.VitalSigns == nil || rec.Objective.VitalSigns.HeartRate == nil {
		t.Fatalf("heart_rate=0 must survive normalization")
	}
}

func TestDecodeRecord_BlankListEntityIsReported(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(footPainJSON,
		`{"condition": "diabetic neuropathy", "icd10_code": "E11.40", "status": "stable", "severity": null}`,
		`{"condition": "diabetic neuropathy", "icd10_code": "E11.40", "status": "stable", "severity": null},
      {"condition": "  ", "icd10_code": null, "status": null, "severity": null}`, 1)
	if raw == footPainJSON {
		t.Fatalf("fixture did not change")
	}

	rec, err := DecodeRecord(raw)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("rec=%v err=%v, want *ValidationError", rec, err)
	}
	if !ve.Has("assessment.primary_diagnoses[1].condition") {
		t.Fatalf("violations=%+v, want assessment.primary_diagnoses[1].condition", ve.Violations)
	}
}

func TestNormalize_DropsBlankStrings(t *testing.T) {
	t.Parallel()

	rec := &ClinicalRecord{Assessment: &Assessment{SocialDeterminants: []string{" ", "housing"}}}
	Normalize(rec)
	if got := rec.Assessment.SocialDeterminants; len(got) != 1 || got[0] != "housing" {
		t.Fatalf("social_determinants=%q, want [housing]", got)
	}
}

func TestNormalize_Nil(t *testing.T) {
	t.Parallel()
	Normalize(nil)
}
