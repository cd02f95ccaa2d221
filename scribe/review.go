package scribe

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	icd10Pattern = regexp.MustCompile(`^[A-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)
	cptPattern   = regexp.MustCompile(`^[0-9]{4}[0-9A-Z]$`)

	knownActions = map[string]struct{}{
		ActionStart:       {},
		ActionIncrease:    {},
		ActionDecrease:    {},
		ActionDiscontinue: {},
		ActionContinue:    {},
	}
)

// Finding is a cross-field inconsistency worth a reviewer's attention. Findings never make a
// record invalid.
type Finding struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return f.Path + ": " + f.Message
}

// Review checks the semantic rules that span fields: billing codes against diagnoses, code
// formats, medication actions and blood pressure plausibility. Findings are returned in a stable
// order for a given record.
func Review(rec *ClinicalRecord) []Finding {
	if rec == nil {
		return nil
	}
	var out []Finding

	diagnosed := map[string]struct{}{}
	if rec.Assessment != nil {
		out = reviewDiagnoses(out, "assessment.primary_diagnoses", rec.Assessment.PrimaryDiagnoses, diagnosed)
		out = reviewDiagnoses(out, "assessment.secondary_diagnoses", rec.Assessment.SecondaryDiagnoses, diagnosed)
	}

	if b := rec.BillingInfo; b != nil {
		if !cptPattern.MatchString(b.CPTCode) {
			out = append(out, Finding{Path: "billing_info.cpt_code", Message: fmt.Sprintf("%q is not a CPT code", b.CPTCode)})
		}
		billed := map[string]struct{}{}
		for i, code := range b.ICD10Codes {
			path := fmt.Sprintf("billing_info.icd10_codes[%d]", i)
			key := normalizeCode(code)
			billed[key] = struct{}{}
			if !icd10Pattern.MatchString(key) {
				out = append(out, Finding{Path: path, Message: fmt.Sprintf("%q is not an ICD-10 code", code)})
				continue
			}
			if _, ok := diagnosed[key]; !ok {
				out = append(out, Finding{Path: path, Message: fmt.Sprintf("%s is billed but not on any diagnosis", code)})
			}
		}
		if rec.Assessment != nil {
			for i, d := range rec.Assessment.PrimaryDiagnoses {
				if d.ICD10Code == nil {
					continue
				}
				if _, ok := billed[normalizeCode(*d.ICD10Code)]; !ok {
					out = append(out, Finding{
						Path:    fmt.Sprintf("assessment.primary_diagnoses[%d].icd10_code", i),
						Message: fmt.Sprintf("%s is diagnosed but missing from billing", *d.ICD10Code),
					})
				}
			}
		}
	}

	if rec.Plan != nil {
		for i, m := range rec.Plan.Medications {
			if _, ok := knownActions[strings.ToLower(strings.TrimSpace(m.Action))]; !ok {
				out = append(out, Finding{
					Path:    fmt.Sprintf("plan.medications[%d].action", i),
					Message: fmt.Sprintf("unknown action %q", m.Action),
				})
			}
		}
	}

	if rec.Objective != nil && rec.Objective.VitalSigns != nil {
		vs := rec.Objective.VitalSigns
		if vs.BloodPressureSystolic != nil && vs.BloodPressureDiastolic != nil && *vs.BloodPressureDiastolic >= *vs.BloodPressureSystolic {
			out = append(out, Finding{
				Path:    "objective.vital_signs",
				Message: fmt.Sprintf("diastolic %d is not below systolic %d", *vs.BloodPressureDiastolic, *vs.BloodPressureSystolic),
			})
		}
	}
	return out
}

func reviewDiagnoses(out []Finding, base string, dx []Diagnosis, seen map[string]struct{}) []Finding {
	for i, d := range dx {
		if d.ICD10Code == nil {
			continue
		}
		key := normalizeCode(*d.ICD10Code)
		if !icd10Pattern.MatchString(key) {
			out = append(out, Finding{
				Path:    fmt.Sprintf("%s[%d].icd10_code", base, i),
				Message: fmt.Sprintf("%q is not an ICD-10 code", *d.ICD10Code),
			})
			continue
		}
		seen[key] = struct{}{}
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
