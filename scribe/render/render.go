// Package render turns a validated ClinicalRecord into a reviewable document tree and serializes
// it as HTML or plain text.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/thapar25/EMR/scribe"
)

// Field is one labeled value. A field carries either a Value or nested Items. Missing marks a
// field a reviewer expects to see filled; it is distinct from a stated empty list, which renders
// as NoneReported.
type Field struct {
	Label   string  `json:"label,omitempty"`
	Value   string  `json:"value,omitempty"`
	Items   []Field `json:"items,omitempty"`
	Missing bool    `json:"missing,omitempty"`
}

// Section is one collapsible group of the document.
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Document is the rendered form of a record.
type Document struct {
	Title     string    `json:"title"`
	VisitDate Field     `json:"visit_date"`
	Sections  []Section `json:"sections"`
	Findings  []string  `json:"findings,omitempty"`
}

// NoneReported is the value of a list the record states as empty.
const NoneReported = "None reported"

// MissingFields lists every field flagged missing as "SECTION › Label" paths, in document order.
func (d Document) MissingFields() []string {
	var out []string
	if d.VisitDate.Missing {
		out = append(out, d.VisitDate.Label)
	}
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			out = appendMissing(out, s.Title, f)
		}
	}
	return out
}

func appendMissing(out []string, prefix string, f Field) []string {
	path := prefix + " › " + f.Label
	if f.Missing {
		return append(out, path)
	}
	for _, item := range f.Items {
		if item.Label == "" {
			continue
		}
		out = appendMissing(out, path, item)
	}
	return out
}

// Render builds the document for rec. It works on a normalized copy, so blank optional text is
// shown as missing and rec itself is left untouched. A copy that fails scribe.Validate is rejected
// with a *scribe.RenderError; for a valid record Render never fails and always yields the same
// document.
func Render(rec *scribe.ClinicalRecord) (Document, error) {
	rec, err := normalizedCopy(rec)
	if err != nil {
		return Document{}, &scribe.RenderError{Err: err}
	}
	if err := scribe.Validate(rec); err != nil {
		return Document{}, &scribe.RenderError{Err: err}
	}

	doc := Document{
		Title:     "SOAP Note",
		VisitDate: missingUnless("Date of Visit", dateValue(rec.VisitDate)),
		Sections: []Section{
			subjectiveSection(rec.Subjective),
			objectiveSection(rec.Objective),
			assessmentSection(rec.Assessment),
			planSection(rec.Plan),
			billingSection(rec.BillingInfo),
		},
	}
	for _, f := range scribe.Review(rec) {
		doc.Findings = append(doc.Findings, f.String())
	}
	return doc, nil
}

func normalizedCopy(rec *scribe.ClinicalRecord) (*scribe.ClinicalRecord, error) {
	if rec == nil {
		return nil, nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	var out scribe.ClinicalRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	scribe.Normalize(&out)
	return &out, nil
}

func subjectiveSection(s *scribe.Subjective) Section {
	return Section{
		Key:   "subjective",
		Title: "SUBJECTIVE",
		Fields: []Field{
			{
				Label: "Demographics",
				Items: []Field{
					missingUnless("Name", str(s.PatientName)),
					missingUnless("Age", intValue(s.Age, "")),
					missingUnless("Gender", str(s.Gender)),
					missingUnless("Ethnicity", str(s.Ethnicity)),
				},
			},
			missingUnless("Chief Complaint", s.ChiefComplaint),
			missingUnless("History of Present Illness", s.HistoryOfPresentIllness),
			statedList("Medical History", s.MedicalHistory),
			list("Surgical History", s.SurgicalHistory),
			missingUnless("Family History", str(s.FamilyHistory)),
			socialHistory(s.SocialHistory),
			currentMedications(s.CurrentMedications),
			list("Allergies", s.Allergies),
			missingUnless("Review of Systems", str(s.ReviewOfSystems)),
		},
	}
}

func socialHistory(sh *scribe.SocialHistory) Field {
	f := Field{Label: "Social History"}
	if sh == nil {
		f.Missing = true
		return f
	}
	f.Items = []Field{
		missingUnless("Living situation", str(sh.LivingSituation)),
		missingUnless("Occupation", str(sh.Occupation)),
		missingUnless("Employment status", str(sh.EmploymentStatus)),
	}
	for _, flag := range []struct {
		label string
		v     *bool
	}{
		{"Transportation barriers", sh.TransportationBarriers},
		{"Food insecurity", sh.FoodInsecurity},
		{"Financial strain", sh.FinancialStrain},
	} {
		if flag.v != nil {
			f.Items = append(f.Items, Field{Label: flag.label, Value: yesNo(*flag.v)})
		}
	}
	f.Items = append(f.Items, missingUnless("Housing stability", str(sh.HousingStability)))
	return f
}

func currentMedications(meds []scribe.Medication) Field {
	f := Field{Label: "Current Medications"}
	if len(meds) == 0 {
		f.Value = NoneReported
		return f
	}
	for _, m := range meds {
		parts := []string{m.Dosage, m.Frequency}
		if m.Route != nil {
			parts = append(parts, *m.Route)
		}
		f.Items = append(f.Items, Field{Value: fmt.Sprintf("%s (%s)", m.Name, strings.Join(parts, ", "))})
	}
	return f
}

func objectiveSection(o *scribe.Objective) Section {
	results := Field{Label: "Diagnostic Tests"}
	for _, r := range o.DiagnosticResults {
		results.Items = append(results.Items, Field{Label: r.Test, Value: r.Result})
	}
	results.Missing = len(results.Items) == 0

	return Section{
		Key:   "objective",
		Title: "OBJECTIVE",
		Fields: []Field{
			vitalSigns(o.VitalSigns),
			physicalExam(o.PhysicalExam),
			results,
		},
	}
}

func vitalSigns(vs *scribe.VitalSigns) Field {
	f := Field{Label: "Vital Signs"}
	if vs != nil {
		add := func(label, value string) {
			if value != "" {
				f.Items = append(f.Items, Field{Label: label, Value: value})
			}
		}
		if vs.BloodPressureSystolic != nil && vs.BloodPressureDiastolic != nil {
			add("Blood Pressure", fmt.Sprintf("%d/%d mmHg", *vs.BloodPressureSystolic, *vs.BloodPressureDiastolic))
		} else {
			add("Systolic Blood Pressure", intValue(vs.BloodPressureSystolic, " mmHg"))
			add("Diastolic Blood Pressure", intValue(vs.BloodPressureDiastolic, " mmHg"))
		}
		add("Heart Rate", intValue(vs.HeartRate, " bpm"))
		add("Respiratory Rate", intValue(vs.RespiratoryRate, "/min"))
		add("Temperature", floatValue(vs.Temperature, " °F"))
		add("SpO₂", intValue(vs.OxygenSaturation, "%"))
		if vs.OxygenSaturationOnRoomAir != nil {
			add("O₂ on room air", yesNo(*vs.OxygenSaturationOnRoomAir))
		}
		add("Weight", floatValue(vs.WeightKg, " kg"))
		add("BMI", floatValue(vs.BMI, ""))
		add("Weight Change", str(vs.WeightChange))
	}
	f.Missing = len(f.Items) == 0
	return f
}

func physicalExam(pe *scribe.PhysicalExam) Field {
	f := Field{Label: "Physical Examination"}
	if pe != nil {
		for _, e := range []struct {
			label string
			v     *string
		}{
			{"General", pe.GeneralAppearance},
			{"Cardiovascular", pe.Cardiovascular},
			{"Respiratory", pe.Respiratory},
			{"Extremities", pe.Extremities},
			{"Neurological", pe.Neurological},
			{"Skin", pe.Skin},
			{"Musculoskeletal", pe.Musculoskeletal},
			{"Other", pe.OtherFindings},
		} {
			if v := str(e.v); v != "" {
				f.Items = append(f.Items, Field{Label: e.label, Value: v})
			}
		}
	}
	f.Missing = len(f.Items) == 0
	return f
}

func assessmentSection(a *scribe.Assessment) Section {
	return Section{
		Key:   "assessment",
		Title: "ASSESSMENT",
		Fields: []Field{
			diagnoses("Primary Diagnoses", a.PrimaryDiagnoses),
			diagnoses("Secondary Diagnoses", a.SecondaryDiagnoses),
			list("Social Determinants of Health", a.SocialDeterminants),
			missingUnless("Clinical Impression", str(a.ClinicalImpression)),
		},
	}
}

// diagnoses keeps the record's order, which is clinical priority for primary diagnoses.
func diagnoses(label string, dx []scribe.Diagnosis) Field {
	f := Field{Label: label}
	for _, d := range dx {
		var detail []string
		if d.ICD10Code != nil {
			detail = append(detail, "ICD-10: "+*d.ICD10Code)
		}
		if d.Status != nil {
			detail = append(detail, "Status: "+*d.Status)
		}
		if d.Severity != nil {
			detail = append(detail, "Severity: "+*d.Severity)
		}
		f.Items = append(f.Items, Field{Value: withDetail(d.Condition, detail)})
	}
	f.Missing = len(f.Items) == 0
	return f
}

func planSection(p *scribe.Plan) Section {
	meds := Field{Label: "Medications"}
	for _, m := range p.Medications {
		detail := []string{m.Dosage, m.Frequency}
		if m.Indication != nil {
			detail = append(detail, "Indication: "+*m.Indication)
		}
		meds.Items = append(meds.Items, Field{Value: withDetail(capitalize(m.Action)+" "+m.Medication, detail)})
	}
	meds.Missing = len(meds.Items) == 0

	orders := Field{Label: "Diagnostic Orders"}
	for _, o := range p.Orders {
		var detail []string
		if o.Indication != nil {
			detail = append(detail, "Indication: "+*o.Indication)
		}
		if o.Timing != nil {
			detail = append(detail, "Timing: "+*o.Timing)
		}
		orders.Items = append(orders.Items, Field{Value: withDetail(capitalize(o.Type)+": "+o.Description, detail)})
	}
	orders.Missing = len(orders.Items) == 0

	referrals := Field{Label: "Referrals"}
	for _, r := range p.Referrals {
		var detail []string
		if r.Urgency != nil {
			detail = append(detail, "Urgency: "+*r.Urgency)
		}
		referrals.Items = append(referrals.Items, Field{Value: withDetail(r.Specialty+": "+r.Reason, detail)})
	}
	referrals.Missing = len(referrals.Items) == 0

	return Section{
		Key:   "plan",
		Title: "PLAN",
		Fields: []Field{
			meds,
			orders,
			referrals,
			careCoordination(p.CareCoordination),
			list("Patient Education", p.PatientEducation),
			followUp(p.FollowUp),
			list("Preventive Care", p.PreventiveCare),
		},
	}
}

func careCoordination(cc *scribe.CareCoordination) Field {
	f := Field{Label: "Care Coordination"}
	if cc == nil {
		f.Missing = true
		return f
	}
	f.Items = []Field{
		missingUnless("Care manager involved", boolValue(cc.CareManagerInvolved)),
		missingUnless("Care manager", str(cc.CareManagerName)),
		missingUnless("Services coordinated", strings.Join(cc.ServicesCoordinated, ", ")),
		missingUnless("Home health ordered", boolValue(cc.HomeHealthOrdered)),
		missingUnless("Social services referral", boolValue(cc.SocialServicesReferral)),
	}
	return f
}

func followUp(fu *scribe.FollowUp) Field {
	if fu == nil {
		return Field{Label: "Follow-up", Missing: true}
	}
	parts := []string{fu.Timing}
	if v := str(fu.Location); v != "" {
		parts = append(parts, v)
	}
	if v := str(fu.Purpose); v != "" {
		parts = append(parts, v)
	}
	return Field{Label: "Follow-up", Value: strings.Join(parts, ", ")}
}

func billingSection(b *scribe.BillingInfo) Section {
	s := Section{Key: "billing_info", Title: "BILLING INFORMATION"}
	if b == nil {
		s.Fields = []Field{
			{Label: "CPT Code", Missing: true},
			{Label: "Visit Complexity", Missing: true},
			{Label: "ICD-10 Codes", Missing: true},
		}
		return s
	}
	s.Fields = []Field{
		missingUnless("CPT Code", b.CPTCode),
		missingUnless("Visit Complexity", str(b.VisitComplexity)),
		list("ICD-10 Codes", b.ICD10Codes),
	}
	return s
}

func missingUnless(label, value string) Field {
	return Field{Label: label, Value: value, Missing: value == ""}
}

// list renders an optional list; absent or empty is missing.
func list(label string, items []string) Field {
	f := Field{Label: label}
	for _, it := range items {
		f.Items = append(f.Items, Field{Value: it})
	}
	f.Missing = len(f.Items) == 0
	return f
}

// statedList renders a list that is always present; empty means the record states none.
func statedList(label string, items []string) Field {
	f := list(label, items)
	if f.Missing {
		f.Missing = false
		f.Value = NoneReported
	}
	return f
}

func withDetail(head string, detail []string) string {
	if len(detail) == 0 {
		return head
	}
	return head + " (" + strings.Join(detail, ", ") + ")"
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intValue(p *int, unit string) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p) + unit
}

func floatValue(p *float64, unit string) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64) + unit
}

func boolValue(p *bool) string {
	if p == nil {
		return ""
	}
	return yesNo(*p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dateValue(d *scribe.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
