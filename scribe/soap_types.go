package scribe

// ClinicalRecord is a complete SOAP note extracted from one clinical narrative.
// The four core sections are always present once a record passes Validate; BillingInfo is present
// only when the source narrative carried billing content.
type ClinicalRecord struct {
	VisitDate   *Date        `json:"visit_date,omitempty" jsonschema_description:"Date of visit (YYYY-MM-DD)" validate:"-"`
	Subjective  *Subjective  `json:"subjective" jsonschema:"required" jsonschema_description:"Subjective section" validate:"required"`
	Objective   *Objective   `json:"objective" jsonschema:"required" jsonschema_description:"Objective section" validate:"required"`
	Assessment  *Assessment  `json:"assessment" jsonschema:"required" jsonschema_description:"Assessment section" validate:"required"`
	Plan        *Plan        `json:"plan" jsonschema:"required" jsonschema_description:"Plan section" validate:"required"`
	BillingInfo *BillingInfo `json:"billing_info,omitempty" jsonschema_description:"Billing information, only when billing content was stated"`
}

// Subjective holds what the patient reports.
type Subjective struct {
	PatientName *string `json:"patient_name,omitempty" jsonschema_description:"Patient name"`
	Age         *int    `json:"age,omitempty" jsonschema_description:"Patient age in years"`
	Gender      *string `json:"gender,omitempty" jsonschema_description:"Patient gender"`
	Ethnicity   *string `json:"ethnicity,omitempty" jsonschema_description:"Patient ethnicity"`

	ChiefComplaint          string `json:"chief_complaint" jsonschema:"required" jsonschema_description:"Primary reason for visit" validate:"nonblank"`
	HistoryOfPresentIllness string `json:"history_present_illness" jsonschema:"required" jsonschema_description:"Detailed HPI narrative" validate:"nonblank"`

	// MedicalHistory is always serialized, empty when nothing was stated.
	MedicalHistory  []string       `json:"medical_history" jsonschema:"required" jsonschema_description:"Past medical history" validate:"dive,nonblank"`
	SurgicalHistory []string       `json:"surgical_history,omitempty" jsonschema_description:"Past surgical history" validate:"omitempty,dive,nonblank"`
	FamilyHistory   *string        `json:"family_history,omitempty" jsonschema_description:"Relevant family history"`
	SocialHistory   *SocialHistory `json:"social_history,omitempty" jsonschema_description:"Social history details"`

	// CurrentMedications is always serialized, empty when nothing was stated.
	CurrentMedications []Medication `json:"current_medications" jsonschema:"required" jsonschema_description:"Current medications" validate:"dive"`
	Allergies          []string     `json:"allergies,omitempty" jsonschema_description:"Known allergies" validate:"omitempty,dive,nonblank"`
	ReviewOfSystems    *string      `json:"review_of_systems,omitempty" jsonschema_description:"Additional symptoms mentioned"`
}

// Medication is a medication the patient currently takes.
type Medication struct {
	Name      string  `json:"name" jsonschema:"required" jsonschema_description:"Medication name" validate:"nonblank"`
	Dosage    string  `json:"dosage" jsonschema:"required" jsonschema_description:"Dosage amount" validate:"nonblank"`
	Frequency string  `json:"frequency" jsonschema:"required" jsonschema_description:"Frequency (e.g. BID, daily, TID)" validate:"nonblank"`
	Route     *string `json:"route,omitempty" jsonschema_description:"Route of administration"`
}

// SocialHistory captures living conditions and social determinants reported by the patient.
type SocialHistory struct {
	LivingSituation        *string `json:"living_situation,omitempty" jsonschema_description:"Who the patient lives with"`
	Occupation             *string `json:"occupation,omitempty" jsonschema_description:"Current or former occupation"`
	EmploymentStatus       *string `json:"employment_status,omitempty" jsonschema_description:"Working, retired, etc."`
	TransportationBarriers *bool   `json:"transportation_barriers,omitempty" jsonschema_description:"Has transportation difficulties"`
	FoodInsecurity         *bool   `json:"food_insecurity,omitempty" jsonschema_description:"Experiences food insecurity"`
	FinancialStrain        *bool   `json:"financial_strain,omitempty" jsonschema_description:"Has financial difficulties"`
	HousingStability       *string `json:"housing_stability,omitempty" jsonschema_description:"Housing situation"`
}

// Objective holds measured and observed findings.
type Objective struct {
	VitalSigns        *VitalSigns       `json:"vital_signs,omitempty" jsonschema_description:"Vital sign measurements"`
	PhysicalExam      *PhysicalExam     `json:"physical_exam,omitempty" jsonschema_description:"Physical examination findings"`
	DiagnosticResults DiagnosticResults `json:"diagnostic_results,omitempty" jsonschema_description:"Lab or test results mentioned" validate:"omitempty,unique=Test,dive"`
}

// VitalSigns are the vital sign measurements stated for the visit.
type VitalSigns struct {
	BloodPressureSystolic     *int     `json:"blood_pressure_systolic,omitempty" jsonschema_description:"Systolic BP in mmHg"`
	BloodPressureDiastolic    *int     `json:"blood_pressure_diastolic,omitempty" jsonschema_description:"Diastolic BP in mmHg"`
	HeartRate                 *int     `json:"heart_rate,omitempty" jsonschema_description:"Heart rate in bpm"`
	RespiratoryRate           *int     `json:"respiratory_rate,omitempty" jsonschema_description:"Respiratory rate per minute"`
	Temperature               *float64 `json:"temperature,omitempty" jsonschema_description:"Temperature in Fahrenheit"`
	OxygenSaturation          *int     `json:"oxygen_saturation,omitempty" jsonschema_description:"SpO2 percentage"`
	OxygenSaturationOnRoomAir *bool    `json:"oxygen_saturation_on_room_air,omitempty" jsonschema_description:"Whether SpO2 was measured on room air"`
	WeightKg                  *float64 `json:"weight_kg,omitempty" jsonschema_description:"Weight in kilograms"`
	BMI                       *float64 `json:"bmi,omitempty" jsonschema_description:"Body Mass Index"`
	WeightChange              *string  `json:"weight_change,omitempty" jsonschema_description:"Weight change from previous visit"`
}

// PhysicalExam holds free-text findings by body system.
type PhysicalExam struct {
	GeneralAppearance *string `json:"general_appearance,omitempty" jsonschema_description:"General appearance"`
	Cardiovascular    *string `json:"cardiovascular,omitempty" jsonschema_description:"Cardiovascular exam findings"`
	Respiratory       *string `json:"respiratory,omitempty" jsonschema_description:"Respiratory exam findings"`
	Extremities       *string `json:"extremities,omitempty" jsonschema_description:"Extremity exam findings"`
	Neurological      *string `json:"neurological,omitempty" jsonschema_description:"Neurological exam findings"`
	Skin              *string `json:"skin,omitempty" jsonschema_description:"Skin exam findings"`
	Musculoskeletal   *string `json:"musculoskeletal,omitempty" jsonschema_description:"Musculoskeletal findings"`
	OtherFindings     *string `json:"other_findings,omitempty" jsonschema_description:"Other examination findings"`
}

// Assessment holds the clinician's diagnoses. PrimaryDiagnoses are in priority order.
type Assessment struct {
	PrimaryDiagnoses   []Diagnosis `json:"primary_diagnoses" jsonschema:"required" jsonschema_description:"Primary diagnoses in order of priority" validate:"required,min=1,dive"`
	SecondaryDiagnoses []Diagnosis `json:"secondary_diagnoses,omitempty" jsonschema_description:"Secondary or chronic diagnoses" validate:"omitempty,dive"`
	SocialDeterminants []string    `json:"social_determinants,omitempty" jsonschema_description:"Social factors affecting health" validate:"omitempty,dive,nonblank"`
	ClinicalImpression *string     `json:"clinical_impression,omitempty" jsonschema_description:"Overall clinical assessment"`
}

// Diagnosis is one assessed condition.
type Diagnosis struct {
	Condition string  `json:"condition" jsonschema:"required" jsonschema_description:"Diagnosis or condition name" validate:"nonblank"`
	ICD10Code *string `json:"icd10_code,omitempty" jsonschema_description:"ICD-10 diagnosis code"`
	Status    *string `json:"status,omitempty" jsonschema_description:"Active, stable, worsening, etc."`
	Severity  *string `json:"severity,omitempty" jsonschema_description:"Mild, moderate, severe"`
}

// Plan holds everything decided for after the visit.
type Plan struct {
	Medications      []MedicationAction `json:"medications,omitempty" jsonschema_description:"Medication changes" validate:"omitempty,dive"`
	Orders           []Order            `json:"orders,omitempty" jsonschema_description:"Diagnostic orders" validate:"omitempty,dive"`
	Referrals        []Referral         `json:"referrals,omitempty" jsonschema_description:"Specialist referrals" validate:"omitempty,dive"`
	CareCoordination *CareCoordination  `json:"care_coordination,omitempty" jsonschema_description:"Care team coordination"`
	PatientEducation []string           `json:"patient_education,omitempty" jsonschema_description:"Education provided" validate:"omitempty,dive,nonblank"`
	FollowUp         *FollowUp          `json:"follow_up,omitempty" jsonschema_description:"Follow-up plans"`
	PreventiveCare   []string           `json:"preventive_care,omitempty" jsonschema_description:"Vaccines and screenings provided" validate:"omitempty,dive,nonblank"`
}

// Medication actions recognised by Review. Action itself is stored as free text.
const (
	ActionStart       = "start"
	ActionIncrease    = "increase"
	ActionDecrease    = "decrease"
	ActionDiscontinue = "discontinue"
	ActionContinue    = "continue"
)

// MedicationAction is a medication change decided in the plan.
type MedicationAction struct {
	Medication string  `json:"medication" jsonschema:"required" jsonschema_description:"Medication name" validate:"nonblank"`
	Action     string  `json:"action" jsonschema:"required" jsonschema_description:"start, increase, decrease, discontinue or continue" validate:"nonblank"`
	Dosage     string  `json:"dosage" jsonschema:"required" jsonschema_description:"New or current dosage" validate:"nonblank"`
	Frequency  string  `json:"frequency" jsonschema:"required" jsonschema_description:"Dosing frequency" validate:"nonblank"`
	Indication *string `json:"indication,omitempty" jsonschema_description:"What condition this treats"`
}

// Order is a diagnostic order (lab, imaging, procedure).
type Order struct {
	Type        string  `json:"type" jsonschema:"required" jsonschema_description:"lab, imaging, procedure, etc." validate:"nonblank"`
	Description string  `json:"description" jsonschema:"required" jsonschema_description:"Specific test or procedure ordered" validate:"nonblank"`
	Indication  *string `json:"indication,omitempty" jsonschema_description:"Clinical reason for order"`
	Timing      *string `json:"timing,omitempty" jsonschema_description:"When to complete"`
}

// Referral is a referral to a specialist or service.
type Referral struct {
	Specialty string  `json:"specialty" jsonschema:"required" jsonschema_description:"Type of specialist or service" validate:"nonblank"`
	Reason    string  `json:"reason" jsonschema:"required" jsonschema_description:"Reason for referral" validate:"nonblank"`
	Urgency   *string `json:"urgency,omitempty" jsonschema_description:"Routine, urgent, stat"`
}

// CareCoordination records care team involvement.
type CareCoordination struct {
	CareManagerInvolved    *bool    `json:"care_manager_involved,omitempty" jsonschema_description:"Care manager participated"`
	CareManagerName        *string  `json:"care_manager_name,omitempty" jsonschema_description:"Name of care manager"`
	ServicesCoordinated    []string `json:"services_coordinated,omitempty" jsonschema_description:"Services arranged" validate:"omitempty,dive,nonblank"`
	HomeHealthOrdered      *bool    `json:"home_health_ordered,omitempty" jsonschema_description:"Home health services ordered"`
	SocialServicesReferral *bool    `json:"social_services_referral,omitempty" jsonschema_description:"Social services involved"`
}

// FollowUp is the follow-up arrangement.
type FollowUp struct {
	Timing   string  `json:"timing" jsonschema:"required" jsonschema_description:"When to follow up (e.g. '2 weeks', '1 month')" validate:"nonblank"`
	Location *string `json:"location,omitempty" jsonschema_description:"Clinic, telehealth, etc."`
	Purpose  *string `json:"purpose,omitempty" jsonschema_description:"Reason for follow-up visit"`
}

// BillingInfo carries the codes needed to bill the visit.
type BillingInfo struct {
	CPTCode         string   `json:"cpt_code" jsonschema:"required" jsonschema_description:"CPT code for visit" validate:"nonblank"`
	VisitComplexity *string  `json:"visit_complexity,omitempty" jsonschema_description:"Low, moderate, high complexity"`
	ICD10Codes      []string `json:"icd10_codes" jsonschema:"required" jsonschema_description:"All ICD-10 codes for billing" validate:"required,min=1,dive,nonblank"`
}
