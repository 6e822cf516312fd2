package assessment

// Severity levels for a health assessment
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Age groups for visual observations
const (
	AgeGroupChild   = "child"
	AgeGroupAdult   = "adult"
	AgeGroupElderly = "elderly"
)

// Consciousness levels for visual observations
const (
	ConsciousnessAlert        = "alert"
	ConsciousnessConfused     = "confused"
	ConsciousnessUnresponsive = "unresponsive"
)

// HealthContext is the ambient patient profile included in every prompt
// until replaced. It is never persisted.
type HealthContext struct {
	Age             int      `json:"age,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	KnownConditions []string `json:"knownConditions,omitempty"`
	Medications     []string `json:"medications,omitempty"`
	Allergies       []string `json:"allergies,omitempty"`
}

// PainLocation is a single marked point on a pain sketch. Coordinates are
// canvas pixels; intensity is 1..10.
type PainLocation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Type      string  `json:"type"`
	Intensity int     `json:"intensity"`
}

// PainSketch describes pain marked on a body diagram
type PainSketch struct {
	BodyPart      string         `json:"bodyPart"`
	PainLocations []PainLocation `json:"painLocations"`
	Notes         string         `json:"notes,omitempty"`
}

// VisualObservation describes symptoms a bystander observes in another person
type VisualObservation struct {
	Description   string `json:"description"`
	AgeGroup      string `json:"ageGroup,omitempty"`
	Consciousness string `json:"consciousness,omitempty"`
}

// VitalSigns holds a set of measured vitals. Values stay strings end to end;
// the model interprets them and the UI echoes them back verbatim.
type VitalSigns struct {
	HeartRate       string `json:"heartRate"`
	Systolic        string `json:"systolic"`
	Diastolic       string `json:"diastolic"`
	OxygenSat       string `json:"oxygenSat"`
	Temperature     string `json:"temperature"`
	RespiratoryRate string `json:"respiratoryRate,omitempty"`
}

// VitalsReading pairs vitals with free-text notes for assessment
type VitalsReading struct {
	Vitals VitalSigns `json:"vitals"`
	Notes  string     `json:"notes,omitempty"`
}

// HealthAssessment is the response contract with the model. Severity and
// Emergency must jointly make sense to a downstream UI; the prompts instruct
// the model to set Emergency for acutely life-threatening high-severity
// conditions.
type HealthAssessment struct {
	Response          string   `json:"response"`
	Severity          string   `json:"severity"`
	Mood              string   `json:"mood"`
	Recommendations   []string `json:"recommendations"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	Emergency         bool     `json:"emergency"`

	// Fallback marks an assessment substituted after a pipeline failure.
	// It is for callers that want to distinguish a genuine model answer
	// from the generic guidance; it is not part of the wire contract.
	Fallback bool `json:"-"`
}
