package api

import "github.com/carelink-ai/carelink/internal/assessment"

// ConcernRequest is a free-text health concern
type ConcernRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

// SketchLocation mirrors one marked pain point
type SketchLocation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Type      string  `json:"type" validate:"required"`
	Intensity int     `json:"intensity" validate:"required,gte=1,lte=10"`
}

// SketchRequest is a pain-sketch assessment request
type SketchRequest struct {
	BodyPart      string           `json:"bodyPart" validate:"required,notblank"`
	PainLocations []SketchLocation `json:"painLocations" validate:"required,min=1,dive"`
	Notes         string           `json:"notes"`
}

// VisualRequest is a visual-observation assessment request
type VisualRequest struct {
	Description   string `json:"description" validate:"required,notblank"`
	AgeGroup      string `json:"ageGroup" validate:"omitempty,oneof=child adult elderly"`
	Consciousness string `json:"consciousness" validate:"omitempty,oneof=alert confused unresponsive"`
}

// VitalsRequest is a vitals submission; all readings stay strings
type VitalsRequest struct {
	HeartRate       string `json:"heartRate" validate:"required,notblank"`
	Systolic        string `json:"systolic" validate:"required,notblank"`
	Diastolic       string `json:"diastolic" validate:"required,notblank"`
	OxygenSat       string `json:"oxygenSat" validate:"required,notblank"`
	Temperature     string `json:"temperature" validate:"required,notblank"`
	RespiratoryRate string `json:"respiratoryRate"`
	Notes           string `json:"notes"`
}

// AssessmentResponse wraps an assessment with request bookkeeping. Seq is a
// submission-order sequence number; when two requests race, the UI keeps the
// response with the highest Seq.
type AssessmentResponse struct {
	Assessment *assessment.HealthAssessment `json:"assessment"`
	Fallback   bool                         `json:"fallback"`
	Seq        uint64                       `json:"seq"`
}
