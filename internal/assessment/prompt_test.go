package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildConcernPromptContainsInput(t *testing.T) {
	prompt := BuildConcernPrompt(HealthContext{}, "I have a persistent headache")

	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "I have a persistent headache")
	assert.Contains(t, prompt, "CareLink AI")
	assert.Contains(t, prompt, "valid JSON")
}

func TestBuildConcernPromptSerializesContext(t *testing.T) {
	ctx := HealthContext{
		Age:             62,
		Gender:          "female",
		KnownConditions: []string{"hypertension", "type 2 diabetes"},
		Medications:     []string{"metformin"},
		Allergies:       []string{"penicillin"},
	}

	prompt := BuildConcernPrompt(ctx, "dizzy spells")

	assert.Contains(t, prompt, "62")
	assert.Contains(t, prompt, "female")
	assert.Contains(t, prompt, "hypertension")
	assert.Contains(t, prompt, "type 2 diabetes")
	assert.Contains(t, prompt, "metformin")
	assert.Contains(t, prompt, "penicillin")
}

func TestBuildConcernPromptEmptyContext(t *testing.T) {
	prompt := BuildConcernPrompt(HealthContext{}, "sore throat")
	assert.Contains(t, prompt, "{}")
}

func TestBuildSketchPromptContainsAllLocations(t *testing.T) {
	sketch := PainSketch{
		BodyPart: "lower back",
		PainLocations: []PainLocation{
			{X: 120, Y: 340, Type: "stabbing", Intensity: 8},
			{X: 90.5, Y: 310.25, Type: "dull", Intensity: 4},
		},
		Notes: "worse in the morning",
	}

	prompt := BuildSketchPrompt(HealthContext{}, sketch)

	assert.Contains(t, prompt, "lower back")
	assert.Contains(t, prompt, "stabbing")
	assert.Contains(t, prompt, "dull")
	assert.Contains(t, prompt, "8/10")
	assert.Contains(t, prompt, "4/10")
	assert.Contains(t, prompt, "(120, 340)")
	assert.Contains(t, prompt, "(90.5, 310.25)")
	assert.Contains(t, prompt, "worse in the morning")
}

func TestBuildSketchPromptOmitsEmptyNotes(t *testing.T) {
	sketch := PainSketch{
		BodyPart:      "chest",
		PainLocations: []PainLocation{{X: 1, Y: 2, Type: "pressure", Intensity: 9}},
	}

	prompt := BuildSketchPrompt(HealthContext{}, sketch)
	assert.NotContains(t, prompt, "Additional notes:")
}

func TestBuildVisualPromptContainsModifiers(t *testing.T) {
	obs := VisualObservation{
		Description:   "pale, sweating heavily, clutching left arm",
		AgeGroup:      AgeGroupElderly,
		Consciousness: ConsciousnessConfused,
	}

	prompt := BuildVisualPrompt(HealthContext{}, obs)

	assert.Contains(t, prompt, "pale, sweating heavily, clutching left arm")
	assert.Contains(t, prompt, "elderly")
	assert.Contains(t, prompt, "confused")
}

func TestBuildVisualPromptDefaultsToUnknown(t *testing.T) {
	prompt := BuildVisualPrompt(HealthContext{}, VisualObservation{Description: "shaking"})

	assert.Equal(t, 2, strings.Count(prompt, "unknown"))
}

func TestBuildVitalsPromptContainsAllValues(t *testing.T) {
	reading := VitalsReading{
		Vitals: VitalSigns{
			HeartRate:       "180",
			Systolic:        "90",
			Diastolic:       "50",
			OxygenSat:       "85",
			Temperature:     "101",
			RespiratoryRate: "28",
		},
		Notes: "feeling faint",
	}

	prompt := BuildVitalsPrompt(HealthContext{}, reading)

	for _, want := range []string{"180", "90", "50", "85", "101", "28", "feeling faint"} {
		assert.Contains(t, prompt, want)
	}
}
