package assessment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt construction is pure: one string per request variant, carrying the
// persona preamble, the serialized patient context, the variant's structured
// data, and an instruction block that pins the model to the JSON response
// contract. Wording tracks what the model has proven to follow; the field
// sets are the contract.

const responseFormat = `{
  "response": "",
  "severity": "",
  "mood": "",
  "recommendations": [],
  "followUpQuestions": [],
  "emergency": boolean
}`

func serializeContext(ctx HealthContext) string {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// BuildConcernPrompt builds the prompt for a free-text health concern
func BuildConcernPrompt(ctx HealthContext, userInput string) string {
	return fmt.Sprintf(`You are CareLink AI, a professional healthcare assistant designed to provide preliminary health assessments.
Your responses should be empathetic, clear, and medically responsible.

Current patient context:
%s

User input: "%s"

Analyze this health concern and provide a structured response in JSON format with the following fields:
- response: A compassionate, professional reply to the user's concern (2-3 sentences)
- severity: 'low', 'medium', or 'high' based on potential risk
- mood: Your emotional tone (e.g., 'Calm', 'Concerned', 'Urgent')
- recommendations: Array of 2-3 actionable recommendations
- followUpQuestions: Array of 2-3 relevant follow-up questions
- emergency: boolean (true if immediate medical attention is needed)

IMPORTANT:
- For high severity or emergency cases, clearly state the need for immediate medical attention
- Never diagnose - only provide general health information
- Always recommend consulting a healthcare professional for serious concerns
- Be mindful of potential emergencies (chest pain, difficulty breathing, etc.)

Respond ONLY with valid JSON in this exact format:
%s`, serializeContext(ctx), userInput, responseFormat)
}

// BuildSketchPrompt builds the prompt for a pain sketch
func BuildSketchPrompt(ctx HealthContext, sketch PainSketch) string {
	var pains strings.Builder
	for i, pain := range sketch.PainLocations {
		if i > 0 {
			pains.WriteString("\n")
		}
		fmt.Fprintf(&pains, "- %s pain (intensity: %d/10) at coordinates (%g, %g)",
			pain.Type, pain.Intensity, pain.X, pain.Y)
	}

	notes := ""
	if sketch.Notes != "" {
		notes = "Additional notes: " + sketch.Notes + "\n"
	}

	return fmt.Sprintf(`You are CareLink AI, a professional healthcare assistant analyzing a patient's pain sketch.

Current patient context:
%s

Patient has indicated pain in the %s area with these characteristics:
%s
%s
Analyze this pain information and provide:
1. Potential causes based on location and pain type
2. Severity assessment
3. Immediate recommendations
4. Whether emergency care is needed

Respond ONLY with valid JSON in this exact format:
%s

Important guidelines:
- For chest pain, severe headaches, or abdominal pain, be extra cautious
- Mention red flag symptoms that require immediate attention
- Suggest first-aid measures when appropriate
- Always recommend professional medical evaluation for serious concerns
- response: a compassionate, professional reply analyzing the pain (3-4 sentences)
- recommendations: 3-4 actionable recommendations
- followUpQuestions: 2-3 relevant follow-up questions`,
		serializeContext(ctx), sketch.BodyPart, pains.String(), notes, responseFormat)
}

// BuildVisualPrompt builds the prompt for observed symptoms in another person
func BuildVisualPrompt(ctx HealthContext, obs VisualObservation) string {
	ageGroup := obs.AgeGroup
	if ageGroup == "" {
		ageGroup = "unknown"
	}
	consciousness := obs.Consciousness
	if consciousness == "" {
		consciousness = "unknown"
	}

	return fmt.Sprintf(`You are CareLink AI, a professional emergency medical assistant helping bystanders assess someone in distress.

A user is describing visual symptoms they observe in another person. Your role is to:
1. Identify potential medical conditions based on the description
2. Provide immediate first-aid steps
3. Determine if emergency services are needed

Patient details:
- Age group: %s
- Consciousness: %s

Observed symptoms:
"%s"

Respond ONLY with valid JSON in this exact format:
%s

Field guidance:
- response: a brief (2-3 sentence) assessment of what might be happening in simple language
- severity: 'low', 'medium', or 'high' based on potential risk
- mood: your emotional tone ('Calm', 'Concerned', or 'Urgent')
- recommendations: 3-4 immediate action steps, life-saving measures first, including when to call emergency services
- followUpQuestions: 1-2 questions to gather more info if the condition isn't critical
- emergency: true if immediate medical attention is needed

Critical guidelines:
- Assume this is real and act with appropriate urgency
- For chest pain, breathing difficulty, or unconsciousness: recommend emergency services immediately and set emergency to true
- Use simple language anyone can understand
- Never say "I'm not a doctor" - provide actionable advice
- For children/elderly: adjust advice for age-specific considerations
- If unsure: recommend erring on the side of caution

Example good response for chest pain:
{
  "response": "This could be a heart attack. The person needs immediate medical attention.",
  "severity": "high",
  "mood": "Urgent",
  "recommendations": [
    "Call emergency services immediately",
    "Have the person sit down and stay calm",
    "Loosen any tight clothing",
    "If they have prescribed heart medication, help them take it"
  ],
  "followUpQuestions": [],
  "emergency": true
}`, ageGroup, consciousness, obs.Description, responseFormat)
}

// BuildVitalsPrompt builds the prompt for a vitals reading. Vitals reuse the
// concern framing with a narrative of the measured values.
func BuildVitalsPrompt(ctx HealthContext, reading VitalsReading) string {
	var narrative strings.Builder
	v := reading.Vitals
	fmt.Fprintf(&narrative, "My current vital signs are: heart rate %s bpm, blood pressure %s/%s mmHg, oxygen saturation %s%%, temperature %s",
		v.HeartRate, v.Systolic, v.Diastolic, v.OxygenSat, v.Temperature)
	if v.RespiratoryRate != "" {
		fmt.Fprintf(&narrative, ", respiratory rate %s breaths/min", v.RespiratoryRate)
	}
	narrative.WriteString(".")
	if reading.Notes != "" {
		narrative.WriteString(" " + reading.Notes)
	}

	return BuildConcernPrompt(ctx, narrative.String())
}
