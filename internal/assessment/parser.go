package assessment

import (
	"encoding/json"
	"strings"

	apperrors "github.com/carelink-ai/carelink/internal/errors"
)

// ParseAssessment converts raw model text into a validated HealthAssessment.
// Markdown code fences around the payload are stripped first; the decoded
// object must then pass schema validation. Both failure modes fail closed
// with distinguishable codes so the client can log them apart before
// substituting the fallback.
func ParseAssessment(raw string) (*HealthAssessment, error) {
	cleaned := stripFences(raw)

	var assessment HealthAssessment
	if err := json.Unmarshal([]byte(cleaned), &assessment); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParseFailed.Code, apperrors.ErrParseFailed.Message)
	}

	if err := validateAssessment(&assessment); err != nil {
		return nil, err
	}

	return &assessment, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}

func validateAssessment(a *HealthAssessment) error {
	if strings.TrimSpace(a.Response) == "" {
		return apperrors.New(apperrors.ErrInvalidAssessment.Code, "missing response text")
	}

	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return apperrors.New(apperrors.ErrInvalidAssessment.Code, "severity must be low, medium, or high")
	}

	if len(a.Recommendations) == 0 {
		return apperrors.New(apperrors.ErrInvalidAssessment.Code, "missing recommendations")
	}
	for _, rec := range a.Recommendations {
		if strings.TrimSpace(rec) == "" {
			return apperrors.New(apperrors.ErrInvalidAssessment.Code, "empty recommendation entry")
		}
	}
	for _, q := range a.FollowUpQuestions {
		if strings.TrimSpace(q) == "" {
			return apperrors.New(apperrors.ErrInvalidAssessment.Code, "empty follow-up question entry")
		}
	}

	return nil
}
