package assessment

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/carelink-ai/carelink/internal/errors"
	"github.com/carelink-ai/carelink/internal/metrics"
)

// Input variants, used as metric labels
const (
	VariantConcern = "concern"
	VariantSketch  = "sketch"
	VariantVisual  = "visual"
	VariantVitals  = "vitals"
)

// Generator produces raw model text for a prompt. *llm.Client satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assistant owns the session with the generative model. The patient context
// set via SetContext rides along on every subsequent prompt until replaced.
//
// Every Assess operation resolves to a well-formed assessment: transport,
// model, and parse failures are absorbed here and replaced by a generic
// fallback. Silent crashes are unacceptable in health guidance, so callers
// never see an error from this layer; the Fallback flag on the result is the
// only trace. Single attempt per request, no retry.
type Assistant struct {
	model   Generator
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	context HealthContext
}

// NewAssistant creates an assistant bound to one configured model
func NewAssistant(model Generator, logger *zap.Logger) *Assistant {
	return &Assistant{
		model:   model,
		logger:  logger,
		metrics: metrics.Default(),
	}
}

// SetContext replaces the ambient patient profile wholesale
func (a *Assistant) SetContext(ctx HealthContext) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.context = ctx
}

// Context returns the current patient profile
func (a *Assistant) Context() HealthContext {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.context
}

// AssessConcern assesses a free-text health concern. Callers reject
// empty/whitespace-only input before invoking the pipeline.
func (a *Assistant) AssessConcern(ctx context.Context, text string) *HealthAssessment {
	return a.assess(ctx, VariantConcern, BuildConcernPrompt(a.Context(), text))
}

// AssessPainSketch assesses pain marked on a body diagram
func (a *Assistant) AssessPainSketch(ctx context.Context, sketch PainSketch) *HealthAssessment {
	return a.assess(ctx, VariantSketch, BuildSketchPrompt(a.Context(), sketch))
}

// AssessVisualObservation assesses symptoms observed in another person
func (a *Assistant) AssessVisualObservation(ctx context.Context, obs VisualObservation) *HealthAssessment {
	return a.assess(ctx, VariantVisual, BuildVisualPrompt(a.Context(), obs))
}

// AssessVitals assesses a vitals reading via the concern path with a
// narrative prompt
func (a *Assistant) AssessVitals(ctx context.Context, reading VitalsReading) *HealthAssessment {
	return a.assess(ctx, VariantVitals, BuildVitalsPrompt(a.Context(), reading))
}

func (a *Assistant) assess(ctx context.Context, variant, prompt string) *HealthAssessment {
	start := time.Now()
	raw, err := a.model.GenerateContent(ctx, prompt)
	a.metrics.RecordModelLatency(variant, time.Since(start))

	if err != nil {
		a.logger.Warn("Model call failed, returning fallback assessment",
			zap.String("variant", variant),
			zap.String("code", apperrors.GetCode(err)),
			zap.Error(err),
		)
		a.metrics.RecordPipelineFailure(apperrors.GetCode(err))
		a.metrics.RecordAssessment(variant, metrics.OutcomeFallback)
		return fallbackAssessment()
	}

	result, err := ParseAssessment(raw)
	if err != nil {
		a.logger.Warn("Assessment response rejected, returning fallback assessment",
			zap.String("variant", variant),
			zap.String("code", apperrors.GetCode(err)),
			zap.Error(err),
		)
		a.metrics.RecordPipelineFailure(apperrors.GetCode(err))
		a.metrics.RecordAssessment(variant, metrics.OutcomeFallback)
		return fallbackAssessment()
	}

	a.metrics.RecordAssessment(variant, metrics.OutcomeOK)
	return result
}

// fallbackAssessment returns a fresh copy so callers can't mutate shared state
func fallbackAssessment() *HealthAssessment {
	return &HealthAssessment{
		Response: "I'm having trouble assessing your health concern. Please try again or contact a healthcare provider if this is urgent.",
		Severity: SeverityMedium,
		Mood:     "Concerned",
		Recommendations: []string{
			"Try rephrasing your concern",
			"Contact a healthcare provider if symptoms are severe",
		},
		FollowUpQuestions: []string{
			"Could you describe your symptoms in more detail?",
			"How long have you been experiencing this?",
		},
		Emergency: false,
		Fallback:  true,
	}
}
