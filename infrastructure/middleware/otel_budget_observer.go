package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

var _ QuestionObserver = (*OTelQuestionObserver)(nil)

// OTelQuestionObserver reports question budget usage through OpenTelemetry
// spans and the metrics collector. It creates one span per question and
// records events when usage crosses the warning thresholds.
type OTelQuestionObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
	span    trace.Span
}

// NewOTelQuestionObserver creates an observer. metrics may be nil; a nil
// tracer uses the global provider.
func NewOTelQuestionObserver(metrics ports.MetricsCollector, tracer trace.Tracer) *OTelQuestionObserver {
	if tracer == nil {
		tracer = otel.Tracer("question-budget")
	}
	return &OTelQuestionObserver{
		metrics: metrics,
		tracer:  tracer,
	}
}

// PreCheck implements QuestionObserver. It starts a span and records the
// budget state and threshold warnings.
func (o *OTelQuestionObserver) PreCheck(ctx context.Context, used int, budget Budget) {
	_, o.span = o.tracer.Start(ctx, "QuestionBudget.Choose")
	addSpanAttributes(o.span, used, budget)
	o.checkThresholds(used, budget)
}

// PostCheck implements QuestionObserver. It finalizes the span, records
// metrics, and flags a budget overrun.
func (o *OTelQuestionObserver) PostCheck(
	ctx context.Context,
	used int,
	budget Budget,
	elapsed time.Duration,
	err error,
) {
	// A rejected question never reached PreCheck.
	if o.span == nil {
		_, o.span = o.tracer.Start(ctx, "QuestionBudget.Choose")
	}
	span := o.span
	o.span = nil
	defer span.End()

	addSpanAttributes(span, used, budget)

	var budgetErr *domain.BudgetExceededError
	if errors.As(err, &budgetErr) {
		span.AddEvent("budget.exceeded", trace.WithAttributes(
			attribute.String("limit_type", budgetErr.LimitType),
			attribute.Int("limit_value", budgetErr.Limit),
			attribute.Int("used_value", budgetErr.Used),
		))
		span.SetStatus(codes.Error, "Budget limit exceeded")
		if o.metrics != nil {
			o.metrics.RecordCounter(ports.MetricBudgetExceeded, 1,
				map[string]string{ports.LabelLimitType: budgetErr.LimitType})
		}
		return
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.AddEvent("budget.question_counted", trace.WithAttributes(
		attribute.Int("questions_used", used),
		attribute.Int64("answer_ms", elapsed.Milliseconds()),
	))
	if o.metrics != nil && budget.MaxQuestions > 0 {
		o.metrics.RecordGauge(ports.MetricBudgetRemaining, float64(budget.MaxQuestions-used),
			map[string]string{ports.LabelSession: "interview"})
	}
	span.SetStatus(codes.Ok, "")
}

// addSpanAttributes sets span attributes for budget tracking.
func addSpanAttributes(span trace.Span, used int, budget Budget) {
	span.SetAttributes(attribute.Int("budget.questions_used", used))
	if budget.MaxQuestions > 0 {
		span.SetAttributes(
			attribute.Int("budget.max_questions", budget.MaxQuestions),
			attribute.Int("budget.remaining_questions", budget.MaxQuestions-used),
		)
	}
}

// checkThresholds adds warning events as usage approaches the limit.
func (o *OTelQuestionObserver) checkThresholds(used int, budget Budget) {
	const warningThreshold = 0.8
	const criticalThreshold = 0.9

	if budget.MaxQuestions <= 0 {
		return
	}
	usage := float64(used) / float64(budget.MaxQuestions)
	switch {
	case usage >= criticalThreshold:
		o.span.AddEvent("budget.threshold.critical", trace.WithAttributes(
			attribute.Float64("usage_percentage", usage*100),
		))
	case usage >= warningThreshold:
		o.span.AddEvent("budget.threshold.warning", trace.WithAttributes(
			attribute.Float64("usage_percentage", usage*100),
		))
	}
}
