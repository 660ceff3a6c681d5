// Package middleware provides cross-cutting concerns for interviews:
// respondent decorators and observability adapters.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-lifewheel/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes question counts, keyword rejections, answer latency and the
// efficiency of the ranking sessions.
type PrometheusMetrics struct {
	questionsAsked    *prometheus.CounterVec
	invalidAnswers    *prometheus.CounterVec
	keywordRejections *prometheus.CounterVec
	interviews        *prometheus.CounterVec
	answerLatency     *prometheus.HistogramVec
	stageQuestions    *prometheus.HistogramVec
	operationCounter  *prometheus.CounterVec
	systemGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its metrics with reg. A nil reg uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		questionsAsked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lifewheel",
				Name:      "questions_asked_total",
				Help:      "Total number of pairwise questions answered.",
			},
			[]string{ports.LabelStage},
		),
		invalidAnswers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lifewheel",
				Name:      "invalid_answers_total",
				Help:      "Answers that were not one of the offered choices.",
			},
			[]string{ports.LabelStage},
		),
		keywordRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lifewheel",
				Name:      "keyword_rejections_total",
				Help:      "Keyword triads refused during association.",
			},
			[]string{ports.LabelReason},
		),
		interviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lifewheel",
				Name:      "interviews_total",
				Help:      "Interviews finished, by outcome.",
			},
			[]string{ports.LabelStatus},
		),
		answerLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lifewheel",
				Name:      "answer_duration_seconds",
				Help:      "Time a respondent took to answer.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"operation", ports.LabelStage},
		),
		stageQuestions: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lifewheel",
				Name:      "stage_questions",
				Help:      "Questions needed to complete a stage.",
				Buckets:   prometheus.LinearBuckets(0, 4, 8),
			},
			[]string{ports.LabelStage},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lifewheel",
				Name:      "operations_total",
				Help:      "Other interview events.",
			},
			[]string{"operation", ports.LabelStatus},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lifewheel",
				Name:      "state",
				Help:      "Current interview state values.",
			},
			[]string{"metric", ports.LabelSession},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// answer latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.answerLatency.WithLabelValues(operation, labelOr(labels, ports.LabelStage)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricQuestionsAsked:
		pm.questionsAsked.WithLabelValues(labelOr(labels, ports.LabelStage)).Add(value)
	case ports.MetricInvalidAnswers:
		pm.invalidAnswers.WithLabelValues(labelOr(labels, ports.LabelStage)).Add(value)
	case ports.MetricKeywordRejections:
		pm.keywordRejections.WithLabelValues(labelOr(labels, ports.LabelReason)).Add(value)
	case ports.MetricInterviews:
		pm.interviews.WithLabelValues(labelOr(labels, ports.LabelStatus)).Add(value)
	case ports.MetricBudgetExceeded:
		status := "exceeded_" + labelOr(labels, ports.LabelLimitType)
		pm.operationCounter.WithLabelValues("budget_check", status).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success").Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, labelOr(labels, ports.LabelSession)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Stage
// question counts have their own histogram; anything else is observed as
// a latency in seconds.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == ports.MetricStageQuestions {
		pm.stageQuestions.WithLabelValues(labelOr(labels, ports.LabelStage)).Observe(value)
		return
	}
	pm.answerLatency.WithLabelValues(metric, labelOr(labels, ports.LabelStage)).Observe(value)
}

// labelOr returns labels[key], or "unknown" when it is missing or empty.
func labelOr(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
