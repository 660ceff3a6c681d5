package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

// DefaultMaxAttempts is how many times the runner asks for the same input
// before giving up on a respondent.
const DefaultMaxAttempts = 5

const tracerName = "github.com/ahrav/go-lifewheel/internal/application"

// Runner drives an Interview to completion against a ports.Respondent.
// It owns the retry policy for invalid input and reports every stage
// through tracing, logging and metrics.
type Runner struct {
	cfg         Config
	logger      *zap.Logger
	metrics     ports.MetricsCollector
	tracer      trace.Tracer
	maxAttempts int
	ivOpts      []InterviewOption
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Metrics are skipped when unset.
func WithMetrics(m ports.MetricsCollector) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMaxAttempts sets how often the same input is requested before the
// run fails. Zero or less retries forever.
func WithMaxAttempts(n int) RunnerOption {
	return func(r *Runner) { r.maxAttempts = n }
}

// WithInterviewOptions passes options to every Interview the runner creates.
func WithInterviewOptions(opts ...InterviewOption) RunnerOption {
	return func(r *Runner) { r.ivOpts = append(r.ivOpts, opts...) }
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:         cfg,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run conducts one interview. It returns the result once every stage is
// complete, the context error when ctx is done, or the first error the
// respondent could not recover from.
func (r *Runner) Run(ctx context.Context, resp ports.Respondent) (result domain.Result, err error) {
	iv, err := NewInterview(r.cfg, r.ivOpts...)
	if err != nil {
		return domain.Result{}, err
	}

	ctx, span := r.tracer.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("interview.id", iv.ID()),
		attribute.Int("interview.categories", len(r.cfg.Categories)),
	))
	log := r.logger.With(zap.String("interview_id", iv.ID()))
	log.Info("interview started", zap.Int("categories", len(r.cfg.Categories)))

	defer func() {
		if err != nil {
			status := failureStatus(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Warn("interview stopped", zap.String("status", status), zap.Error(err))
			r.counter(ports.MetricInterviews, 1, map[string]string{ports.LabelStatus: status})
		} else {
			span.SetStatus(codes.Ok, "interview completed")
		}
		span.End()
	}()

	if err := r.introduce(ctx, iv, resp, log); err != nil {
		return domain.Result{}, err
	}

	tracker := stageTracker{runner: r, iv: iv, log: log}
	defer tracker.end()

	for {
		if err := ctx.Err(); err != nil {
			return domain.Result{}, err
		}

		p := iv.Next()
		if p.Kind == PromptDone {
			break
		}
		stageCtx := tracker.enter(ctx, p.Stage)

		switch p.Kind {
		case PromptCompare:
			err = r.compare(stageCtx, iv, resp, p, log)
		case PromptAssociate:
			err = r.associate(stageCtx, iv, resp, p, log)
		}
		if err != nil {
			tracker.fail(err)
			return domain.Result{}, err
		}
	}
	tracker.end()

	result, err = iv.Result()
	if err != nil {
		return domain.Result{}, err
	}

	r.gauge(ports.MetricInferredOutcomes, float64(result.CategoryStats.Inferred),
		map[string]string{ports.LabelSession: StageCategories.String()})
	r.gauge(ports.MetricInferredOutcomes, float64(result.KeywordStats.Inferred),
		map[string]string{ports.LabelSession: StageKeywords.String()})
	r.counter(ports.MetricInterviews, 1, map[string]string{ports.LabelStatus: "completed"})

	span.SetAttributes(
		attribute.Int("interview.questions", result.Questions.Total()),
		attribute.StringSlice("interview.categories.ranked", result.Categories),
	)
	log.Info("interview completed",
		zap.Strings("categories", result.Categories),
		zap.Strings("keywords", result.Keywords),
		zap.Int("questions", result.Questions.Total()),
		zap.Duration("elapsed", result.CompletedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// introduce collects and validates the participant profile.
func (r *Runner) introduce(ctx context.Context, iv *Interview, resp ports.Respondent, log *zap.Logger) error {
	for attempt := 1; ; attempt++ {
		p, err := resp.Introduce(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, ports.ErrInvalidAnswer) && r.canRetry(attempt) {
				continue
			}
			return &ports.RespondentError{Operation: "Introduce", Attempts: attempt, Err: err}
		}

		err = iv.SetParticipant(p)
		if err == nil {
			log.Info("participant registered", zap.String("name", p.Name))
			return nil
		}
		log.Warn("participant rejected", zap.Int("attempt", attempt), zap.Error(err))
		if !r.canRetry(attempt) {
			return &ports.RespondentError{Operation: "Introduce", Attempts: attempt, Err: err}
		}
	}
}

// compare asks one pairwise question until the respondent picks one of
// the offered items.
func (r *Runner) compare(
	ctx context.Context,
	iv *Interview,
	resp ports.Respondent,
	p Prompt,
	log *zap.Logger,
) error {
	q := ports.Question{
		Kind:     questionKind(p.Stage),
		Prompt:   p.Text,
		Category: p.Category,
		Left:     p.Left,
		Right:    p.Right,
		Number:   iv.Questions().Total() + 1,
	}
	labels := map[string]string{ports.LabelStage: p.Stage.String()}

	for attempt := 1; ; attempt++ {
		start := time.Now()
		answer, err := resp.Choose(ctx, q)
		elapsed := time.Since(start)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, ports.ErrInvalidAnswer) && r.canRetry(attempt) {
				r.counter(ports.MetricInvalidAnswers, 1, labels)
				log.Warn("invalid answer", zap.Stringer("stage", p.Stage), zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			return &ports.RespondentError{Operation: "Choose", Attempts: attempt, Err: err}
		}

		if err := iv.Choose(answer); err != nil {
			if !errors.Is(err, domain.ErrPairMismatch) {
				return err
			}
			r.counter(ports.MetricInvalidAnswers, 1, labels)
			log.Warn("answer is not one of the choices",
				zap.Stringer("stage", p.Stage),
				zap.String("answer", answer),
				zap.String("left", p.Left),
				zap.String("right", p.Right),
			)
			if !r.canRetry(attempt) {
				return &ports.RespondentError{
					Operation: "Choose",
					Attempts:  attempt,
					Err:       fmt.Errorf("%w: %q: %w", ports.ErrInvalidAnswer, answer, err),
				}
			}
			continue
		}

		if r.metrics != nil {
			r.metrics.RecordLatency(ports.OperationAnswer, elapsed, labels)
		}
		r.counter(ports.MetricQuestionsAsked, 1, labels)
		log.Debug("question answered",
			zap.Stringer("stage", p.Stage),
			zap.Int("number", q.Number),
			zap.String("left", p.Left),
			zap.String("right", p.Right),
			zap.String("winner", answer),
			zap.Duration("elapsed", elapsed),
		)
		return nil
	}
}

// associate collects the keyword triad for one category, passing each
// rejection back to the respondent.
func (r *Runner) associate(
	ctx context.Context,
	iv *Interview,
	resp ports.Respondent,
	p Prompt,
	log *zap.Logger,
) error {
	req := ports.AssociationRequest{
		Category: p.Category,
		Count:    domain.KeywordsPerCategory,
	}

	for attempt := 1; ; attempt++ {
		req.Attempt = attempt
		words, err := resp.Associate(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, ports.ErrInvalidAnswer) && r.canRetry(attempt) {
				continue
			}
			return &ports.RespondentError{Operation: "Associate", Attempts: attempt, Err: err}
		}

		err = iv.Associate(p.Category, words)
		var kerr *domain.KeywordError
		if errors.As(err, &kerr) {
			r.counter(ports.MetricKeywordRejections, 1, map[string]string{ports.LabelReason: kerr.Reason()})
			log.Info("keywords rejected",
				zap.String("category", p.Category),
				zap.Strings("keywords", words),
				zap.String("reason", kerr.Reason()),
				zap.Int("attempt", attempt),
			)
			if !r.canRetry(attempt) {
				return &ports.RespondentError{Operation: "Associate", Attempts: attempt, Err: err}
			}
			req.Rejection = kerr
			continue
		}
		if err != nil {
			return err
		}

		log.Debug("keywords accepted", zap.String("category", p.Category), zap.Strings("keywords", words))
		return nil
	}
}

func (r *Runner) canRetry(attempt int) bool {
	return r.maxAttempts <= 0 || attempt < r.maxAttempts
}

func (r *Runner) counter(metric string, value float64, labels map[string]string) {
	if r.metrics != nil {
		r.metrics.RecordCounter(metric, value, labels)
	}
}

func (r *Runner) gauge(metric string, value float64, labels map[string]string) {
	if r.metrics != nil {
		r.metrics.RecordGauge(metric, value, labels)
	}
}

// stageTracker keeps one span open per interview stage.
type stageTracker struct {
	runner  *Runner
	iv      *Interview
	log     *zap.Logger
	stage   Stage
	ctx     context.Context
	span    trace.Span
	started time.Time
	// asked is the question total when the stage began.
	asked int
}

// enter returns the context of stage's span, starting it when the stage
// changed.
func (t *stageTracker) enter(ctx context.Context, stage Stage) context.Context {
	if t.span != nil && t.stage == stage {
		return t.ctx
	}
	t.end()
	t.stage = stage
	t.started = time.Now()
	t.asked = t.iv.Questions().Total()
	t.ctx, t.span = t.runner.tracer.Start(ctx, "Interview."+stage.String(),
		trace.WithAttributes(attribute.String("stage", stage.String())))
	t.log.Info("stage started", zap.Stringer("stage", stage))
	return t.ctx
}

func (t *stageTracker) fail(err error) {
	if t.span != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, err.Error())
	}
}

// end closes the open stage span, if any.
func (t *stageTracker) end() {
	if t.span == nil {
		return
	}
	asked := t.iv.Questions().Total() - t.asked
	t.span.SetAttributes(attribute.Int("stage.questions", asked))
	t.span.End()
	t.span = nil

	if t.stage != StageAssociations && t.runner.metrics != nil {
		t.runner.metrics.RecordHistogram(ports.MetricStageQuestions, float64(asked),
			map[string]string{ports.LabelStage: t.stage.String()})
	}
	t.log.Info("stage finished",
		zap.Stringer("stage", t.stage),
		zap.Int("questions", asked),
		zap.Duration("elapsed", time.Since(t.started)),
	)
}

// questionKind maps a compare stage to the kind shown to respondents.
func questionKind(s Stage) ports.QuestionKind {
	switch s {
	case StageRefinement:
		return ports.QuestionRepresentative
	case StageKeywords:
		return ports.QuestionKeywords
	default:
		return ports.QuestionCategories
	}
}

// failureStatus labels why a run stopped.
func failureStatus(err error) string {
	var budget *domain.BudgetExceededError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &budget):
		return "budget_exceeded"
	default:
		return "failed"
	}
}
