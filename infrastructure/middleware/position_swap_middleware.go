package middleware

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

var _ ports.Respondent = (*PositionSwapRespondent)(nil)

// PositionSwapRespondent mitigates positional bias by randomly swapping
// which item of a comparison is shown first. The respondent's choice names
// an item, not a side, so the answer is passed back unchanged and the
// ranking never sees the swap.
type PositionSwapRespondent struct {
	next   ports.Respondent
	tracer trace.Tracer

	mu      sync.Mutex
	rng     *rand.Rand
	swapped int
	asked   int
}

// NewPositionSwapRespondent wraps next. The same seed yields the same swap
// sequence.
func NewPositionSwapRespondent(next ports.Respondent, seed uint64) *PositionSwapRespondent {
	if next == nil {
		panic("position swap respondent: next respondent is required")
	}
	return &PositionSwapRespondent{
		next:   next,
		tracer: otel.Tracer("position-swap-respondent"),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// startSpan creates a new OpenTelemetry span with common attributes.
func (p *PositionSwapRespondent) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("middleware.type", "position_swap"))
	span.SetAttributes(attrs...)
	return ctx, span
}

// Introduce implements ports.Respondent.
func (p *PositionSwapRespondent) Introduce(ctx context.Context) (domain.Participant, error) {
	return p.next.Introduce(ctx)
}

// Choose shows q to the wrapped respondent, possibly with Left and Right
// exchanged.
func (p *PositionSwapRespondent) Choose(ctx context.Context, q ports.Question) (string, error) {
	p.mu.Lock()
	swap := p.rng.IntN(2) == 1
	p.asked++
	if swap {
		p.swapped++
	}
	p.mu.Unlock()

	ctx, span := p.startSpan(ctx, "PositionSwapRespondent.Choose",
		attribute.String("question.kind", string(q.Kind)),
		attribute.Int("question.number", q.Number),
		attribute.Bool("swapped", swap),
	)
	defer span.End()

	shown := q
	if swap {
		shown.Left, shown.Right = q.Right, q.Left
	}

	answer, err := p.next.Choose(ctx, shown)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return answer, nil
}

// Associate implements ports.Respondent.
func (p *PositionSwapRespondent) Associate(ctx context.Context, req ports.AssociationRequest) ([]string, error) {
	return p.next.Associate(ctx, req)
}

// Stats returns how many questions were asked and how many of them were
// shown swapped.
func (p *PositionSwapRespondent) Stats() (asked, swapped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asked, p.swapped
}
