package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ahrav/go-lifewheel/internal/ports"
)

// leftBiasedRespondent always picks whatever is shown first, the bias the
// swap is meant to spread across both items.
func leftBiasedRespondent() *mockRespondent {
	return &mockRespondent{}
}

func TestNewPositionSwapRespondent_PanicsWithNilRespondent(t *testing.T) {
	assert.Panics(t, func() { NewPositionSwapRespondent(nil, 1) })
}

func TestPositionSwapRespondent_AnswerNamesItem(t *testing.T) {
	// Prefers 健康 regardless of side.
	next := &mockRespondent{chooseFunc: func(q ports.Question) (string, error) {
		if q.Left == "健康" || q.Right == "健康" {
			return "健康", nil
		}
		return q.Left, nil
	}}
	p := NewPositionSwapRespondent(next, 7)

	for i := range 20 {
		answer, err := p.Choose(context.Background(), ports.Question{
			Kind: ports.QuestionCategories, Left: "工作", Right: "健康", Number: i + 1,
		})
		require.NoError(t, err)
		assert.Equal(t, "健康", answer)
	}

	for _, q := range next.seen() {
		assert.ElementsMatch(t, []string{"工作", "健康"}, []string{q.Left, q.Right})
	}
}

func TestPositionSwapRespondent_SwapsSomeQuestions(t *testing.T) {
	next := leftBiasedRespondent()
	p := NewPositionSwapRespondent(next, 42)

	lefts := map[string]int{}
	for i := range 200 {
		answer, err := p.Choose(context.Background(), ports.Question{Left: "A", Right: "B", Number: i + 1})
		require.NoError(t, err)
		lefts[answer]++
	}

	asked, swapped := p.Stats()
	assert.Equal(t, 200, asked)
	assert.Equal(t, swapped, lefts["B"], "every swap shows B first")
	assert.Greater(t, swapped, 50)
	assert.Less(t, swapped, 150)
}

func TestPositionSwapRespondent_SeedIsDeterministic(t *testing.T) {
	run := func(seed uint64) []string {
		next := leftBiasedRespondent()
		p := NewPositionSwapRespondent(next, seed)
		var shown []string
		for i := range 32 {
			_, err := p.Choose(context.Background(), ports.Question{Left: "A", Right: "B", Number: i + 1})
			require.NoError(t, err)
		}
		for _, q := range next.seen() {
			shown = append(shown, q.Left)
		}
		return shown
	}

	assert.Equal(t, run(3), run(3))
	assert.NotEqual(t, run(3), run(4))
}

func TestPositionSwapRespondent_Errors(t *testing.T) {
	boom := errors.New("boom")
	p := NewPositionSwapRespondent(&mockRespondent{
		chooseFunc: func(ports.Question) (string, error) { return "", boom },
	}, 1)

	_, err := p.Choose(context.Background(), ports.Question{Left: "A", Right: "B"})
	assert.ErrorIs(t, err, boom)
}

func TestPositionSwapRespondent_PassThrough(t *testing.T) {
	next := &mockRespondent{}
	p := NewPositionSwapRespondent(next, 1)

	participant, err := p.Introduce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock", participant.Name)

	words, err := p.Associate(context.Background(), ports.AssociationRequest{Category: "家庭", Count: 3, Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, words)
	require.Len(t, next.requests, 1)
	assert.Equal(t, "家庭", next.requests[0].Category)

	asked, _ := p.Stats()
	assert.Zero(t, asked)
}

func TestPositionSwapRespondent_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	p := NewPositionSwapRespondent(&mockRespondent{}, 5)
	p.tracer = tp.Tracer("test")

	_, err := p.Choose(context.Background(), ports.Question{Kind: ports.QuestionKeywords, Left: "A", Right: "B", Number: 9})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "PositionSwapRespondent.Choose", spans[0].Name())

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "keywords", attrs["question.kind"])
	assert.Equal(t, int64(9), attrs["question.number"])
	assert.Contains(t, attrs, "swapped")
}
