package domain

import "fmt"

// KeywordsPerCategory is the number of associations collected for every
// category and reduced to one representative by a RefinementSession.
const KeywordsPerCategory = 3

// RefineStage is the position of a RefinementSession in its linear flow.
type RefineStage int

const (
	RefineStep1 RefineStage = iota + 1
	RefineStep2
	RefineStep3
	RefineDone
)

// String returns a short name for the stage.
func (r RefineStage) String() string {
	switch r {
	case RefineStep1:
		return "step1"
	case RefineStep2:
		return "step2"
	case RefineStep3:
		return "step3"
	case RefineDone:
		return "done"
	default:
		return "unknown"
	}
}

// RefinementSession reduces three items to one representative with exactly
// three questions: A vs B, then the winner vs C, then that winner vs the
// loser of the first question.
//
// The third question is asked even when its outcome could be inferred
// (the first winner also beat C). It lets the respondent weigh the two
// strongest contenders directly instead of relying on transitivity.
type RefinementSession[T comparable] struct {
	items   [KeywordsPerCategory]T
	stage   RefineStage
	winner1 T
	loser1  T
	winner2 T
	final   T
	asked   int
}

// NewRefinementSession creates a session over a, b and c, which must be
// distinct.
func NewRefinementSession[T comparable](a, b, c T) (*RefinementSession[T], error) {
	if a == b || a == c || b == c {
		return nil, fmt.Errorf("%w: %v, %v, %v", ErrDuplicateItem, a, b, c)
	}
	return &RefinementSession[T]{
		items: [KeywordsPerCategory]T{a, b, c},
		stage: RefineStep1,
	}, nil
}

// Next returns the pair for the current stage, or Done once the
// representative is known. It never changes the session.
func (r *RefinementSession[T]) Next() Step[T] {
	switch r.stage {
	case RefineStep1:
		return Ask(r.items[0], r.items[1])
	case RefineStep2:
		return Ask(r.winner1, r.items[2])
	case RefineStep3:
		return Ask(r.winner2, r.loser1)
	default:
		return Done[T]()
	}
}

// Resolve records winner for the current stage; the loser is implied.
// It returns a *UsageError when the session is done or winner is not part
// of the current pair.
func (r *RefinementSession[T]) Resolve(winner T) error {
	step := r.Next()
	if step.IsDone() {
		return NewUsageError("Refine", fmt.Sprintf("%v", winner), ErrSessionDone)
	}
	loser, ok := step.Other(winner)
	if !ok {
		return NewUsageError("Refine",
			fmt.Sprintf("got %v, asked %v vs %v", winner, step.Left, step.Right),
			ErrPairMismatch)
	}

	r.asked++
	switch r.stage {
	case RefineStep1:
		r.winner1, r.loser1 = winner, loser
		r.stage = RefineStep2
	case RefineStep2:
		r.winner2 = winner
		r.stage = RefineStep3
	case RefineStep3:
		r.final = winner
		r.stage = RefineDone
	}
	return nil
}

// Representative returns the chosen item once the session is done.
func (r *RefinementSession[T]) Representative() (T, bool) {
	if r.stage != RefineDone {
		var zero T
		return zero, false
	}
	return r.final, true
}

// Items returns the three items in the order they were given.
func (r *RefinementSession[T]) Items() [KeywordsPerCategory]T { return r.items }

// IsDone reports whether the representative has been chosen.
func (r *RefinementSession[T]) IsDone() bool { return r.stage == RefineDone }

// Stage returns the current stage.
func (r *RefinementSession[T]) Stage() RefineStage { return r.stage }

// Asked returns the number of decisions accepted so far.
func (r *RefinementSession[T]) Asked() int { return r.asked }
