// Package domain contains pure, dependency-free domain models and types
// for the life-wheel ranking engine.
package domain

// StepKind distinguishes the two results a session can report.
type StepKind int

const (
	// StepAsk means the session needs a human decision between Left and
	// Right before it can make progress.
	StepAsk StepKind = iota + 1

	// StepDone means the session has produced its final result.
	StepDone
)

// String returns the lowercase name of the step kind.
func (k StepKind) String() string {
	switch k {
	case StepAsk:
		return "ask"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is the result of asking a session what it needs next.
// Left and Right are only meaningful when Kind is StepAsk.
type Step[T comparable] struct {
	Kind  StepKind
	Left  T
	Right T
}

// Ask returns a StepAsk result for the given pair.
func Ask[T comparable](left, right T) Step[T] {
	return Step[T]{Kind: StepAsk, Left: left, Right: right}
}

// Done returns a StepDone result.
func Done[T comparable]() Step[T] {
	return Step[T]{Kind: StepDone}
}

// IsDone reports whether the step is terminal.
func (s Step[T]) IsDone() bool { return s.Kind == StepDone }

// Matches reports whether a and b are the pair asked by s, in either order.
func (s Step[T]) Matches(a, b T) bool {
	if s.Kind != StepAsk {
		return false
	}
	return (s.Left == a && s.Right == b) || (s.Left == b && s.Right == a)
}

// Other returns the member of the asked pair that is not x. The boolean
// is false when x is not part of the pair.
func (s Step[T]) Other(x T) (T, bool) {
	var zero T
	if s.Kind != StepAsk {
		return zero, false
	}
	switch x {
	case s.Left:
		return s.Right, true
	case s.Right:
		return s.Left, true
	default:
		return zero, false
	}
}
