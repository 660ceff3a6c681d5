package domain

// Outcome is a single recorded decision: Winner was preferred over Loser.
type Outcome[T comparable] struct {
	Winner T `json:"winner" yaml:"winner"`
	Loser  T `json:"loser" yaml:"loser"`
}

// History is the comparison cache of a session. It holds every decision
// ever recorded and answers membership queries in constant time. It is
// never pruned; the zero value is ready to use.
type History[T comparable] struct {
	seen  map[Outcome[T]]struct{}
	order []Outcome[T]
}

// Record stores winner over loser. The first decision about a pair wins:
// Record returns false and leaves the cache unchanged when either
// direction of the pair is already known.
func (h *History[T]) Record(winner, loser T) bool {
	if h.Decided(winner, loser) {
		return false
	}
	if h.seen == nil {
		h.seen = make(map[Outcome[T]]struct{})
	}
	o := Outcome[T]{Winner: winner, Loser: loser}
	h.seen[o] = struct{}{}
	h.order = append(h.order, o)
	return true
}

// Beats reports whether a was recorded as winning against b.
func (h *History[T]) Beats(a, b T) bool {
	_, ok := h.seen[Outcome[T]{Winner: a, Loser: b}]
	return ok
}

// Decided reports whether any decision between a and b is recorded.
func (h *History[T]) Decided(a, b T) bool {
	return h.Beats(a, b) || h.Beats(b, a)
}

// Len returns the number of recorded decisions.
func (h *History[T]) Len() int { return len(h.order) }

// Outcomes returns the recorded decisions in the order they were made.
// The returned slice is a copy.
func (h *History[T]) Outcomes() []Outcome[T] {
	out := make([]Outcome[T], len(h.order))
	copy(out, h.order)
	return out
}
