package domain

import (
	"fmt"
	"slices"
)

// RankStats counts how a RankSession reached its current state.
type RankStats struct {
	// Decisions is the number of human decisions accepted by Resolve.
	Decisions int `json:"decisions" yaml:"decisions"`

	// Inferred is the number of matchups settled from the history without
	// asking.
	Inferred int `json:"inferred" yaml:"inferred"`

	// Recovered is the number of champions taken from the backlog.
	Recovered int `json:"recovered" yaml:"recovered"`

	// Discarded is the number of backlog entries dropped because they had
	// already been ranked.
	Discarded int `json:"discarded" yaml:"discarded"`
}

// RankSession ranks a fixed universe of items into a strict total order by
// asking one pairwise question at a time. It is a selection sort with
// memoized comparisons: the current champion meets every remaining
// candidate after its own position, and once it has outlasted them all it
// is ranked next. Dethroned champions are kept on a LIFO backlog and are
// tried as the next champion before falling back to list order.
//
// A RankSession is not safe for concurrent use. It is owned by the single
// flow that alternates Next and Resolve.
type RankSession[T comparable] struct {
	// candidates holds the unranked items, the champion included, in their
	// original relative order.
	candidates []T
	ranked     []T
	champion   T
	// challenger indexes candidates; len(candidates) means the champion
	// has met everyone remaining.
	challenger int
	history    History[T]
	backlog    []T

	pending *Step[T]
	stats   RankStats
}

// NewRankSession creates a session over items. The first item starts as
// champion and the second as its first challenger. Items must be
// non-empty and distinct.
func NewRankSession[T comparable](items []T) (*RankSession[T], error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	seen := make(map[T]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateItem, it)
		}
		seen[it] = struct{}{}
	}

	return &RankSession[T]{
		candidates: slices.Clone(items),
		ranked:     make([]T, 0, len(items)),
		champion:   items[0],
		challenger: 1,
	}, nil
}

// Next folds every outcome already known from the history into the
// session and returns either the next pair to ask or Done.
//
// Calling Next again before Resolve returns the same question. Calling it
// on a finished session returns Done and changes nothing.
func (s *RankSession[T]) Next() Step[T] {
	if s.pending != nil {
		return *s.pending
	}

	for len(s.candidates) > 0 {
		if s.challenger >= len(s.candidates) {
			s.finalizeChampion()
			continue
		}

		challenger := s.candidates[s.challenger]
		switch {
		case s.history.Beats(s.champion, challenger):
			s.challenger++
			s.stats.Inferred++
		case s.history.Beats(challenger, s.champion):
			s.dethrone(challenger)
			s.stats.Inferred++
		default:
			step := Ask(s.champion, challenger)
			s.pending = &step
			return step
		}
	}
	return Done[T]()
}

// Resolve records the answer to the question most recently returned by
// Next. The pair is matched regardless of order. Resolve does not decide
// what comes next; call Next afterwards.
//
// Resolve returns a *UsageError and leaves the session untouched when the
// session is done, when no question is outstanding, or when the pair does
// not match the outstanding question.
func (s *RankSession[T]) Resolve(winner, loser T) error {
	if s.IsDone() {
		return NewUsageError("Resolve", fmt.Sprintf("%v over %v", winner, loser), ErrSessionDone)
	}
	if s.pending == nil {
		return NewUsageError("Resolve", fmt.Sprintf("%v over %v", winner, loser), ErrNoPendingQuestion)
	}
	if winner == loser || !s.pending.Matches(winner, loser) {
		return NewUsageError("Resolve",
			fmt.Sprintf("got %v over %v, asked %v vs %v", winner, loser, s.pending.Left, s.pending.Right),
			ErrPairMismatch)
	}

	s.pending = nil
	s.history.Record(winner, loser)
	s.stats.Decisions++

	if winner == s.champion {
		s.challenger++
		return nil
	}
	s.dethrone(winner)
	return nil
}

// dethrone makes the current challenger the champion and remembers the
// old champion on the backlog.
func (s *RankSession[T]) dethrone(newChampion T) {
	s.backlog = append(s.backlog, s.champion)
	s.champion = newChampion
	s.challenger++
}

// finalizeChampion ranks the champion and picks its successor: the most
// recently dethroned champion that is still unranked, or the first
// remaining candidate.
func (s *RankSession[T]) finalizeChampion() {
	s.ranked = append(s.ranked, s.champion)
	if i := slices.Index(s.candidates, s.champion); i >= 0 {
		s.candidates = slices.Delete(s.candidates, i, i+1)
	}
	if len(s.candidates) == 0 {
		var zero T
		s.champion = zero
		s.challenger = 0
		s.backlog = nil
		return
	}

	next, ok := s.popBacklog()
	if !ok {
		next = s.candidates[0]
	}
	s.champion = next
	s.challenger = slices.Index(s.candidates, next) + 1
}

// popBacklog pops until it finds an item that is still a candidate.
// Entries that were ranked in the meantime are stale and dropped.
func (s *RankSession[T]) popBacklog() (T, bool) {
	for len(s.backlog) > 0 {
		last := len(s.backlog) - 1
		item := s.backlog[last]
		s.backlog = s.backlog[:last]
		if slices.Contains(s.candidates, item) {
			s.stats.Recovered++
			return item, true
		}
		s.stats.Discarded++
	}
	var zero T
	return zero, false
}

// RankedSoFar returns the items ranked so far, best first. The returned
// slice is a copy.
func (s *RankSession[T]) RankedSoFar() []T { return slices.Clone(s.ranked) }

// IsDone reports whether every item has been ranked.
func (s *RankSession[T]) IsDone() bool { return len(s.candidates) == 0 }

// Pending returns the outstanding question, if any.
func (s *RankSession[T]) Pending() (Step[T], bool) {
	if s.pending == nil {
		return Step[T]{}, false
	}
	return *s.pending, true
}

// Champion returns the current best-so-far among unranked items. The
// boolean is false once the session is done.
func (s *RankSession[T]) Champion() (T, bool) {
	if s.IsDone() {
		var zero T
		return zero, false
	}
	return s.champion, true
}

// Remaining returns the unranked items in their original relative order.
func (s *RankSession[T]) Remaining() []T { return slices.Clone(s.candidates) }

// Backlog returns the dethroned champions, oldest first; the last element
// is tried first.
func (s *RankSession[T]) Backlog() []T { return slices.Clone(s.backlog) }

// History returns the decisions recorded so far, in order.
func (s *RankSession[T]) History() []Outcome[T] { return s.history.Outcomes() }

// Len returns the size of the item universe.
func (s *RankSession[T]) Len() int { return len(s.candidates) + len(s.ranked) }

// Stats returns the session counters.
func (s *RankSession[T]) Stats() RankStats { return s.stats }
