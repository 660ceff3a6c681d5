package domain

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preferOrder answers every question according to a fixed total order,
// best first.
func preferOrder[T comparable](order []T) func(a, b T) T {
	rank := make(map[T]int, len(order))
	for i, it := range order {
		rank[it] = i
	}
	return func(a, b T) T {
		if rank[a] < rank[b] {
			return a
		}
		return b
	}
}

// drive runs a session to completion with the given decider and returns
// every question asked, in order.
func drive[T comparable](t *testing.T, s *RankSession[T], decide func(a, b T) T) []Step[T] {
	t.Helper()

	var asked []Step[T]
	for i := 0; ; i++ {
		require.Less(t, i, 1000, "session did not terminate")

		step := s.Next()
		if step.IsDone() {
			return asked
		}
		asked = append(asked, step)

		winner := decide(step.Left, step.Right)
		loser, ok := step.Other(winner)
		require.True(t, ok)
		require.NoError(t, s.Resolve(winner, loser))
	}
}

// permutations returns every ordering of items.
func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{slices.Clone(items)}
	}
	var out [][]string
	for i := range items {
		rest := slices.Concat(items[:i:i], items[i+1:])
		for _, p := range permutations(rest) {
			out = append(out, append([]string{items[i]}, p...))
		}
	}
	return out
}

// TestNewRankSession verifies construction and input validation.
func TestNewRankSession(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		wantErr error
	}{
		{name: "empty universe", items: nil, wantErr: ErrNoItems},
		{name: "duplicate items", items: []string{"A", "B", "A"}, wantErr: ErrDuplicateItem},
		{name: "single item", items: []string{"A"}},
		{name: "eight categories", items: []string{"健康", "工作", "家庭", "休閒", "情緒", "成長", "人際", "財富"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRankSession(tt.items)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)

			champ, ok := s.Champion()
			assert.True(t, ok)
			assert.Equal(t, tt.items[0], champ, "first item should start as champion")
			assert.Equal(t, tt.items, s.Remaining())
			assert.Empty(t, s.RankedSoFar())
			assert.Equal(t, len(tt.items), s.Len())
		})
	}
}

// TestNewRankSession_CopiesInput ensures the caller's slice is not shared.
func TestNewRankSession_CopiesInput(t *testing.T) {
	items := []string{"A", "B", "C"}
	s, err := NewRankSession(items)
	require.NoError(t, err)

	items[0] = "Z"
	assert.Equal(t, []string{"A", "B", "C"}, s.Remaining())
}

// TestRankSession_SingleItem verifies that a one-item universe finishes
// without asking anything.
func TestRankSession_SingleItem(t *testing.T) {
	s, err := NewRankSession([]string{"only"})
	require.NoError(t, err)

	assert.True(t, s.Next().IsDone())
	assert.True(t, s.IsDone())
	assert.Equal(t, []string{"only"}, s.RankedSoFar())
}

// TestRankSession_CanonicalFixture walks the four-item regression scenario
// step by step.
func TestRankSession_CanonicalFixture(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Equal(t, Ask("A", "B"), s.Next())
	require.NoError(t, s.Resolve("A", "B"))
	champ, _ := s.Champion()
	assert.Equal(t, "A", champ, "champion should be retained")

	assert.Equal(t, Ask("A", "C"), s.Next())
	require.NoError(t, s.Resolve("C", "A"))
	champ, _ = s.Champion()
	assert.Equal(t, "C", champ)
	assert.Equal(t, []string{"A"}, s.Backlog())

	assert.Equal(t, Ask("C", "D"), s.Next())
	require.NoError(t, s.Resolve("D", "C"))
	champ, _ = s.Champion()
	assert.Equal(t, "D", champ)
	assert.Equal(t, []string{"A", "C"}, s.Backlog())

	// D has no challengers left and is ranked. C comes back from the
	// backlog; it sits last among [A B C] so it is ranked at once, and A
	// follows from the backlog with its cached win over B.
	step := s.Next()
	assert.True(t, step.IsDone(), "remaining order is implied by recorded decisions")
	assert.Equal(t, []string{"D", "C", "A", "B"}, s.RankedSoFar())

	stats := s.Stats()
	assert.Equal(t, 3, stats.Decisions)
	assert.Equal(t, 2, stats.Recovered)
	assert.Equal(t, 1, stats.Inferred, "A over B should be inferred from history")
	assert.Len(t, s.History(), 3)
}

// TestRankSession_ChallengerIndexAfterRecovery checks that a champion taken
// from the backlog resumes against the candidates after its own position.
func TestRankSession_ChallengerIndexAfterRecovery(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	answers := []struct{ winner, loser string }{
		{"B", "A"}, // B dethrones A
		{"C", "B"}, // C dethrones B
		{"C", "D"}, // C outlasts everyone and is ranked
	}
	for _, a := range answers {
		s.Next()
		require.NoError(t, s.Resolve(a.winner, a.loser))
	}

	step := s.Next()
	assert.Equal(t, Ask("B", "D"), step, "most recently dethroned champion must be tried before list order")
	champ, _ := s.Champion()
	assert.Equal(t, "B", champ)
	assert.Equal(t, []string{"A"}, s.Backlog())
	assert.Equal(t, []string{"C"}, s.RankedSoFar())
}

// TestRankSession_Totality drives sessions with every possible preference
// order and checks that the produced ranking equals it, that no pair is
// ever asked twice, and that no question contradicts the history.
func TestRankSession_Totality(t *testing.T) {
	universe := []string{"A", "B", "C", "D", "E"}

	for _, input := range [][]string{universe, {"E", "C", "A", "D", "B"}} {
		for _, truth := range permutations(universe) {
			t.Run(fmt.Sprintf("%v/%v", input, truth), func(t *testing.T) {
				s, err := NewRankSession(input)
				require.NoError(t, err)

				asked := drive(t, s, preferOrder(truth))

				assert.Equal(t, truth, s.RankedSoFar())
				assert.True(t, s.IsDone())

				seen := make(map[[2]string]bool)
				for _, q := range asked {
					key := [2]string{q.Left, q.Right}
					if q.Right < q.Left {
						key = [2]string{q.Right, q.Left}
					}
					assert.False(t, seen[key], "pair %v asked twice", key)
					seen[key] = true
				}
				n := len(universe)
				assert.LessOrEqual(t, len(asked), n*(n-1)/2)
			})
		}
	}
}

// TestRankSession_EightItems runs the full eight-category universe against
// a reversed preference, the worst case for list order.
func TestRankSession_EightItems(t *testing.T) {
	items := []string{"健康", "工作", "家庭", "休閒", "情緒", "成長", "人際", "財富"}
	truth := slices.Clone(items)
	slices.Reverse(truth)

	s, err := NewRankSession(items)
	require.NoError(t, err)

	asked := drive(t, s, preferOrder(truth))
	assert.Equal(t, truth, s.RankedSoFar())
	assert.LessOrEqual(t, len(asked), 28)
	assert.Equal(t, len(asked), s.Stats().Decisions)
}

// TestRankSession_IdempotentCompletion verifies that Next on a finished
// session keeps returning Done without touching state.
func TestRankSession_IdempotentCompletion(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C"})
	require.NoError(t, err)
	drive(t, s, preferOrder([]string{"C", "A", "B"}))

	ranked := s.RankedSoFar()
	stats := s.Stats()
	for range 5 {
		assert.True(t, s.Next().IsDone())
	}
	assert.Equal(t, ranked, s.RankedSoFar())
	assert.Equal(t, stats, s.Stats())
	_, ok := s.Champion()
	assert.False(t, ok)
}

// TestRankSession_NextRepeatsPendingQuestion verifies that Next is stable
// while a question is outstanding.
func TestRankSession_NextRepeatsPendingQuestion(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C"})
	require.NoError(t, err)

	first := s.Next()
	second := s.Next()
	assert.Equal(t, first, second)

	pending, ok := s.Pending()
	assert.True(t, ok)
	assert.Equal(t, first, pending)
}

// TestRankSession_ResolveUsageErrors covers caller contract violations and
// checks that rejected calls leave the session unchanged.
func TestRankSession_ResolveUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) *RankSession[string]
		winner  string
		loser   string
		wantErr error
	}{
		{
			name: "resolve before next",
			setup: func(t *testing.T) *RankSession[string] {
				s, err := NewRankSession([]string{"A", "B"})
				require.NoError(t, err)
				return s
			},
			winner: "A", loser: "B",
			wantErr: ErrNoPendingQuestion,
		},
		{
			name: "pair not asked",
			setup: func(t *testing.T) *RankSession[string] {
				s, err := NewRankSession([]string{"A", "B", "C"})
				require.NoError(t, err)
				s.Next()
				return s
			},
			winner: "A", loser: "C",
			wantErr: ErrPairMismatch,
		},
		{
			name: "winner equals loser",
			setup: func(t *testing.T) *RankSession[string] {
				s, err := NewRankSession([]string{"A", "B"})
				require.NoError(t, err)
				s.Next()
				return s
			},
			winner: "A", loser: "A",
			wantErr: ErrPairMismatch,
		},
		{
			name: "resolve twice",
			setup: func(t *testing.T) *RankSession[string] {
				s, err := NewRankSession([]string{"A", "B", "C"})
				require.NoError(t, err)
				s.Next()
				require.NoError(t, s.Resolve("A", "B"))
				return s
			},
			winner: "A", loser: "B",
			wantErr: ErrNoPendingQuestion,
		},
		{
			name: "session done",
			setup: func(t *testing.T) *RankSession[string] {
				s, err := NewRankSession([]string{"A", "B"})
				require.NoError(t, err)
				s.Next()
				require.NoError(t, s.Resolve("B", "A"))
				require.True(t, s.Next().IsDone())
				return s
			},
			winner: "A", loser: "B",
			wantErr: ErrSessionDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setup(t)
			before := s.History()
			beforeStats := s.Stats()

			err := s.Resolve(tt.winner, tt.loser)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var usageErr *UsageError
			require.True(t, errors.As(err, &usageErr), "error should be a *UsageError")
			assert.Equal(t, "Resolve", usageErr.Operation)

			assert.Equal(t, before, s.History(), "rejected call must not touch history")
			assert.Equal(t, beforeStats, s.Stats())
		})
	}
}

// TestRankSession_ResolveOrderInsensitive verifies that the asked pair may
// be answered in either orientation.
func TestRankSession_ResolveOrderInsensitive(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C"})
	require.NoError(t, err)

	step := s.Next()
	require.Equal(t, Ask("A", "B"), step)
	require.NoError(t, s.Resolve("B", "A"))

	champ, _ := s.Champion()
	assert.Equal(t, "B", champ)
	assert.Equal(t, Ask("B", "C"), s.Next())
}

// TestRankSession_StaleBacklogEntries exercises champion selection when the
// backlog holds items that were already ranked.
func TestRankSession_StaleBacklogEntries(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	// Force a state where B was ranked while still on the backlog.
	s.ranked = []string{"B"}
	s.candidates = []string{"A", "C", "D"}
	s.champion = "D"
	s.challenger = 3
	s.backlog = []string{"A", "B"}

	step := s.Next()
	assert.Equal(t, Ask("A", "C"), step)
	assert.Equal(t, []string{"B", "D"}, s.RankedSoFar())
	champ, _ := s.Champion()
	assert.Equal(t, "A", champ, "stale B must be skipped in favour of A")
	assert.Empty(t, s.Backlog())
	assert.Equal(t, 1, s.Stats().Discarded)
	assert.Equal(t, 1, s.Stats().Recovered)
}

// TestRankSession_StaleBacklogFallsBackToListOrder checks that an
// exhausted backlog falls back to the first remaining candidate.
func TestRankSession_StaleBacklogFallsBackToListOrder(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	s.ranked = []string{"A"}
	s.candidates = []string{"B", "C", "D"}
	s.champion = "D"
	s.challenger = 3
	s.backlog = []string{"A"}

	assert.Equal(t, Ask("B", "C"), s.Next())
	assert.Equal(t, []string{"A", "D"}, s.RankedSoFar())
	assert.Empty(t, s.Backlog())
	assert.Equal(t, 1, s.Stats().Discarded)
	assert.Equal(t, 0, s.Stats().Recovered)
}

// TestRankSession_CachedChallengerWinDethrones verifies that a known
// challenger win promotes the challenger without asking.
func TestRankSession_CachedChallengerWinDethrones(t *testing.T) {
	s, err := NewRankSession([]string{"A", "B", "C"})
	require.NoError(t, err)
	s.history.Record("B", "A")

	step := s.Next()
	assert.Equal(t, Ask("B", "C"), step)
	assert.Equal(t, []string{"A"}, s.Backlog())
	assert.Equal(t, 1, s.Stats().Inferred)
}

// TestRankSession_IndependentInstances ensures two sessions share no state.
func TestRankSession_IndependentInstances(t *testing.T) {
	items := []string{"A", "B", "C"}
	first, err := NewRankSession(items)
	require.NoError(t, err)
	second, err := NewRankSession(items)
	require.NoError(t, err)

	drive(t, first, preferOrder([]string{"C", "B", "A"}))
	assert.Equal(t, Ask("A", "B"), second.Next())
	assert.Empty(t, second.History())
}

// TestRankSession_GenericItems checks the session with a non-string item type.
func TestRankSession_GenericItems(t *testing.T) {
	s, err := NewRankSession([]int{3, 1, 4, 2})
	require.NoError(t, err)

	drive(t, s, func(a, b int) int { return max(a, b) })
	assert.Equal(t, []int{4, 3, 2, 1}, s.RankedSoFar())
}
