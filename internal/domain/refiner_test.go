package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRefinementSession verifies that only distinct triads are accepted.
func TestNewRefinementSession(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c string
		wantErr bool
	}{
		{name: "distinct", a: "sun", b: "sea", c: "sky"},
		{name: "a equals b", a: "sun", b: "sun", c: "sky", wantErr: true},
		{name: "a equals c", a: "sun", b: "sea", c: "sun", wantErr: true},
		{name: "b equals c", a: "sun", b: "sea", c: "sea", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRefinementSession(tt.a, tt.b, tt.c)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDuplicateItem)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RefineStep1, r.Stage())
			assert.Equal(t, [3]string{tt.a, tt.b, tt.c}, r.Items())
		})
	}
}

// TestRefinementSession_AllOutcomes drives the refiner through every
// combination of answers and checks the asked pairs, the question count
// and the representative.
func TestRefinementSession_AllOutcomes(t *testing.T) {
	// pick[i] selects Left (true) or Right (false) at step i.
	for mask := range 8 {
		pick := [3]bool{mask&1 == 0, mask&2 == 0, mask&4 == 0}

		r, err := NewRefinementSession("A", "B", "C")
		require.NoError(t, err)

		var asked []Step[string]
		for i := 0; !r.IsDone(); i++ {
			require.Less(t, i, 3, "refiner must finish in three questions")
			step := r.Next()
			require.Equal(t, StepAsk, step.Kind)
			asked = append(asked, step)

			winner := step.Right
			if pick[i] {
				winner = step.Left
			}
			require.NoError(t, r.Resolve(winner))
		}

		require.Len(t, asked, 3)
		assert.Equal(t, 3, r.Asked())
		assert.Equal(t, Ask("A", "B"), asked[0])

		winner1, loser1 := "B", "A"
		if pick[0] {
			winner1, loser1 = "A", "B"
		}
		assert.Equal(t, Ask(winner1, "C"), asked[1])

		winner2 := "C"
		if pick[1] {
			winner2 = winner1
		}
		assert.Equal(t, Ask(winner2, loser1), asked[2])

		rep, ok := r.Representative()
		require.True(t, ok)
		assert.Contains(t, []string{"A", "B", "C"}, rep)
		if pick[2] {
			assert.Equal(t, winner2, rep)
		} else {
			assert.Equal(t, loser1, rep)
		}
	}
}

// TestRefinementSession_ForcedThirdQuestion checks that the final question
// is asked even when the first winner also beat the third item.
func TestRefinementSession_ForcedThirdQuestion(t *testing.T) {
	r, err := NewRefinementSession("A", "B", "C")
	require.NoError(t, err)

	require.NoError(t, r.Resolve("A"))
	require.NoError(t, r.Resolve("A"))

	assert.Equal(t, RefineStep3, r.Stage())
	assert.Equal(t, Ask("A", "B"), r.Next(), "A vs B is asked again as a deliberate re-confirmation")

	require.NoError(t, r.Resolve("B"))
	rep, ok := r.Representative()
	require.True(t, ok)
	assert.Equal(t, "B", rep)
}

// TestRefinementSession_ResolveUsageErrors covers invalid winners and
// resolving after completion.
func TestRefinementSession_ResolveUsageErrors(t *testing.T) {
	t.Run("winner not in pair", func(t *testing.T) {
		r, err := NewRefinementSession("A", "B", "C")
		require.NoError(t, err)

		err = r.Resolve("C")
		assert.ErrorIs(t, err, ErrPairMismatch)
		var usageErr *UsageError
		assert.True(t, errors.As(err, &usageErr))
		assert.Equal(t, RefineStep1, r.Stage(), "rejected call must not advance")
		assert.Equal(t, 0, r.Asked())
	})

	t.Run("resolve after done", func(t *testing.T) {
		r, err := NewRefinementSession("A", "B", "C")
		require.NoError(t, err)
		for !r.IsDone() {
			require.NoError(t, r.Resolve(r.Next().Left))
		}

		rep, _ := r.Representative()
		err = r.Resolve("A")
		assert.ErrorIs(t, err, ErrSessionDone)
		after, _ := r.Representative()
		assert.Equal(t, rep, after)
		assert.True(t, r.Next().IsDone())
	})

	t.Run("representative before done", func(t *testing.T) {
		r, err := NewRefinementSession("A", "B", "C")
		require.NoError(t, err)
		_, ok := r.Representative()
		assert.False(t, ok)
	})
}

// TestRefineStage_String verifies the stage names used in logs.
func TestRefineStage_String(t *testing.T) {
	assert.Equal(t, "step1", RefineStep1.String())
	assert.Equal(t, "step2", RefineStep2.String())
	assert.Equal(t, "step3", RefineStep3.String())
	assert.Equal(t, "done", RefineDone.String())
	assert.Equal(t, "unknown", RefineStage(0).String())
}
