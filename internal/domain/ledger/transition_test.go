package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectZeroBalanceTransitions(t *testing.T) {
	t.Run("from zero, to zero and back", func(t *testing.T) {
		result := Calculate([]TransactionEvent{
			sale("s1", at(0), "100"),
			payment("p1", at(1), "100"),
			sale("s2", at(2), "40"),
		})

		transitions := DetectZeroBalanceTransitions(result.Events)
		require.Len(t, transitions, 3)
		assert.Equal(t, TransitionFromZero, transitions[0].TransitionType)
		assert.Equal(t, 0, transitions[0].EventIndex)
		assert.Equal(t, TransitionToZero, transitions[1].TransitionType)
		assert.True(t, transitions[1].PreviousDebt.Equal(dec("100")))
		assert.Equal(t, TransitionFromZero, transitions[2].TransitionType)
	})

	t.Run("through zero in both directions", func(t *testing.T) {
		result := Calculate([]TransactionEvent{
			sale("s1", at(0), "100"),
			payment("p1", at(1), "300"),
			sale("s2", at(2), "500"),
		})

		transitions := DetectZeroBalanceTransitions(result.Events)
		require.Len(t, transitions, 3)
		assert.Equal(t, TransitionThroughZero, transitions[1].TransitionType)
		assert.True(t, transitions[1].PreviousDebt.Equal(dec("100")))
		assert.True(t, transitions[1].NewDebt.Equal(dec("-200")))
		assert.Equal(t, TransitionThroughZero, transitions[2].TransitionType)
		assert.True(t, transitions[2].NewDebt.Equal(dec("300")))
	})

	t.Run("movement on the same side is not a transition", func(t *testing.T) {
		result := Calculate([]TransactionEvent{
			sale("s1", at(0), "100"),
			sale("s2", at(1), "100"),
			payment("p1", at(2), "50"),
		})

		transitions := DetectZeroBalanceTransitions(result.Events)
		require.Len(t, transitions, 1)
		assert.Equal(t, 0, transitions[0].EventIndex)
	})

	t.Run("no events", func(t *testing.T) {
		assert.Empty(t, DetectZeroBalanceTransitions(nil))
	})
}
