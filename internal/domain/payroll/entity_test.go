package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from RunStatus
		to   RunStatus
		want bool
	}{
		{RunStatusDraft, RunStatusProcessing, true},
		{RunStatusDraft, RunStatusLocked, true},
		{RunStatusDraft, RunStatusPaid, false},
		{RunStatusProcessing, RunStatusDraft, true},
		{RunStatusProcessing, RunStatusLocked, true},
		{RunStatusLocked, RunStatusPaid, true},
		{RunStatusLocked, RunStatusDraft, false},
		{RunStatusLocked, RunStatusProcessing, false},
		{RunStatusLocked, RunStatusLocked, false},
		{RunStatusPaid, RunStatusDraft, false},
		{RunStatusPaid, RunStatusLocked, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestRunStatus_Editable(t *testing.T) {
	assert.True(t, RunStatusDraft.Editable())
	assert.True(t, RunStatusProcessing.Editable())
	assert.False(t, RunStatusLocked.Editable())
	assert.False(t, RunStatusPaid.Editable())
}

func TestInvalidStateTransitionError(t *testing.T) {
	err := &InvalidStateTransitionError{Current: RunStatusLocked, Attempted: "delete"}

	assert.True(t, IsInvalidStateTransition(err))
	assert.Contains(t, err.Error(), "locked")
	assert.Contains(t, err.Error(), "delete")
	assert.False(t, IsInvalidStateTransition(ErrPayrollRunNotFound))
}

func TestPinnedFields(t *testing.T) {
	t.Run("pin extends without mutating the receiver", func(t *testing.T) {
		base := PinnedFields{FieldBonuses: true}
		extended := base.Pin(FieldTHR)

		assert.True(t, extended.Has(FieldBonuses))
		assert.True(t, extended.Has(FieldTHR))
		assert.False(t, base.Has(FieldTHR))
	})

	t.Run("round-trips through database storage", func(t *testing.T) {
		pinned := PinnedFields{}.Pin(FieldAllowances, FieldDeductions)

		value, err := pinned.Value()
		assert.NoError(t, err)

		var restored PinnedFields
		assert.NoError(t, restored.Scan(value))
		assert.True(t, restored.Has(FieldAllowances))
		assert.True(t, restored.Has(FieldDeductions))
		assert.False(t, restored.Has(FieldBonuses))
	})

	t.Run("empty set stores as an empty array", func(t *testing.T) {
		value, err := PinnedFields{}.Value()
		assert.NoError(t, err)
		assert.Equal(t, []byte("[]"), value)
	})

	t.Run("scanning nil yields an empty set", func(t *testing.T) {
		var p PinnedFields
		assert.NoError(t, p.Scan(nil))
		assert.NotNil(t, p)
		assert.False(t, p.Has(FieldBonuses))
	})
}
