package payroll

import (
	"testing"

	"github.com/gajihub/payroll-core-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
)

func TestApplyManualEdit(t *testing.T) {
	item := payroll.PayrollItem{
		Allowances: dec("100000"),
		Bonuses:    dec("0"),
		Pinned:     payroll.PinnedFields{},
	}

	bonus := dec("500000")
	deductions := dec("0")
	applyManualEdit(&item, payroll.UpdatePayrollItemRequest{
		Bonuses:    &bonus,
		Deductions: &deductions,
	})

	assert.True(t, item.Bonuses.Equal(dec("500000")))
	assert.True(t, item.Pinned.Has(payroll.FieldBonuses))

	// An explicit zero is an edit too, and pins the field.
	assert.True(t, item.Deductions.IsZero())
	assert.True(t, item.Pinned.Has(payroll.FieldDeductions))

	// Untouched fields stay unpinned.
	assert.False(t, item.Pinned.Has(payroll.FieldAllowances))
	assert.True(t, item.Allowances.Equal(dec("100000")))
}

func TestUpdatePayrollItemRequestValidate(t *testing.T) {
	t.Run("requires at least one field", func(t *testing.T) {
		err := payroll.UpdatePayrollItemRequest{ID: "item-1"}.Validate()
		assert.Error(t, err)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		neg := dec("-1")
		err := payroll.UpdatePayrollItemRequest{ID: "item-1", Bonuses: &neg}.Validate()
		assert.Error(t, err)
	})

	t.Run("accepts an explicit zero", func(t *testing.T) {
		zero := dec("0")
		err := payroll.UpdatePayrollItemRequest{ID: "item-1", THR: &zero}.Validate()
		assert.NoError(t, err)
	})
}
