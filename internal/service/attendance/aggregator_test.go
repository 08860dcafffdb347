package attendance

import (
	"testing"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/attendance"
	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func record(status attendance.AttendanceStatus, workMin, lateMin, otMin int) attendance.Record {
	return attendance.Record{
		EmployeeID:      "emp-1",
		Date:            time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		Status:          status,
		WorkMinutes:     intPtr(workMin),
		LateMinutes:     intPtr(lateMin),
		OvertimeMinutes: intPtr(otMin),
	}
}

func TestAggregator_Fold(t *testing.T) {
	agg := NewAggregator()

	t.Run("counts days by status", func(t *testing.T) {
		records := []attendance.Record{
			record(attendance.AttendanceStatusPresent, 480, 0, 0),
			record(attendance.AttendanceStatusPresent, 480, 0, 60),
			record(attendance.AttendanceStatusLate, 450, 30, 0),
			record(attendance.AttendanceStatusAbsent, 0, 0, 0),
			record(attendance.AttendanceStatusOnLeave, 0, 0, 0),
		}

		totals := agg.Fold("emp-1", records, policy.AttendanceRulesConfig{})

		assert.Equal(t, 2, totals.PresentDays)
		assert.Equal(t, 1, totals.LateDays)
		assert.Equal(t, 3, totals.WorkedDays)
		assert.Equal(t, 1, totals.AbsentDays)
		assert.Equal(t, 1, totals.OnLeaveDays)
		assert.Equal(t, 1410, totals.TotalWorkMinutes)
		assert.Equal(t, 60, totals.OvertimeMinutes)
		assert.Equal(t, 30, totals.TotalLateMinutes)
	})

	t.Run("grace period absorbs small lateness", func(t *testing.T) {
		records := []attendance.Record{
			record(attendance.AttendanceStatusLate, 470, 10, 0),
			record(attendance.AttendanceStatusLate, 440, 40, 0),
		}

		totals := agg.Fold("emp-1", records, policy.AttendanceRulesConfig{GracePeriodMinutes: 15})

		// 10 minutes is within grace: the day counts as present. The 40-minute
		// day stays late with the grace deducted.
		assert.Equal(t, 1, totals.PresentDays)
		assert.Equal(t, 1, totals.LateDays)
		assert.Equal(t, 25, totals.TotalLateMinutes)
	})

	t.Run("rounding applies per record before summation", func(t *testing.T) {
		records := []attendance.Record{
			record(attendance.AttendanceStatusPresent, 467, 0, 0),
			record(attendance.AttendanceStatusPresent, 473, 0, 0),
		}

		totals := agg.Fold("emp-1", records, policy.AttendanceRulesConfig{
			RoundingEnabled:         true,
			RoundingIntervalMinutes: 15,
		})

		// 467 rounds down to 465, 473 rounds up to 480.
		assert.Equal(t, 945, totals.TotalWorkMinutes)
	})

	t.Run("below minimum work counts as absent", func(t *testing.T) {
		records := []attendance.Record{
			record(attendance.AttendanceStatusPresent, 90, 0, 0),
			record(attendance.AttendanceStatusPresent, 480, 0, 0),
		}

		totals := agg.Fold("emp-1", records, policy.AttendanceRulesConfig{MinimumWorkMinutes: 240})

		assert.Equal(t, 1, totals.PresentDays)
		assert.Equal(t, 1, totals.AbsentDays)
		assert.Equal(t, 480, totals.TotalWorkMinutes)
	})

	t.Run("empty period folds to zero totals", func(t *testing.T) {
		totals := agg.Fold("emp-1", nil, policy.AttendanceRulesConfig{})

		assert.Equal(t, "emp-1", totals.EmployeeID)
		assert.Zero(t, totals.WorkedDays)
		assert.Zero(t, totals.TotalWorkMinutes)
	})
}

func TestAggregator_FoldCompany(t *testing.T) {
	agg := NewAggregator()

	r1 := record(attendance.AttendanceStatusPresent, 480, 0, 0)
	r2 := record(attendance.AttendanceStatusPresent, 480, 0, 0)
	r2.EmployeeID = "emp-2"
	r3 := record(attendance.AttendanceStatusAbsent, 0, 0, 0)
	r3.EmployeeID = "emp-2"

	totals := agg.FoldCompany([]attendance.Record{r1, r2, r3}, policy.AttendanceRulesConfig{})

	assert.Len(t, totals, 2)
	assert.Equal(t, 1, totals["emp-1"].PresentDays)
	assert.Equal(t, 1, totals["emp-2"].PresentDays)
	assert.Equal(t, 1, totals["emp-2"].AbsentDays)
}
