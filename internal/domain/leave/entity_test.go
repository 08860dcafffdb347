package leave

import (
	"testing"
	"time"
)

func TestWorkingDays(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			// Monday through Sunday: the Monday is excluded, Tue-Sun count.
			name:  "full week excludes monday",
			start: day(2024, time.April, 8),
			end:   day(2024, time.April, 14),
			want:  6,
		},
		{
			name:  "single monday counts zero",
			start: day(2024, time.April, 8),
			end:   day(2024, time.April, 8),
			want:  0,
		},
		{
			name:  "single tuesday counts one",
			start: day(2024, time.April, 9),
			end:   day(2024, time.April, 9),
			want:  1,
		},
		{
			name:  "two full weeks",
			start: day(2024, time.April, 8),
			end:   day(2024, time.April, 21),
			want:  12,
		},
		{
			name:  "start after end yields zero",
			start: day(2024, time.April, 14),
			end:   day(2024, time.April, 8),
			want:  0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WorkingDays(tc.start, tc.end)
			if got != tc.want {
				t.Errorf("WorkingDays(%s, %s) = %d, want %d",
					tc.start.Format("2006-01-02"), tc.end.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}
