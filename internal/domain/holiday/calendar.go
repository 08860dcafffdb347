package holiday

import (
	"context"
	"time"
)

// Calendar - external public-holiday lookup used for overtime day
// classification.
type Calendar interface {
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
}

// StaticCalendar is a fixed in-memory calendar, used in tests and as a
// fallback when no holiday table is provisioned.
type StaticCalendar map[string]bool

func (c StaticCalendar) IsHoliday(_ context.Context, _ string, date time.Time) (bool, error) {
	return c[date.Format("2006-01-02")], nil
}
