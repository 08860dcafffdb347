package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/gajihub/payroll-core-go/internal/domain/holiday"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
)

// holidayCalendar answers day-classification lookups from the public_holidays
// table maintained by an external service.
type holidayCalendar struct {
	db *database.DB
}

func NewHolidayCalendar(db *database.DB) holiday.Calendar {
	return &holidayCalendar{db: db}
}

func (r *holidayCalendar) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// National holidays have company_id NULL; company-specific ones match the id.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM public_holidays
			WHERE date = $1 AND (company_id IS NULL OR company_id = $2)
		)
	`

	var isHoliday bool
	if err := q.QueryRow(ctx, query, date, companyID).Scan(&isHoliday); err != nil {
		return false, fmt.Errorf("failed to check holiday calendar: %w", err)
	}

	return isHoliday, nil
}
