package attendance

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusOnLeave AttendanceStatus = "on_leave"
)

// Record is one raw attendance record for one employee and date.
type Record struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	Date            time.Time
	ClockIn         *time.Time
	ClockOut        *time.Time
	WorkMinutes     *int
	LateMinutes     *int
	OvertimeMinutes *int
	Status          AttendanceStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Totals is one employee's attendance folded over a period, after grace and
// rounding rules were applied per record. Every downstream consumer (payroll,
// reports) reads these totals, never the raw records, so the numbers agree.
type Totals struct {
	EmployeeID       string
	PresentDays      int // days worked on time
	LateDays         int // days worked but late
	WorkedDays       int // present + late
	AbsentDays       int
	OnLeaveDays      int
	TotalWorkMinutes int
	OvertimeMinutes  int
	TotalLateMinutes int
}
