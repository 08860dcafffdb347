package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gajihub/payroll-core-go/internal/handler/http/response"
	attendanceservice "github.com/gajihub/payroll-core-go/internal/service/attendance"
)

var errInvalidPeriod = errors.New("query params 'year' and 'month' are required")

type AttendanceHandler interface {
	GetEmployeeTotals(w http.ResponseWriter, r *http.Request)
	GetCompanyTotals(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService *attendanceservice.AttendanceService
}

func NewAttendanceHandler(attendanceService *attendanceservice.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// GetEmployeeTotals implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeTotals(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	year, month, err := parsePeriod(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.attendanceService.GetEmployeeTotals(r.Context(), employeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCompanyTotals implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetCompanyTotals(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.attendanceService.GetCompanyTotals(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func parsePeriod(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, errInvalidPeriod
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidPeriod
	}
	return year, time.Month(month), nil
}
