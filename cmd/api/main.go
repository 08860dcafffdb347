package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gajihub/payroll-core-go/internal/config"
	"github.com/gajihub/payroll-core-go/internal/domain/audit"
	appHTTP "github.com/gajihub/payroll-core-go/internal/handler/http"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
	"github.com/gajihub/payroll-core-go/internal/pkg/keylock"
	"github.com/gajihub/payroll-core-go/internal/repository/postgresql"
	attendanceService "github.com/gajihub/payroll-core-go/internal/service/attendance"
	leaveService "github.com/gajihub/payroll-core-go/internal/service/leave"
	overtimeService "github.com/gajihub/payroll-core-go/internal/service/overtime"
	payrollService "github.com/gajihub/payroll-core-go/internal/service/payroll"
	policyService "github.com/gajihub/payroll-core-go/internal/service/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	policyRepo := postgresql.NewPolicyRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	directory := postgresql.NewEmployeeDirectory(db)
	calendar := postgresql.NewHolidayCalendar(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	auditor := audit.NewSlogRecorder(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	employeeLocks := keylock.New()
	runLocks := keylock.New()

	policySvc := policyService.NewPolicyService(policyRepo, auditor)
	leaveSvc := leaveService.NewLeaveService(
		db,
		leaveTypeRepo,
		leaveRequestRepo,
		directory,
		policySvc,
		leaveService.NewBalanceCalculator(),
		employeeLocks,
		auditor,
	)
	overtimeSvc := overtimeService.NewOvertimeService(
		overtimeRepo,
		directory,
		policySvc,
		calendar,
		overtimeService.NewCalculator(),
		auditor,
	)
	aggregator := attendanceService.NewAggregator()
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policySvc, aggregator)
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		directory,
		attendanceRepo,
		overtimeRepo,
		policySvc,
		aggregator,
		payrollService.NewItemBuilder(),
		runLocks,
		auditor,
	)

	policyHandler := appHTTP.NewPolicyHandler(policySvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	overtimeHandler := appHTTP.NewOvertimeHandler(overtimeSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		jwtService,
		policyHandler,
		leaveHandler,
		overtimeHandler,
		attendanceHandler,
		payrollHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
