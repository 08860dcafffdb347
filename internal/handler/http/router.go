package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/gajihub/payroll-core-go/internal/handler/http/middleware"
	"github.com/gajihub/payroll-core-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	policyHandler PolicyHandler,
	leaveHandler LeaveHandler,
	overtimeHandler OvertimeHandler,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-core"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/policies", func(r chi.Router) {
				r.Get("/{type}", policyHandler.GetActive)
				r.Get("/{type}/history", policyHandler.GetHistory)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", policyHandler.CreateVersion)
					r.Put("/{id}", policyHandler.UpdateActive)
				})
			})

			r.Route("/leave-types", func(r chi.Router) {
				r.Get("/", leaveHandler.ListLeaveTypes)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", leaveHandler.CreateLeaveType)
					r.Put("/{id}", leaveHandler.UpdateLeaveType)
					r.Delete("/{id}", leaveHandler.DeactivateLeaveType)
				})
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", leaveHandler.CreateRequest)
				r.Get("/", leaveHandler.ListRequests)
				r.Get("/{id}", leaveHandler.GetRequest)
				r.Put("/{id}", leaveHandler.UpdateRequest)
				r.Delete("/{id}", leaveHandler.DeleteRequest)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", leaveHandler.ApproveRequest)
					r.Post("/{id}/reject", leaveHandler.RejectRequest)
				})
			})

			r.Route("/employees/{employeeId}", func(r chi.Router) {
				r.Get("/leave-requests", leaveHandler.ListEmployeeRequests)
				r.Get("/leave-balances", leaveHandler.ListBalances)
				r.Get("/leave-balances/{leaveTypeId}", leaveHandler.GetBalance)
				r.Get("/overtime-requests", overtimeHandler.ListByEmployee)
				r.Get("/attendance-totals", attendanceHandler.GetEmployeeTotals)
			})

			r.Route("/overtime-requests", func(r chi.Router) {
				r.Post("/", overtimeHandler.Create)
				r.Get("/", overtimeHandler.List)
				r.Get("/{id}", overtimeHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", overtimeHandler.Approve)
					r.Post("/{id}/reject", overtimeHandler.Reject)
				})
			})

			r.Route("/attendance-totals", func(r chi.Router) {
				r.Get("/", attendanceHandler.GetCompanyTotals)
			})

			// Admin only
			r.Route("/payroll-runs", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", payrollHandler.CreateRun)
				r.Get("/", payrollHandler.ListRuns)
				r.Get("/summary", payrollHandler.GetSummary)
				r.Get("/{id}", payrollHandler.GetRun)
				r.Delete("/{id}", payrollHandler.DeleteRun)
				r.Post("/{id}/recalculate", payrollHandler.Recalculate)
				r.Post("/{id}/lock", payrollHandler.LockRun)
				r.Post("/{id}/mark-paid", payrollHandler.MarkPaid)
				r.Patch("/{id}/items/{itemId}", payrollHandler.UpdateItem)
			})
		})
	})
	return r
}
