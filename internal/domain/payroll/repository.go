package payroll

import "context"

// PayrollRepository defines data access for payroll runs and their items.
// All methods take companyID where the caller's scope must be enforced.
type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	// GetRunByIDForUpdate locks the run row for the transaction carried in ctx.
	GetRunByIDForUpdate(ctx context.Context, id string, companyID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string) ([]PayrollRun, error)
	UpdateRunStatus(ctx context.Context, run PayrollRun) error
	DeleteRun(ctx context.Context, id string, companyID string) error

	// Items
	CreateItems(ctx context.Context, items []PayrollItem) ([]PayrollItem, error)
	GetItemsByRunID(ctx context.Context, runID string) ([]PayrollItem, error)
	GetItemByID(ctx context.Context, id string) (PayrollItem, error)
	ReplaceItemComputed(ctx context.Context, item PayrollItem) error
	UpdateItemManual(ctx context.Context, item PayrollItem) error
	DeleteItemsByRunID(ctx context.Context, runID string) error

	// Aggregations
	GetSummary(ctx context.Context, companyID string, year, month int) (PayrollSummaryResponse, error)
}
