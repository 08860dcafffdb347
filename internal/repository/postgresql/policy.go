package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}

const policyColumns = `id, company_id, type, version, config, is_active, created_at`

func scanPolicy(row pgx.Row) (policy.Policy, error) {
	var p policy.Policy
	err := row.Scan(&p.ID, &p.CompanyID, &p.Type, &p.Version, &p.Config, &p.IsActive, &p.CreatedAt)
	return p, err
}

func (r *policyRepository) GetActive(ctx context.Context, companyID string, policyType policy.PolicyType) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE company_id = $1 AND type = $2 AND is_active = true
	`

	p, err := scanPolicy(q.QueryRow(ctx, query, companyID, policyType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotConfigured
		}
		return policy.Policy{}, fmt.Errorf("failed to get active policy: %w", err)
	}

	return p, nil
}

func (r *policyRepository) GetByID(ctx context.Context, id string) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE id = $1
	`

	p, err := scanPolicy(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, fmt.Errorf("failed to get policy: %w", err)
	}

	return p, nil
}

func (r *policyRepository) GetHistory(ctx context.Context, companyID string, policyType policy.PolicyType) ([]policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + policyColumns + `
		FROM policies
		WHERE company_id = $1 AND type = $2
		ORDER BY version DESC
	`

	rows, err := q.Query(ctx, query, companyID, policyType)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy history: %w", err)
	}
	defer rows.Close()

	var policies []policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}

	return policies, nil
}

// CreateVersion assigns the next version, deactivates the prior active row of
// the same type and inserts the new active row in one transaction. A
// per-(company, type) advisory lock serializes concurrent creators; the
// unique index on (company_id, type, version) backstops the version chain.
func (r *policyRepository) CreateVersion(ctx context.Context, companyID string, policyType policy.PolicyType, config policy.Config) (policy.Policy, error) {
	var created policy.Policy

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, companyID, string(policyType)); err != nil {
			return fmt.Errorf("failed to acquire policy lock: %w", err)
		}

		var nextVersion int
		err := q.QueryRow(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1
			FROM policies
			WHERE company_id = $1 AND type = $2
		`, companyID, policyType).Scan(&nextVersion)
		if err != nil {
			return fmt.Errorf("failed to determine next policy version: %w", err)
		}

		if _, err := q.Exec(ctx, `
			UPDATE policies
			SET is_active = false
			WHERE company_id = $1 AND type = $2 AND is_active = true
		`, companyID, policyType); err != nil {
			return fmt.Errorf("failed to deactivate prior policy version: %w", err)
		}

		created, err = scanPolicy(q.QueryRow(ctx, `
			INSERT INTO policies (id, company_id, type, version, config, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, true)
			RETURNING `+policyColumns+`
		`, companyID, policyType, nextVersion, config))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return policy.ErrVersionConflict
			}
			return fmt.Errorf("failed to insert policy version: %w", err)
		}

		return nil
	})
	if err != nil {
		return policy.Policy{}, err
	}

	return created, nil
}

// UpdateActiveConfig edits the config of an existing version in place without
// bumping the version. Used for minor corrections only; the row must still be
// the active one.
func (r *policyRepository) UpdateActiveConfig(ctx context.Context, id string, config policy.Config) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE policies
		SET config = $2
		WHERE id = $1 AND is_active = true
		RETURNING ` + policyColumns + `
	`

	p, err := scanPolicy(q.QueryRow(ctx, query, id, config))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, fmt.Errorf("failed to update policy config: %w", err)
	}

	return p, nil
}
