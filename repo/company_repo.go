package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// CompanyRepository interface: for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// CompanyRepository defines the contract for company persistence.
type CompanyRepository interface {
	Insert(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	Exists(ctx context.Context, handle string) (bool, error)
	FindAll(ctx context.Context) ([]*models.Company, error)
	Filter(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.CompanyDetail, error)
	Update(ctx context.Context, handle string, payload sqlbuild.Payload) (*models.Company, error)
	Delete(ctx context.Context, handle string) error
	Count(ctx context.Context) (int64, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// companyRepo: concrete implementation
// ─────────────────────────────────────────────────────────────────────────────

type companyRepo struct {
	q db.Querier
}

// NewCompanyRepo returns a CompanyRepository backed by q.
// q can be a *db.DB or *db.Tx: both satisfy db.Querier.
func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL: :name placeholders are rewritten for the connection's dialect
// ─────────────────────────────────────────────────────────────────────────────

const companyColumns = `handle, name, description, num_employees, logo_url`

const (
	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES (:handle, :name, :description, :num_employees, :logo_url)`

	sqlSelectCompany = `
		SELECT ` + companyColumns + `
		FROM   companies
		WHERE  handle = :handle`

	sqlCompanyExists = `
		SELECT 1 FROM companies WHERE handle = :handle`

	sqlGetCompanyWithJobs = `
		SELECT c.handle, c.name, c.description, c.num_employees, c.logo_url,
		       j.id, j.title, j.salary, j.equity
		FROM   companies AS c
		LEFT   JOIN jobs AS j ON j.company_handle = c.handle
		WHERE  c.handle = :handle
		ORDER  BY j.id`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = :handle`

	sqlCountCompanies = `
		SELECT COUNT(*) FROM companies`
)

// ─────────────────────────────────────────────────────────────────────────────
// Insert
// ─────────────────────────────────────────────────────────────────────────────

// Insert creates a company and returns the stored row. A taken handle or name
// surfaces as db.ErrDuplicateKey.
func (r *companyRepo) Insert(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	d := r.q.Dialect()
	values := map[string]any{
		"handle":        p.Handle,
		"name":          p.Name,
		"description":   p.Description,
		"num_employees": p.NumEmployees,
		"logo_url":      p.LogoURL,
	}

	if d.Returning {
		query, args, err := bind(d, sqlInsertCompany+"\n\t\tRETURNING "+companyColumns, values)
		if err != nil {
			return nil, fmt.Errorf("repo/company: %w", err)
		}
		return scanCompany(r.q.QueryRow(ctx, query, args...))
	}

	query, args, err := bind(d, sqlInsertCompany, values)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return r.find(ctx, p.Handle)
}

// ─────────────────────────────────────────────────────────────────────────────
// Exists
// ─────────────────────────────────────────────────────────────────────────────

// Exists reports whether a company with handle is stored.
func (r *companyRepo) Exists(ctx context.Context, handle string) (bool, error) {
	query, args, err := bind(r.q.Dialect(), sqlCompanyExists, map[string]any{"handle": handle})
	if err != nil {
		return false, fmt.Errorf("repo/company: %w", err)
	}
	var one int
	err = r.q.QueryRow(ctx, query, args...).Scan(&one)
	switch {
	case db.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("repo/company: %w", err)
	}
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll / Filter
// ─────────────────────────────────────────────────────────────────────────────

// FindAll returns every company ordered by name.
func (r *companyRepo) FindAll(ctx context.Context) ([]*models.Company, error) {
	return r.list(ctx, sqlbuild.Predicate{})
}

// Filter returns the companies matching criteria under
// models.CompanyFilterPolicy, ordered by name. Keys outside the policy are
// ignored; empty criteria match every company.
func (r *companyRepo) Filter(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Company, error) {
	pred, err := sqlbuild.NewCompiler(r.q.Dialect()).CompilePredicate(criteria, models.CompanyFilterPolicy)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, pred)
}

func (r *companyRepo) list(ctx context.Context, pred sqlbuild.Predicate) ([]*models.Company, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM   companies
		%s
		ORDER  BY name`, companyColumns, pred.Where())

	rows, err := r.q.Query(ctx, query, pred.Args...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c := &models.Company{}
		if err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
			return nil, fmt.Errorf("repo/company: scan: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Get: company plus its jobs
// ─────────────────────────────────────────────────────────────────────────────

// Get returns a company with the jobs it posts, ordered by job id.
// Returns db.ErrNotFound when no company matches.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	query, args, err := bind(r.q.Dialect(), sqlGetCompanyWithJobs, map[string]any{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	defer rows.Close()

	var detail *models.CompanyDetail
	for rows.Next() {
		var (
			c      models.Company
			jobID  sql.NullInt64
			title  sql.NullString
			salary *int64
			equity decimal.NullDecimal
		)
		err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL,
			&jobID, &title, &salary, &equity)
		if err != nil {
			return nil, fmt.Errorf("repo/company: scan: %w", err)
		}
		if detail == nil {
			detail = &models.CompanyDetail{Company: c, Jobs: make([]models.JobSummary, 0)}
		}
		// LEFT JOIN yields a single all-NULL job row for a company without jobs.
		if jobID.Valid {
			detail.Jobs = append(detail.Jobs, models.JobSummary{
				ID:     jobID.Int64,
				Title:  title.String,
				Salary: salary,
				Equity: equity,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("repo/company: %w", db.ErrNotFound)
	}
	return detail, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update: partial update compiled from the payload
// ─────────────────────────────────────────────────────────────────────────────

// Update applies payload to the company with handle. Payload fields use API
// names (numEmployees, logoUrl) and are mapped through models.CompanyColumns;
// the caller decides which fields are allowed. Returns db.ErrNotFound when no
// company matches.
func (r *companyRepo) Update(ctx context.Context, handle string, payload sqlbuild.Payload) (*models.Company, error) {
	d := r.q.Dialect()
	a, err := sqlbuild.NewCompiler(d).CompileAssignment(payload, models.CompanyColumns)
	if err != nil {
		return nil, err
	}

	args := append(a.Values, handle)
	query := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = %s`,
		a.SQL(), d.Placeholder(a.Next()))

	if d.Returning {
		return scanCompany(r.q.QueryRow(ctx, query+"\n\t\tRETURNING "+companyColumns, args...))
	}

	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return r.find(ctx, handle)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / Count
// ─────────────────────────────────────────────────────────────────────────────

// Delete removes a company and, through the foreign key, its jobs.
// Returns db.ErrNotFound if no row was deleted.
func (r *companyRepo) Delete(ctx context.Context, handle string) error {
	query, args, err := bind(r.q.Dialect(), sqlDeleteCompany, map[string]any{"handle": handle})
	if err != nil {
		return fmt.Errorf("repo/company: %w", err)
	}
	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repo/company: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("repo/company: %w", err)
	}
	return nil
}

// Count returns the total number of companies.
func (r *companyRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountCompanies).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/company: %w", err)
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// scanCompany: centralised column mapping
// ─────────────────────────────────────────────────────────────────────────────

func (r *companyRepo) find(ctx context.Context, handle string) (*models.Company, error) {
	query, args, err := bind(r.q.Dialect(), sqlSelectCompany, map[string]any{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return scanCompany(r.q.QueryRow(ctx, query, args...))
}

// scanCompany scans a row selected with companyColumns.
func scanCompany(row *db.Row) (*models.Company, error) {
	c := &models.Company{}
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
