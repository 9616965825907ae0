package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// JobRepository interface: for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// JobRepository defines the contract for job persistence.
type JobRepository interface {
	Insert(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	BatchInsert(ctx context.Context, params []models.CreateJobParams) ([]*models.Job, error)
	FindAll(ctx context.Context) ([]*models.Job, error)
	Filter(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, id int64, payload sqlbuild.Payload) (*models.Job, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q.
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const jobColumns = `id, title, salary, equity, company_handle`

const (
	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES (:title, :salary, :equity, :company_handle)`

	sqlSelectJob = `
		SELECT ` + jobColumns + `
		FROM   jobs
		WHERE  id = :id`

	sqlDeleteJob = `
		DELETE FROM jobs WHERE id = :id`

	sqlCountJobs = `
		SELECT COUNT(*) FROM jobs`
)

func jobValues(p models.CreateJobParams) map[string]any {
	return map[string]any{
		"title":          p.Title,
		"salary":         p.Salary,
		"equity":         p.Equity,
		"company_handle": p.CompanyHandle,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Insert
// ─────────────────────────────────────────────────────────────────────────────

// Insert creates a job and returns it with its assigned id. A missing
// company surfaces as db.ErrForeignKeyViolation.
func (r *jobRepo) Insert(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	d := r.q.Dialect()
	if d.Returning {
		query, args, err := bind(d, sqlInsertJob+"\n\t\tRETURNING "+jobColumns, jobValues(p))
		if err != nil {
			return nil, fmt.Errorf("repo/job: %w", err)
		}
		return scanJob(r.q.QueryRow(ctx, query, args...))
	}

	query, args, err := bind(d, sqlInsertJob, jobValues(p))
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repo/job: last insert id: %w", err)
	}
	return r.Get(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// BatchInsert
// ─────────────────────────────────────────────────────────────────────────────

// BatchInsert inserts jobs through one prepared statement. Run it inside
// db.ExecTx to make the batch all-or-nothing.
func (r *jobRepo) BatchInsert(ctx context.Context, params []models.CreateJobParams) ([]*models.Job, error) {
	if len(params) == 0 {
		return nil, nil
	}

	d := r.q.Dialect()
	src := sqlInsertJob
	if d.Returning {
		src += "\n\t\tRETURNING " + jobColumns
	}
	t := template(d, src)

	stmt, err := r.q.Prepare(ctx, t.SQL())
	if err != nil {
		return nil, fmt.Errorf("repo/job: prepare: %w", err)
	}
	defer stmt.Close()

	jobs := make([]*models.Job, 0, len(params))
	for _, p := range params {
		args, err := t.Args(jobValues(p))
		if err != nil {
			return nil, fmt.Errorf("repo/job: %w", err)
		}

		var j *models.Job
		if d.Returning {
			j, err = scanJob(stmt.QueryRow(ctx, args...))
		} else {
			j, err = r.insertByID(ctx, stmt, args)
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (r *jobRepo) insertByID(ctx context.Context, stmt *db.Stmt, args []any) (*models.Job, error) {
	res, err := stmt.Exec(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repo/job: last insert id: %w", err)
	}
	return r.Get(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll / Filter
// ─────────────────────────────────────────────────────────────────────────────

// FindAll returns every job ordered by id.
func (r *jobRepo) FindAll(ctx context.Context) ([]*models.Job, error) {
	return r.list(ctx, sqlbuild.Predicate{})
}

// Filter returns the jobs matching criteria under models.JobFilterPolicy,
// ordered by id. Empty criteria match every job.
func (r *jobRepo) Filter(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Job, error) {
	pred, err := sqlbuild.NewCompiler(r.q.Dialect()).CompilePredicate(criteria, models.JobFilterPolicy)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, pred)
}

func (r *jobRepo) list(ctx context.Context, pred sqlbuild.Predicate) ([]*models.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM   jobs
		%s
		ORDER  BY id`, jobColumns, pred.Where())

	rows, err := r.q.Query(ctx, query, pred.Args...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		j := &models.Job{}
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, fmt.Errorf("repo/job: scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

// Get returns a single job by id.
// Returns db.ErrNotFound when no record matches.
func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	query, args, err := bind(r.q.Dialect(), sqlSelectJob, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return scanJob(r.q.QueryRow(ctx, query, args...))
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update applies payload to the job with id. Fields are mapped through
// models.JobColumns. Returns db.ErrNotFound when no job matches.
func (r *jobRepo) Update(ctx context.Context, id int64, payload sqlbuild.Payload) (*models.Job, error) {
	d := r.q.Dialect()
	a, err := sqlbuild.NewCompiler(d).CompileAssignment(payload, models.JobColumns)
	if err != nil {
		return nil, err
	}

	args := append(a.Values, id)
	query := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = %s`,
		a.SQL(), d.Placeholder(a.Next()))

	if d.Returning {
		return scanJob(r.q.QueryRow(ctx, query+"\n\t\tRETURNING "+jobColumns, args...))
	}

	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return r.Get(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / Count
// ─────────────────────────────────────────────────────────────────────────────

// Delete removes a job by id.
// Returns db.ErrNotFound if no row was deleted.
func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := bind(r.q.Dialect(), sqlDeleteJob, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("repo/job: %w", err)
	}
	res, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repo/job: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("repo/job: %w", err)
	}
	return nil
}

// Count returns the total number of jobs.
func (r *jobRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountJobs).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/job: %w", err)
	}
	return n, nil
}

// scanJob scans a row selected with jobColumns.
func scanJob(row *db.Row) (*models.Job, error) {
	j := &models.Job{}
	if err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return j, nil
}

var _ JobRepository = (*jobRepo)(nil)
