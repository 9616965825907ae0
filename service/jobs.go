package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/sqlbuild"
)

// CreateJob validates p and stores a new job for an existing company.
func (s *Service) CreateJob(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	if err := s.validateJob(p); err != nil {
		return nil, err
	}

	j, err := repo.NewJobRepo(s.db).Insert(ctx, p)
	if db.IsForeignKeyViolation(err) {
		return nil, badRequest(err, "Unknown company: %s", p.CompanyHandle)
	}
	if err != nil {
		return nil, classify(err, "")
	}

	s.log.InfoContext(ctx, "job created", "id", j.ID, "company", j.CompanyHandle)
	return j, nil
}

// CreateJobs stores every job in params or none of them.
func (s *Service) CreateJobs(ctx context.Context, params []models.CreateJobParams) ([]*models.Job, error) {
	for i, p := range params {
		if err := s.validateJob(p); err != nil {
			return nil, badRequest(err, "job %d: %v", i, err)
		}
	}

	var jobs []*models.Job
	err := s.db.ExecTx(ctx, func(tx *db.Tx) error {
		var err error
		jobs, err = repo.NewJobRepo(tx).BatchInsert(ctx, params)
		return err
	})
	if db.IsForeignKeyViolation(err) {
		return nil, badRequest(err, "Unknown company")
	}
	if err != nil {
		return nil, classify(err, "")
	}

	s.log.InfoContext(ctx, "jobs created", "count", len(jobs))
	return jobs, nil
}

func (s *Service) validateJob(p models.CreateJobParams) error {
	if err := s.validate.Struct(p); err != nil {
		return validationError(err)
	}
	if p.Equity.Valid && !validEquity(p.Equity.Decimal) {
		return badRequest(nil, "equity: must be a number between 0 and 1")
	}
	return nil
}

// ListJobs returns the jobs matching criteria, ordered by id. Keys outside
// models.JobFilterPolicy are rejected.
func (s *Service) ListJobs(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Job, error) {
	if unknown := models.JobFilterPolicy.Unknown(criteria); len(unknown) > 0 {
		return nil, badRequest(nil, "unknown filter: %s", strings.Join(unknown, ", "))
	}
	jobs, err := repo.NewJobRepo(s.db).Filter(ctx, criteria)
	if err != nil {
		return nil, classify(err, "")
	}
	return jobs, nil
}

// GetJob returns a job by id.
func (s *Service) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	j, err := repo.NewJobRepo(s.db).Get(ctx, id)
	if err != nil {
		return nil, classify(err, noJob(id))
	}
	return j, nil
}

// UpdateJob applies a partial update. Allowed fields are title, salary and
// equity.
func (s *Service) UpdateJob(ctx context.Context, id int64, payload sqlbuild.Payload) (*models.Job, error) {
	payload, err := s.normalize(jobFields, payload)
	if err != nil {
		return nil, err
	}

	j, err := repo.NewJobRepo(s.db).Update(ctx, id, payload)
	if err != nil {
		return nil, classify(err, noJob(id))
	}

	s.log.InfoContext(ctx, "job updated", "id", id, "fields", payload.Names())
	return j, nil
}

// DeleteJob removes a job by id.
func (s *Service) DeleteJob(ctx context.Context, id int64) error {
	if err := repo.NewJobRepo(s.db).Delete(ctx, id); err != nil {
		return classify(err, noJob(id))
	}
	s.log.InfoContext(ctx, "job deleted", "id", id)
	return nil
}

func noJob(id int64) string { return fmt.Sprintf("No Job: %d", id) }
