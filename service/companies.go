package service

import (
	"context"
	"strings"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/sqlbuild"
)

// CreateCompany validates p and stores a new company. A handle or name that
// is already taken is a bad request.
func (s *Service) CreateCompany(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, validationError(err)
	}

	var created *models.Company
	err := s.db.ExecTx(ctx, func(tx *db.Tx) error {
		companies := repo.NewCompanyRepo(tx)
		exists, err := companies.Exists(ctx, p.Handle)
		if err != nil {
			return err
		}
		if exists {
			return badRequest(nil, "Duplicate company: %s", p.Handle)
		}
		created, err = companies.Insert(ctx, p)
		if db.IsDuplicateKey(err) {
			return badRequest(err, "Duplicate company name: %s", p.Name)
		}
		return err
	})
	if err != nil {
		return nil, classify(err, "")
	}

	s.log.InfoContext(ctx, "company created", "handle", created.Handle)
	return created, nil
}

// ListCompanies returns the companies matching criteria, ordered by name.
// Keys outside models.CompanyFilterPolicy are rejected.
func (s *Service) ListCompanies(ctx context.Context, criteria sqlbuild.Criteria) ([]*models.Company, error) {
	if unknown := models.CompanyFilterPolicy.Unknown(criteria); len(unknown) > 0 {
		return nil, badRequest(nil, "unknown filter: %s", strings.Join(unknown, ", "))
	}
	companies, err := repo.NewCompanyRepo(s.db).Filter(ctx, criteria)
	if err != nil {
		return nil, classify(err, "")
	}
	return companies, nil
}

// GetCompany returns a company with its jobs.
func (s *Service) GetCompany(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	c, err := repo.NewCompanyRepo(s.db).Get(ctx, handle)
	if err != nil {
		return nil, classify(err, "No company: "+handle)
	}
	return c, nil
}

// UpdateCompany applies a partial update. Allowed fields are name,
// description, numEmployees and logoUrl.
func (s *Service) UpdateCompany(ctx context.Context, handle string, payload sqlbuild.Payload) (*models.Company, error) {
	payload, err := s.normalize(companyFields, payload)
	if err != nil {
		return nil, err
	}

	c, err := repo.NewCompanyRepo(s.db).Update(ctx, handle, payload)
	if db.IsDuplicateKey(err) {
		return nil, badRequest(err, "Duplicate company name")
	}
	if err != nil {
		return nil, classify(err, "No company: "+handle)
	}

	s.log.InfoContext(ctx, "company updated", "handle", handle, "fields", payload.Names())
	return c, nil
}

// DeleteCompany removes a company and its jobs.
func (s *Service) DeleteCompany(ctx context.Context, handle string) error {
	if err := repo.NewCompanyRepo(s.db).Delete(ctx, handle); err != nil {
		return classify(err, "No company: "+handle)
	}
	s.log.InfoContext(ctx, "company deleted", "handle", handle)
	return nil
}
