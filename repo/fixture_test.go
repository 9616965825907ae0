package repo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

// fixture is a migrated in-memory database seeded with three companies
// (c1..c3, 1..3 employees) and four jobs, all posted by c1:
//
//	j1 salary 100 equity 0.1
//	j2 salary 200 equity 0.2
//	j3 salary 300 equity 0
//	j4 no salary, no equity
type fixture struct {
	db        *db.DB
	companies repo.CompanyRepository
	jobs      repo.JobRepository
	jobIDs    []int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenWithDriver("sqlite3", db.DriverOptions{Database: ":memory:"}, db.Config{
		// Every connection to :memory: is a separate database.
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(database.Raw(), database.Dialect(), nil))

	f := &fixture{
		db:        database,
		companies: repo.NewCompanyRepo(database),
		jobs:      repo.NewJobRepo(database),
	}

	ctx := context.Background()
	for i, h := range []string{"c1", "c2", "c3"} {
		n := int64(i + 1)
		logo := "http://" + h + ".img"
		_, err := f.companies.Insert(ctx, models.CreateCompanyParams{
			Handle:       h,
			Name:         "C" + h[1:],
			Description:  "Desc" + h[1:],
			NumEmployees: &n,
			LogoURL:      &logo,
		})
		require.NoError(t, err)
	}

	for _, p := range []models.CreateJobParams{
		{Title: "J1", Salary: ptr(int64(100)), Equity: equity("0.1"), CompanyHandle: "c1"},
		{Title: "J2", Salary: ptr(int64(200)), Equity: equity("0.2"), CompanyHandle: "c1"},
		{Title: "J3", Salary: ptr(int64(300)), Equity: equity("0"), CompanyHandle: "c1"},
		{Title: "J4", CompanyHandle: "c1"},
	} {
		j, err := f.jobs.Insert(ctx, p)
		require.NoError(t, err)
		f.jobIDs = append(f.jobIDs, j.ID)
	}
	return f
}

func ptr[T any](v T) *T { return &v }

func equity(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
