package models

import (
	"github.com/shopspring/decimal"

	"github.com/Skryldev/jobly/sqlbuild"
)

// Job represents a row in the "jobs" table. Salary and Equity are nullable;
// Equity is a fraction between 0 and 1 kept exact as a NUMERIC.
type Job struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Salary        *int64              `json:"salary"`
	Equity        decimal.NullDecimal `json:"equity"`
	CompanyHandle string              `json:"companyHandle"`
}

// JobSummary is a job as listed under its company.
type JobSummary struct {
	ID     int64               `json:"id"`
	Title  string              `json:"title"`
	Salary *int64              `json:"salary"`
	Equity decimal.NullDecimal `json:"equity"`
}

// CreateJobParams holds the fields accepted when creating a job. The equity
// bounds are checked by the service since the validator cannot compare
// decimals.
type CreateJobParams struct {
	Title         string              `json:"title" validate:"required"`
	Salary        *int64              `json:"salary" validate:"omitempty,min=0"`
	Equity        decimal.NullDecimal `json:"equity"`
	CompanyHandle string              `json:"companyHandle" validate:"required,max=25"`
}

// JobColumns maps the camelCase API names of job fields to columns.
var JobColumns = sqlbuild.FieldNameMap{
	"companyHandle": "company_handle",
}

// JobFilterPolicy declares the filters accepted when listing jobs:
//
//	title      case-insensitive substring of title
//	minSalary  salary >= value
//	hasEquity  when true, equity > 0
var JobFilterPolicy = sqlbuild.MustFieldPolicy(
	sqlbuild.FieldRule{Key: "title", Column: "title", Comparison: sqlbuild.SubstringMatch},
	sqlbuild.FieldRule{Key: "minSalary", Column: "salary", Comparison: sqlbuild.ThresholdGE, Integer: true},
	sqlbuild.FieldRule{
		Key:         "hasEquity",
		Column:      "equity",
		Comparison:  sqlbuild.BooleanFlag,
		FlagOp:      ">",
		FlagOperand: 0,
	},
)
