package models

import "github.com/Skryldev/jobly/sqlbuild"

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company together with the jobs it posts. Jobs is empty,
// never nil, when the company has none.
type CompanyDetail struct {
	Company
	Jobs []JobSummary `json:"jobs"`
}

// CreateCompanyParams holds the fields accepted when creating a company.
// Handles are lowercase slugs and match the VARCHAR(25) primary key.
type CreateCompanyParams struct {
	Handle       string  `json:"handle" validate:"required,max=25,lowercase"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees" validate:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}

// CompanyColumns maps the camelCase API names of company fields to columns.
var CompanyColumns = sqlbuild.FieldNameMap{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// CompanyFilterPolicy declares the filters accepted when listing companies:
//
//	name          case-insensitive substring of name
//	minEmployees  num_employees >= value
//	maxEmployees  num_employees <= value
var CompanyFilterPolicy = sqlbuild.MustFieldPolicy(
	sqlbuild.FieldRule{Key: "name", Column: "name", Comparison: sqlbuild.SubstringMatch},
	sqlbuild.FieldRule{
		Key:        "minEmployees",
		MaxKey:     "maxEmployees",
		Column:     "num_employees",
		Comparison: sqlbuild.RangeBetween,
		Integer:    true,
	},
)
