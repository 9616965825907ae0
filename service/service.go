// Package service implements the company and job operations on top of the
// repositories: input validation, duplicate checks, payload normalisation
// and classification of failures into bad-request and not-found errors.
package service

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly/db"
)

// Service is safe for concurrent use.
type Service struct {
	db       *db.DB
	validate *validator.Validate
	log      *slog.Logger
}

// New returns a Service backed by d. A nil logger means slog.Default().
func New(d *db.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: d, validate: newValidator(), log: logger}
}

// newValidator reports failures under JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
