package sqlbuild

import (
	"fmt"

	"github.com/mikeschinkel/go-sqlparams"
)

// Template is a static statement written with :name placeholders and
// rewritten once for a dialect. Repositories keep their SQL readable and
// dialect-neutral, and bind by name at call time.
type Template struct {
	sql   string
	names []string
}

// NewTemplate rewrites the :name placeholders of query for d. A name used
// more than once binds a single value; on positional dialects (MySQL) each
// occurrence is bound separately.
func NewTemplate(d Dialect, query string) (Template, error) {
	parsed, err := sqlparams.ParseSQL(sqlparams.SQLQuery(query), d.Placeholder)
	if err != nil {
		return Template{}, fmt.Errorf("sqlbuild: template: %w", err)
	}

	var names []string
	if d.Placeholder(1) == d.Placeholder(2) {
		for _, tok := range parsed.Occurrences() {
			names = append(names, string(tok.Name))
		}
	} else {
		for _, p := range parsed.Parameters() {
			names = append(names, string(p.Name))
		}
	}
	return Template{sql: string(parsed.SQL), names: names}, nil
}

// MustTemplate is like NewTemplate but panics on a malformed statement.
func MustTemplate(d Dialect, query string) Template {
	t, err := NewTemplate(d, query)
	if err != nil {
		panic(err)
	}
	return t
}

// SQL returns the rewritten statement.
func (t Template) SQL() string { return t.sql }

// Names returns the parameter names in binding order.
func (t Template) Names() []string { return append([]string(nil), t.names...) }

// Args orders named values for binding. Every placeholder must be supplied.
func (t Template) Args(values map[string]any) ([]any, error) {
	args := make([]any, len(t.names))
	for i, name := range t.names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("sqlbuild: template: missing value for :%s", name)
		}
		args[i] = v
	}
	return args, nil
}
