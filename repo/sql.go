package repo

import (
	"database/sql"
	"sync"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/sqlbuild"
)

// templates caches statements rewritten per dialect, keyed by dialect name
// and source text.
var templates sync.Map

func template(d sqlbuild.Dialect, query string) sqlbuild.Template {
	key := d.Name + "\x00" + query
	if t, ok := templates.Load(key); ok {
		return t.(sqlbuild.Template)
	}
	t := sqlbuild.MustTemplate(d, query)
	templates.Store(key, t)
	return t
}

// bind rewrites query for d and orders values to match its placeholders.
func bind(d sqlbuild.Dialect, query string, values map[string]any) (string, []any, error) {
	t := template(d, query)
	args, err := t.Args(values)
	if err != nil {
		return "", nil, err
	}
	return t.SQL(), args, nil
}

// checkAffected turns an UPDATE or DELETE that touched nothing into
// db.ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
