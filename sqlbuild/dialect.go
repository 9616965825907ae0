// Package sqlbuild compiles partial updates and filter criteria into
// parameterized SQL fragments. It never interpolates caller-supplied values
// into SQL text: every value travels as a bound argument.
//
// The compilers are pure functions over immutable inputs and are safe to call
// from any number of goroutines.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dialect
// ─────────────────────────────────────────────────────────────────────────────

// Dialect describes the syntax differences the compilers care about.
type Dialect struct {
	// Name is the database/sql driver name this dialect targets.
	Name string

	// Placeholder renders the n-th (1-based) bound parameter.
	Placeholder func(n int) string

	// QuoteIdent quotes a column or table name.
	QuoteIdent func(name string) string

	// ILike is the case-insensitive LIKE operator.
	ILike string

	// LikeEscape is appended after a LIKE pattern placeholder. Empty when the
	// dialect already treats backslash as the default escape.
	LikeEscape string

	// Returning reports support for INSERT/UPDATE ... RETURNING.
	Returning bool
}

var (
	// Postgres uses $n placeholders and ANSI double-quoted identifiers.
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		QuoteIdent:  pq.QuoteIdentifier,
		ILike:       "ILIKE",
		LikeEscape:  ` ESCAPE '\'`,
		Returning:   true,
	}

	// SQLite uses explicitly numbered ?n placeholders so ordinals survive
	// reordering, and ANSI identifiers. LIKE is case-insensitive for ASCII.
	SQLite = Dialect{
		Name:        "sqlite3",
		Placeholder: func(n int) string { return fmt.Sprintf("?%d", n) },
		QuoteIdent:  pq.QuoteIdentifier,
		ILike:       "LIKE",
		LikeEscape:  ` ESCAPE '\'`,
		Returning:   true,
	}

	// MySQL binds positionally and quotes identifiers with backticks.
	MySQL = Dialect{
		Name:        "mysql",
		Placeholder: func(int) string { return "?" },
		QuoteIdent:  quoteBacktick,
		ILike:       "LIKE",
	}
)

// DialectFor returns the dialect registered for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("sqlbuild: no dialect for driver %q", driverName)
}

func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// escapeLike escapes LIKE wildcards so the value matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
