package sqlbuild

import "strings"

// Compiler compiles payloads and criteria for one dialect. The zero value is
// not usable; construct it with NewCompiler. A Compiler holds no mutable
// state and may be shared freely.
type Compiler struct {
	dialect Dialect
}

// NewCompiler returns a Compiler emitting SQL for d.
func NewCompiler(d Dialect) Compiler { return Compiler{dialect: d} }

// Dialect returns the dialect the compiler targets.
func (c Compiler) Dialect() Dialect { return c.dialect }

var defaultCompiler = NewCompiler(Postgres)

// CompileAssignment compiles payload for PostgreSQL. See
// Compiler.CompileAssignment.
func CompileAssignment(payload Payload, names FieldNameMap) (Assignment, error) {
	return defaultCompiler.CompileAssignment(payload, names)
}

// CompilePredicate compiles criteria for PostgreSQL. See
// Compiler.CompilePredicate.
func CompilePredicate(criteria Criteria, policy FieldPolicy) (Predicate, error) {
	return defaultCompiler.CompilePredicate(criteria, policy)
}

// ─────────────────────────────────────────────────────────────────────────────
// Assignment
// ─────────────────────────────────────────────────────────────────────────────

// Assignment is a compiled SET list. Fragments[i] binds Values[i] at
// ordinal i+1.
type Assignment struct {
	Fragments []string
	Values    []any
}

// SQL joins the fragments into the body of a SET clause.
func (a Assignment) SQL() string { return strings.Join(a.Fragments, ", ") }

// Next is the first ordinal free for placeholders following the assignment,
// e.g. the key in "WHERE id = $n".
func (a Assignment) Next() int { return len(a.Values) + 1 }

// CompileAssignment turns an ordered partial update into a SET list.
// Each field becomes <quoted column>=<placeholder>, with the column resolved
// through names and ordinals following payload order. Values are passed
// through untouched.
//
// An empty payload is rejected: "UPDATE t SET WHERE ..." is never valid.
//
//	{firstName: "Aliya", age: 32}, {firstName: "first_name"}
//	=> "first_name"=$1, "age"=$2  ["Aliya", 32]
func (c Compiler) CompileAssignment(payload Payload, names FieldNameMap) (Assignment, error) {
	if len(payload) == 0 {
		return Assignment{}, inputErrorf("", "no data supplied")
	}

	a := Assignment{
		Fragments: make([]string, len(payload)),
		Values:    make([]any, len(payload)),
	}
	for i, f := range payload {
		col := c.dialect.QuoteIdent(names.Column(f.Name))
		a.Fragments[i] = col + "=" + c.dialect.Placeholder(i+1)
		a.Values[i] = f.Value
	}
	return a, nil
}
