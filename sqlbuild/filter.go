package sqlbuild

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ─────────────────────────────────────────────────────────────────────────────
// Field policy
// ─────────────────────────────────────────────────────────────────────────────

// Comparison is the way a filter key is compared against its column.
type Comparison int

const (
	// SubstringMatch is case-insensitive containment.
	SubstringMatch Comparison = iota + 1
	// ThresholdGE is column >= value.
	ThresholdGE
	// ThresholdLE is column <= value.
	ThresholdLE
	// RangeBetween pairs a min key and a max key on one column.
	RangeBetween
	// BooleanFlag applies a fixed predicate when the flag is true. A false
	// or absent flag means "do not filter", not "filter for the negation".
	BooleanFlag
)

func (c Comparison) String() string {
	switch c {
	case SubstringMatch:
		return "substring"
	case ThresholdGE:
		return "threshold_ge"
	case ThresholdLE:
		return "threshold_le"
	case RangeBetween:
		return "range"
	case BooleanFlag:
		return "flag"
	}
	return fmt.Sprintf("Comparison(%d)", int(c))
}

// FieldRule declares how one filter key (or min/max key pair) maps to SQL.
type FieldRule struct {
	// Key is the criteria key. For RangeBetween it is the lower-bound key.
	Key        string
	Column     string
	Comparison Comparison

	// MaxKey is the upper-bound key of a RangeBetween rule.
	MaxKey string

	// FlagOp and FlagOperand form the predicate a BooleanFlag applies,
	// e.g. ">" and 0 for "equity > 0". The operand is bound, not inlined.
	FlagOp      string
	FlagOperand any

	// Integer restricts threshold and range values to whole numbers that fit
	// in an int64, for integer columns.
	Integer bool
}

var flagOps = map[string]struct{}{
	"=": {}, "<>": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
}

// FieldPolicy is an ordered, validated set of rules for one entity type.
// Clauses are always emitted in rule declaration order.
type FieldPolicy struct {
	rules []FieldRule
	keys  []string
}

// NewFieldPolicy validates rules and builds a policy from them.
func NewFieldPolicy(rules ...FieldRule) (FieldPolicy, error) {
	p := FieldPolicy{rules: make([]FieldRule, 0, len(rules))}
	seen := make(map[string]struct{})
	declare := func(key string) error {
		if key == "" {
			return fmt.Errorf("sqlbuild: policy: empty filter key")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("sqlbuild: policy: key %q declared twice", key)
		}
		seen[key] = struct{}{}
		p.keys = append(p.keys, key)
		return nil
	}

	for _, r := range rules {
		if r.Column == "" {
			return FieldPolicy{}, fmt.Errorf("sqlbuild: policy: key %q has no column", r.Key)
		}
		if err := declare(r.Key); err != nil {
			return FieldPolicy{}, err
		}
		switch r.Comparison {
		case SubstringMatch, ThresholdGE, ThresholdLE:
		case RangeBetween:
			if err := declare(r.MaxKey); err != nil {
				return FieldPolicy{}, fmt.Errorf("sqlbuild: policy: range %q: %w", r.Key, err)
			}
		case BooleanFlag:
			if _, ok := flagOps[r.FlagOp]; !ok {
				return FieldPolicy{}, fmt.Errorf("sqlbuild: policy: flag %q: unsupported operator %q", r.Key, r.FlagOp)
			}
		default:
			return FieldPolicy{}, fmt.Errorf("sqlbuild: policy: key %q: unknown comparison %v", r.Key, r.Comparison)
		}
		p.rules = append(p.rules, r)
	}
	return p, nil
}

// MustFieldPolicy is like NewFieldPolicy but panics on an invalid rule set.
// Intended for package-level policy declarations.
func MustFieldPolicy(rules ...FieldRule) FieldPolicy {
	p, err := NewFieldPolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Keys returns every criteria key the policy recognises, in declaration
// order.
func (p FieldPolicy) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Unknown returns the keys of c the policy does not recognise, sorted.
// CompilePredicate ignores such keys, so callers wanting strict validation
// should reject the request when this is non-empty.
func (p FieldPolicy) Unknown(c Criteria) []string {
	known := make(map[string]struct{}, len(p.keys))
	for _, k := range p.keys {
		known[k] = struct{}{}
	}
	var unknown []string
	for k := range c {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Criteria
// ─────────────────────────────────────────────────────────────────────────────

// Criteria holds raw filter values keyed by filter name, typically straight
// from a query string. An empty value is treated as absent.
type Criteria map[string]string

// CriteriaFromValues takes the first value of every key in v.
func CriteriaFromValues(v url.Values) Criteria {
	c := make(Criteria, len(v))
	for k := range v {
		c[k] = v.Get(k)
	}
	return c
}

func (c Criteria) lookup(key string) (string, bool) {
	v, ok := c[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (c Criteria) number(key string, integer bool) (decimal.Decimal, bool, error) {
	raw, ok := c.lookup(key)
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, false, inputErrorf(key, "%s must be a number", key)
	}
	if integer && (!d.IsInteger() || !d.BigInt().IsInt64()) {
		return decimal.Decimal{}, false, inputErrorf(key, "%s must be an integer", key)
	}
	return d, true, nil
}

func (c Criteria) flag(key string) (bool, error) {
	raw, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, inputErrorf(key, "%s must be true or false", key)
	}
	return on, nil
}

// numericArg binds integers as int64 so integer columns compare without a
// cast on every driver.
func numericArg(d decimal.Decimal) any {
	if d.IsInteger() && d.BigInt().IsInt64() {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

// ─────────────────────────────────────────────────────────────────────────────
// Predicate
// ─────────────────────────────────────────────────────────────────────────────

// Predicate is an AND-combined list of parameterized clauses. An empty
// Predicate matches every row.
type Predicate struct {
	Clauses []string
	Args    []any
}

// Empty reports whether the predicate matches all rows.
func (p Predicate) Empty() bool { return len(p.Clauses) == 0 }

// SQL joins the clauses with AND.
func (p Predicate) SQL() string { return strings.Join(p.Clauses, " AND ") }

// Where renders "WHERE <clauses>", or "" for the match-all predicate.
func (p Predicate) Where() string {
	if p.Empty() {
		return ""
	}
	return "WHERE " + p.SQL()
}

type predicateBuilder struct {
	d    Dialect
	next int
	p    Predicate
}

func (b *predicateBuilder) bind(v any) string {
	b.p.Args = append(b.p.Args, v)
	ph := b.d.Placeholder(b.next)
	b.next++
	return ph
}

func (b *predicateBuilder) add(clause string) {
	b.p.Clauses = append(b.p.Clauses, clause)
}

// CompilePredicate compiles criteria with placeholders starting at 1.
func (c Compiler) CompilePredicate(criteria Criteria, policy FieldPolicy) (Predicate, error) {
	return c.CompilePredicateFrom(criteria, policy, 1)
}

// CompilePredicateFrom compiles criteria under policy, numbering placeholders
// from start so the predicate can follow other bound parameters.
//
// Range pairs are validated before anything is emitted; a min above its max
// fails the whole compilation.
func (c Compiler) CompilePredicateFrom(criteria Criteria, policy FieldPolicy, start int) (Predicate, error) {
	if start < 1 {
		start = 1
	}

	for _, r := range policy.rules {
		if r.Comparison != RangeBetween {
			continue
		}
		lo, hasLo, err := criteria.number(r.Key, r.Integer)
		if err != nil {
			return Predicate{}, err
		}
		hi, hasHi, err := criteria.number(r.MaxKey, r.Integer)
		if err != nil {
			return Predicate{}, err
		}
		if hasLo && hasHi && lo.GreaterThan(hi) {
			return Predicate{}, inputErrorf(r.Key, "%s cannot exceed %s", r.Key, r.MaxKey)
		}
	}

	b := &predicateBuilder{d: c.dialect, next: start}
	for _, r := range policy.rules {
		col := c.dialect.QuoteIdent(r.Column)

		switch r.Comparison {
		case SubstringMatch:
			v, ok := criteria.lookup(r.Key)
			if !ok {
				continue
			}
			pattern := "%" + escapeLike(v) + "%"
			b.add(col + " " + c.dialect.ILike + " " + b.bind(pattern) + c.dialect.LikeEscape)

		case ThresholdGE, ThresholdLE:
			n, ok, err := criteria.number(r.Key, r.Integer)
			if err != nil {
				return Predicate{}, err
			}
			if !ok {
				continue
			}
			op := ">="
			if r.Comparison == ThresholdLE {
				op = "<="
			}
			b.add(col + " " + op + " " + b.bind(numericArg(n)))

		case RangeBetween:
			lo, hasLo, _ := criteria.number(r.Key, r.Integer)
			hi, hasHi, _ := criteria.number(r.MaxKey, r.Integer)
			switch {
			case hasLo && hasHi:
				b.add(col + " BETWEEN " + b.bind(numericArg(lo)) + " AND " + b.bind(numericArg(hi)))
			case hasLo:
				b.add(col + " >= " + b.bind(numericArg(lo)))
			case hasHi:
				b.add(col + " <= " + b.bind(numericArg(hi)))
			}

		case BooleanFlag:
			on, err := criteria.flag(r.Key)
			if err != nil {
				return Predicate{}, err
			}
			if !on {
				continue
			}
			b.add(col + " " + r.FlagOp + " " + b.bind(r.FlagOperand))
		}
	}
	return b.p, nil
}
