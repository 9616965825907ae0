package service

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skryldev/jobly/sqlbuild"
)

type fieldKind int

const (
	nonEmptyText fieldKind = iota
	anyText
	count    // integer >= 0
	fraction // decimal in [0, 1]
	link     // absolute URL
)

type fieldSpec struct {
	kind     fieldKind
	nullable bool
}

// Mutable fields per entity, by API name. Keys (handle, id, companyHandle)
// never change after creation.
var (
	companyFields = map[string]fieldSpec{
		"name":         {kind: nonEmptyText},
		"description":  {kind: anyText},
		"numEmployees": {kind: count, nullable: true},
		"logoUrl":      {kind: link, nullable: true},
	}

	jobFields = map[string]fieldSpec{
		"title":  {kind: nonEmptyText},
		"salary": {kind: count, nullable: true},
		"equity": {kind: fraction, nullable: true},
	}
)

// normalize checks every field of p against specs and converts its value to
// the Go type bound for its column. Field order is preserved.
func (s *Service) normalize(specs map[string]fieldSpec, p sqlbuild.Payload) (sqlbuild.Payload, error) {
	if len(p) == 0 {
		return nil, badRequest(nil, "no data supplied")
	}

	out := make(sqlbuild.Payload, 0, len(p))
	for _, f := range p {
		spec, ok := specs[f.Name]
		if !ok {
			return nil, badRequest(nil, "%s: cannot be updated", f.Name)
		}
		v, err := s.normalizeValue(f.Name, spec, f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, sqlbuild.Field{Name: f.Name, Value: v})
	}
	return out, nil
}

func (s *Service) normalizeValue(name string, spec fieldSpec, v any) (any, error) {
	if v == nil {
		if !spec.nullable {
			return nil, badRequest(nil, "%s: cannot be null", name)
		}
		return nil, nil
	}

	switch spec.kind {
	case nonEmptyText, anyText:
		str, ok := v.(string)
		if !ok {
			return nil, badRequest(nil, "%s: must be a string", name)
		}
		if spec.kind == nonEmptyText && strings.TrimSpace(str) == "" {
			return nil, badRequest(nil, "%s: must not be empty", name)
		}
		return str, nil

	case count:
		n, ok := toInt64(v)
		if !ok || n < 0 {
			return nil, badRequest(nil, "%s: must be a non-negative integer", name)
		}
		return n, nil

	case fraction:
		d, ok := toDecimal(v)
		if !ok || !validEquity(d) {
			return nil, badRequest(nil, "%s: must be a number between 0 and 1", name)
		}
		return d, nil

	case link:
		str, ok := v.(string)
		if !ok || s.validate.Var(str, "url") != nil {
			return nil, badRequest(nil, "%s: must be a URL", name)
		}
		return str, nil
	}
	return nil, badRequest(nil, "%s: unsupported field", name)
}

func validEquity(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return decimal.Decimal{}, false
}
