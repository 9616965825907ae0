package sqlbuild_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly/sqlbuild"
)

var userColumns = sqlbuild.FieldNameMap{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

// ─────────────────────────────────────────────────────────────────────────────
// CompileAssignment
// ─────────────────────────────────────────────────────────────────────────────

func TestCompileAssignment_UnmappedField(t *testing.T) {
	a, err := sqlbuild.CompileAssignment(sqlbuild.Payload{
		{Name: "email", Value: "test@email.com"},
	}, userColumns)
	require.NoError(t, err)

	assert.Equal(t, `"email"=$1`, a.SQL())
	assert.Equal(t, []any{"test@email.com"}, a.Values)
	assert.Equal(t, 2, a.Next())
}

func TestCompileAssignment_MixedTypes(t *testing.T) {
	a, err := sqlbuild.CompileAssignment(sqlbuild.Payload{
		{Name: "firstName", Value: "Jane"},
		{Name: "email", Value: "test@email.com"},
		{Name: "isAdmin", Value: false},
	}, userColumns)
	require.NoError(t, err)

	assert.Equal(t, `"first_name"=$1, "email"=$2, "is_admin"=$3`, a.SQL())
	assert.Equal(t, []any{"Jane", "test@email.com", false}, a.Values)
}

func TestCompileAssignment_FallbackAndOrder(t *testing.T) {
	a, err := sqlbuild.CompileAssignment(sqlbuild.Payload{
		{Name: "firstName", Value: "Aliya"},
		{Name: "age", Value: 32},
	}, sqlbuild.FieldNameMap{"firstName": "first_name"})
	require.NoError(t, err)

	assert.Equal(t, []string{`"first_name"=$1`, `"age"=$2`}, a.Fragments)
	assert.Equal(t, []any{"Aliya", 32}, a.Values)
}

func TestCompileAssignment_NullValue(t *testing.T) {
	a, err := sqlbuild.CompileAssignment(sqlbuild.Payload{
		{Name: "salary", Value: nil},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, `"salary"=$1`, a.SQL())
	assert.Equal(t, []any{nil}, a.Values)
}

func TestCompileAssignment_EmptyPayload(t *testing.T) {
	for _, names := range []sqlbuild.FieldNameMap{nil, {}, userColumns} {
		_, err := sqlbuild.CompileAssignment(sqlbuild.Payload{}, names)
		require.Error(t, err)
		assert.True(t, sqlbuild.IsInvalidInput(err))
		assert.Equal(t, "no data supplied", err.Error())
	}
}

func TestCompileAssignment_PlaceholderCountMatchesValues(t *testing.T) {
	p := sqlbuild.Payload{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		p = p.With(name, name+"-value")
		a, err := sqlbuild.CompileAssignment(p, nil)
		require.NoError(t, err)
		assert.Len(t, a.Fragments, len(p))
		assert.Len(t, a.Values, len(p))
		for i, f := range p {
			assert.Equal(t, f.Value, a.Values[i])
		}
	}
}

func TestCompileAssignment_QuotesIdentifiers(t *testing.T) {
	a, err := sqlbuild.CompileAssignment(sqlbuild.Payload{
		{Name: `odd"name`, Value: 1},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, `"odd""name"=$1`, a.SQL())
}

func TestCompileAssignment_Idempotent(t *testing.T) {
	p := sqlbuild.Payload{{Name: "firstName", Value: "Aliya"}, {Name: "age", Value: 32}}
	first, err := sqlbuild.CompileAssignment(p, userColumns)
	require.NoError(t, err)
	second, err := sqlbuild.CompileAssignment(p, userColumns)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompileAssignment_Dialects(t *testing.T) {
	p := sqlbuild.Payload{{Name: "firstName", Value: "Aliya"}, {Name: "age", Value: 32}}

	tests := []struct {
		dialect sqlbuild.Dialect
		want    string
	}{
		{sqlbuild.Postgres, `"first_name"=$1, "age"=$2`},
		{sqlbuild.SQLite, `"first_name"=?1, "age"=?2`},
		{sqlbuild.MySQL, "`first_name`=?, `age`=?"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			a, err := sqlbuild.NewCompiler(tt.dialect).CompileAssignment(p, userColumns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.SQL())
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Payload JSON
// ─────────────────────────────────────────────────────────────────────────────

func TestPayload_UnmarshalKeepsDocumentOrder(t *testing.T) {
	var p sqlbuild.Payload
	require.NoError(t, json.Unmarshal([]byte(`{"zeta": 1, "alpha": "x", "mid": null}`), &p))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, p.Names())
	v, ok := p.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), v)
	v, ok = p.Get("mid")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestPayload_UnmarshalRejectsDuplicates(t *testing.T) {
	var p sqlbuild.Payload
	err := json.Unmarshal([]byte(`{"a": 1, "a": 2}`), &p)
	require.Error(t, err)
	assert.True(t, sqlbuild.IsInvalidInput(err))
}

func TestPayload_UnmarshalRejectsNonObject(t *testing.T) {
	var p sqlbuild.Payload
	err := json.Unmarshal([]byte(`[1, 2]`), &p)
	require.Error(t, err)
	assert.True(t, sqlbuild.IsInvalidInput(err))
}

func TestPayload_WithReplacesInPlace(t *testing.T) {
	p := sqlbuild.Payload{{Name: "a", Value: 1}, {Name: "b", Value: 2}}
	q := p.With("a", 3)

	assert.Equal(t, sqlbuild.Payload{{Name: "a", Value: 3}, {Name: "b", Value: 2}}, q)
	assert.Equal(t, 1, p[0].Value, "original payload must not change")
}
