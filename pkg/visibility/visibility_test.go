package visibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanRead(t *testing.T) {
	tests := []struct {
		name  string
		expr  Visibility
		auths []string
		want  bool
	}{
		{"empty is public", "", nil, true},
		{"whitespace is public", "  ", nil, true},
		{"single label held", "public", []string{"public"}, true},
		{"single label missing", "public", nil, false},
		{"and all held", "a&b", []string{"a", "b"}, true},
		{"and one missing", "a&b", []string{"a"}, false},
		{"or one held", "a|b", []string{"b"}, true},
		{"or none held", "a|b", []string{"c"}, false},
		{"nested", "admin&(ws1|ws2)", []string{"admin", "ws2"}, true},
		{"nested missing outer", "admin&(ws1|ws2)", []string{"ws2"}, false},
		{"quoted label", `"team a"|audit`, []string{"team a"}, true},
		{"escaped quote", `"say \"hi\""`, []string{`say "hi"`}, true},
		{"label charset", "a-b_c:d.e/f", []string{"a-b_c:d.e/f"}, true},
		{"spaces around operators", " a & ( b | c ) ", []string{"a", "c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanRead(tt.expr, NewAuthorizations(tt.auths...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanReadMalformed(t *testing.T) {
	bad := []Visibility{"a&", "&a", "a|b&c", "(a", "a)", `"unterminated`, `""`, "a&&b", "a b", "a&(b|)", `"bad\escape"`}
	ev := NewEvaluator()
	for _, expr := range bad {
		t.Run(string(expr), func(t *testing.T) {
			_, err := ev.CanRead(expr, NewAuthorizations("a", "b", "c"))
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, string(expr), pe.Expression)
		})
	}
}

func TestEvaluatorCachesFailures(t *testing.T) {
	ev := NewEvaluatorSize(2)
	_, err1 := ev.CanRead("a|", NewAuthorizations())
	_, err2 := ev.CanRead("a|", NewAuthorizations())
	require.Error(t, err1)
	assert.Same(t, err1, err2)

	// Overflowing the cache must not change results.
	for _, v := range []Visibility{"x", "y", "z"} {
		ok, err := ev.CanRead(v, NewAuthorizations(string(v)))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestEvaluatorLabels(t *testing.T) {
	labels, err := NewEvaluator().Labels("b&(a|c)&b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, labels)

	labels, err = NewEvaluator().Labels("")
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestAuthorizations(t *testing.T) {
	a := NewAuthorizations("b", "a", "b", " ", "")
	assert.Equal(t, []string{"a", "b"}, a.Labels())
	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Contains("a"))
	assert.False(t, a.Contains("c"))
	assert.True(t, a.Equal(NewAuthorizations("a", "b")))
	assert.Equal(t, "[a,b]", a.String())

	u := a.Union(NewAuthorizations("c"))
	assert.Equal(t, []string{"a", "b", "c"}, u.Labels())

	labels := a.Labels()
	labels[0] = "mutated"
	assert.True(t, a.Contains("a"), "Labels must return a copy")
}

func TestAnd(t *testing.T) {
	assert.Equal(t, Empty, And())
	assert.Equal(t, Visibility("a|b"), And("", "a|b"))
	v := And("a|b", "c")
	assert.Equal(t, Visibility("(a|b)&(c)"), v)

	ok, err := CanRead(v, NewAuthorizations("b", "c"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = CanRead(v, NewAuthorizations("b"))
	require.NoError(t, err)
	assert.False(t, ok)
}
