package ninepay

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSet_Add(t *testing.T) {
	p := ParameterSet{}
	p.Add("a", "1")
	p.Add("b", "")
	p.Add("a", "2")

	assert.Equal(t, ParameterSet{"a": "2"}, p)
}

func TestParameterSet_Keys(t *testing.T) {
	p := ParameterSet{"b": "1", "a": "2", "B": "3", "_x": "4"}
	assert.Equal(t, []string{"B", "_x", "a", "b"}, p.Keys())
}

func TestParameterSet_JSON(t *testing.T) {
	p := ParameterSet{"z": "1", "a": "x y", "m": "<&>"}

	raw, err := p.JSON()
	assert.NoError(t, err)
	assert.Equal(t, `{"a":"x y","m":"<&>","z":"1"}`, string(raw))
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		params ParameterSet
		want   string
	}{
		{
			name:   "empty set",
			params: ParameterSet{},
			want:   "",
		},
		{
			name:   "sorted keys",
			params: ParameterSet{"b": "2", "a": "1", "c": "3"},
			want:   "a=1&b=2&c=3",
		},
		{
			name:   "space encoded as %20",
			params: ParameterSet{"description": "Order 42"},
			want:   "description=Order%2042",
		},
		{
			name:   "unreserved characters kept",
			params: ParameterSet{"k": "A-z_0.9~"},
			want:   "k=A-z_0.9~",
		},
		{
			name:   "reserved characters escaped with uppercase hex",
			params: ParameterSet{"return_url": "https://shop.example/cb?x=1"},
			want:   "return_url=https%3A%2F%2Fshop.example%2Fcb%3Fx=1",
		},
		{
			name:   "separators restored inside values",
			params: ParameterSet{"a": "x&y=z"},
			want:   "a=x&y=z",
		},
		{
			name:   "multibyte UTF-8",
			params: ParameterSet{"name": "Đơn"},
			want:   "name=%C4%90%C6%A1n",
		},
		{
			name:   "plus and percent escaped",
			params: ParameterSet{"a": "1+1%"},
			want:   "a=1%2B1%25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.params))
		})
	}
}

// parseQuery decodes a canonical query back into a ParameterSet
func parseQuery(t *testing.T, query string) ParameterSet {
	t.Helper()

	values, err := url.ParseQuery(query)
	require.NoError(t, err)

	params := ParameterSet{}
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

func TestBuildQuery_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params ParameterSet
	}{
		{"plain", ParameterSet{"invoice_no": "ABC123", "amount": "100000"}},
		{"spaces and plus", ParameterSet{"description": "Order 42 + tip", "note": "100%"}},
		{"url value", ParameterSet{"return_url": "https://shop.example/cb?x=1#frag"}},
		{"non-ASCII", ParameterSet{"name": "Đơn hàng số 7", "ghi_chú": "cảm ơn"}},
		{"reserved characters", ParameterSet{"k": "/?#[]@!$'()*,;:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := BuildQuery(tt.params)
			assert.Equal(t, tt.params, parseQuery(t, query))
			assert.Equal(t, query, BuildQuery(parseQuery(t, query)))
		})
	}
}

func TestBuildQuery_Idempotent(t *testing.T) {
	// separators inside values are restored, so the decoded form differs but re-encodes identically
	tests := []ParameterSet{
		{"a": "x&y=z"},
		{"k": "a=b", "m": "1"},
		{"description": "pay&go", "amount": "5"},
	}

	for _, params := range tests {
		query := BuildQuery(params)
		assert.Equal(t, query, BuildQuery(parseQuery(t, query)))
	}
}

func TestBuildQuery_StableUnderReordering(t *testing.T) {
	a := ParameterSet{}
	a.Add("c", "3")
	a.Add("a", "1")
	a.Add("b", "2")

	b := ParameterSet{}
	b.Add("b", "2")
	b.Add("c", "3")
	b.Add("a", "1")

	assert.Equal(t, BuildQuery(a), BuildQuery(b))
}
