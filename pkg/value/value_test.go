package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	assert.Equal(t, KindNull, From(nil).Kind())
	assert.Equal(t, KindInt, From(3).Kind())
	assert.Equal(t, KindInt, From(uint8(3)).Kind())
	assert.Equal(t, KindFloat, From(float32(1.5)).Kind())
	assert.Equal(t, KindStr, From("x").Kind())
	assert.Equal(t, KindBytes, From([]byte("x")).Kind())
	assert.Equal(t, KindList, From([]int{1, 2}).Kind())
	assert.Equal(t, KindTuple, From([2]int{1, 2}).Kind())
	assert.Equal(t, KindSet, From(map[string]struct{}{"a": {}}).Kind())
	assert.Equal(t, KindMap, From(map[string]int{"b": 2, "a": 1}).Kind())
	assert.Equal(t, KindObject, From(struct{ X int }{1}).Kind())

	type counter uint64
	big := From(uint64(math.MaxUint64))
	assert.Equal(t, KindFloat, big.Kind(), "values above MaxInt64 must not wrap")
	f, err := big.AsFloat()
	require.NoError(t, err)
	assert.Greater(t, f, 0.0)
	assert.Equal(t, KindFloat, From(counter(math.MaxInt64+1)).Kind())
	i, err := From(uint64(math.MaxInt64)).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), i)

	m, err := From(map[string]int{"b": 2, "a": 1}).AsMap()
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, "a", m[0].Key)
}

func TestAccessors(t *testing.T) {
	i, err := Float(4).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(4), i)

	_, err = Float(4.5).AsInt()
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "int", typeErr.Want)

	f, err := Int(2).AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	_, err = Str("x").AsBool()
	assert.Error(t, err)
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"3", Int(3)},
		{"-7", Int(-7)},
		{"2.5", Float(2.5)},
		{"1e3", Float(1000)},
		{"'a'", Str("a")},
		{`"it's"`, Str("it's")},
		{"True", Bool(true)},
		{"None", Null()},
		{"[1, 'b', 2.0]", List(Int(1), Str("b"), Float(2))},
		{"(1,)", Tuple(Int(1))},
		{"(1)", Int(1)},
		{"{'a': 1, 'b': [True]}", Map(Entry{"a", Int(1)}, Entry{"b", List(Bool(true))})},
		{"{1, 2, 2}", Set(Int(1), Int(2))},
		{"set()", Set()},
		{"b'raw'", Bytes([]byte("raw"))},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLiteral(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got.Repr(), tt.want.Repr())
		})
	}
}

func TestParseLiteral_Errors(t *testing.T) {
	for _, in := range []string{"", "'open", "[1, 2", "foo", "1 2", "{'a' 1}"} {
		_, err := ParseLiteral(in)
		var litErr *LiteralError
		assert.ErrorAs(t, err, &litErr, "input %q", in)
	}
	assert.Equal(t, Str("plain text"), ParseLiteralOr(" plain text "))
}

func TestRepr_RoundTrip(t *testing.T) {
	v := Map(
		Entry{"n", Int(1)},
		Entry{"xs", Tuple(Float(1), Str("q'uote"))},
		Entry{"none", Null()},
	)
	back, err := ParseLiteral(v.Repr())
	require.NoError(t, err)
	assert.True(t, v.Equal(back))
}
