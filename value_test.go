package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueKindPredicates(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Undefined("x").IsUndefined())
	assert.True(t, String("a").IsString())
	assert.True(t, Safe("<b>").IsString())
	assert.True(t, Safe("<b>").IsSafe())
	assert.True(t, Int(1).IsInt())
	assert.True(t, Int(1).IsNumber())
	assert.True(t, Float(1.5).IsFloat())
	assert.True(t, Float(1.5).IsNumber())
	assert.True(t, Bool(true).IsBool())
	assert.True(t, List(nil).IsList())
	assert.True(t, StringDict(nil, nil).IsDict())
	assert.True(t, ValueDict(nil).IsDict())
}

func TestValueCoercions(t *testing.T) {
	assert.Equal(t, int64(3), String("3").Int64())
	assert.Equal(t, int64(0), String("not a number").Int64())
	assert.Equal(t, int64(2), Float(2.9).Int64())
	assert.Equal(t, int64(1), Bool(true).Int64())
	assert.Equal(t, int64(0), Bool(false).Int64())

	assert.Equal(t, 2.5, String("2.5").Float64())
	assert.Equal(t, 4.0, Int(4).Float64())
}

func TestValueLen(t *testing.T) {
	assert.Equal(t, 3, String("abc").Len())
	assert.Equal(t, 2, List([]*Value{Int(1), Int(2)}).Len())
	assert.Equal(t, 1, StringDict(map[string]*Value{"a": Int(1)}, []string{"a"}).Len())
	assert.Equal(t, 0, Int(5).Len())
}

func TestValueIsTrue(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"empty string", String(""), false},
		{"nonempty string", String("x"), true},
		{"empty list", List(nil), false},
		{"nonempty list", List([]*Value{Int(1)}), true},
		{"null", Null(), false},
		{"undefined", Undefined("x"), false},
		{"bool false", Bool(false), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.IsTrue())
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "", Undefined("x").String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "false", Bool(false).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "3.5", Float(3.5).String())
	assert.Equal(t, "hi", String("hi").String())
	assert.Equal(t, "[1, 2]", List([]*Value{Int(1), Int(2)}).String())
}

func TestValueEqualValueTo(t *testing.T) {
	assert.True(t, Int(1).EqualValueTo(Float(1.0)))
	assert.True(t, String("a").EqualValueTo(String("a")))
	assert.False(t, String("a").EqualValueTo(String("b")))
	assert.True(t, Null().EqualValueTo(Null()))
	assert.False(t, Null().EqualValueTo(Int(0)))
	assert.True(t, List([]*Value{Int(1), Int(2)}).EqualValueTo(List([]*Value{Int(1), Int(2)})))
	assert.False(t, List([]*Value{Int(1)}).EqualValueTo(List([]*Value{Int(1), Int(2)})))
}

func TestValueContains(t *testing.T) {
	assert.True(t, String("hello world").Contains(String("world")))
	assert.False(t, String("hello").Contains(String("xyz")))
	assert.True(t, List([]*Value{Int(1), Int(2)}).Contains(Int(2)))
	assert.False(t, List([]*Value{Int(1)}).Contains(Int(9)))
	d := StringDict(map[string]*Value{"a": Int(1)}, []string{"a"})
	assert.True(t, d.Contains(String("a")))
	assert.False(t, d.Contains(String("z")))
}

func TestValueGetAttr(t *testing.T) {
	d := StringDict(map[string]*Value{"name": String("Ada")}, []string{"name"})
	assert.Equal(t, "Ada", d.GetAttr("name").String())
	assert.True(t, d.GetAttr("missing").IsUndefined())
}

func TestValueGetItem(t *testing.T) {
	l := List([]*Value{String("a"), String("b"), String("c")})
	v, ok := l.GetItem(Int(1))
	assert.True(t, ok)
	assert.Equal(t, "b", v.String())

	v, ok = l.GetItem(Int(-1))
	assert.True(t, ok)
	assert.Equal(t, "c", v.String())

	_, ok = l.GetItem(Int(10))
	assert.False(t, ok)

	d := StringDict(map[string]*Value{"k": Int(9)}, []string{"k"})
	v, ok = d.GetItem(String("k"))
	assert.True(t, ok)
	assert.Equal(t, int64(9), v.Int64())
}

func TestValueIterate(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		var got []int64
		List([]*Value{Int(1), Int(2), Int(3)}).Iterate(func(i int, key, value *Value) bool {
			got = append(got, value.Int64())
			return true
		}, func() {
			t.Error("empty callback should not fire for non-empty list")
		})
		assert.Equal(t, []int64{1, 2, 3}, got)
	})

	t.Run("empty list calls empty", func(t *testing.T) {
		called := false
		List(nil).Iterate(func(i int, key, value *Value) bool {
			t.Error("fn should not be called for empty list")
			return true
		}, func() {
			called = true
		})
		assert.True(t, called)
	})

	t.Run("early stop", func(t *testing.T) {
		var got []int64
		List([]*Value{Int(1), Int(2), Int(3)}).Iterate(func(i int, key, value *Value) bool {
			got = append(got, value.Int64())
			return i < 1
		}, func() {})
		assert.Equal(t, []int64{1, 2}, got)
	})

	t.Run("dict preserves insertion order", func(t *testing.T) {
		var keys []string
		d := StringDict(map[string]*Value{"c": Int(3), "a": Int(1), "b": Int(2)}, []string{"c", "a", "b"})
		d.Iterate(func(i int, key, value *Value) bool {
			keys = append(keys, key.String())
			return true
		}, func() {})
		assert.Equal(t, []string{"c", "a", "b"}, keys)
	})
}

func TestValueFromGo(t *testing.T) {
	assert.Equal(t, int64(7), FromGo(7).Int64())
	assert.Equal(t, "hi", FromGo("hi").String())
	assert.True(t, FromGo(true).BoolValue())
	assert.True(t, FromGo(nil).IsNull())
}

func TestValueFromGoNestedContext(t *testing.T) {
	v := FromGo(Context{"name": "Ada"})
	assert.Equal(t, KindStringDict, v.Kind())
	assert.Equal(t, "Ada", v.GetAttr("name").String())
}
