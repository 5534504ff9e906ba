package jinjaspan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind tags which alternative of the Value sum type is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSafeString
	KindUndefined
	KindList
	KindStringDict
	KindValueDict
	KindCallable
	KindTime
	KindObject
)

// Callable is the signature shared by macro expansion and registered
// functions once both are reduced to a common invocable value.
type Callable func(args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error)

// Attributer is implemented by host values that want `GetAttr`/`GetItem`
// resolved through a capability rather than Go struct reflection — the
// "Object-handle" alternative from the data model. Any Go value placed in
// a Context that does *not* implement Attributer is still usable via
// FromGo, which wraps common concrete types (maps, slices, structs via
// light reflection at the boundary only).
type Attributer interface {
	Attribute(name string) (*Value, bool)
}

// Indexer is the GetItem counterpart of Attributer.
type Indexer interface {
	Index(key *Value) (*Value, bool)
}

// Value is the runtime representation of every expression result. It is
// an explicit tagged union (not reflect.Value) so that renderer semantics
// stay a simple switch over Kind rather than a reflect.Kind dispatch.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	und    string // name, for KindUndefined
	list   []*Value
	sdict  map[string]*Value
	sorder []string // insertion order for sdict, for deterministic iteration/inspect
	vdict  []DictEntry
	call   Callable
	t      time.Time
	obj    any
}

// DictEntry is one key/value pair of a value-keyed dict.
type DictEntry struct {
	Key   *Value
	Value *Value
}

// Null returns a new Null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool wraps a bool.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int wraps an Int64.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float wraps a Float64.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String wraps a plain (escapable) string.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Safe wraps a string that bypasses HTML escaping.
func Safe(s string) *Value { return &Value{kind: KindSafeString, s: s} }

// Undefined represents a missing variable/attribute by name.
func Undefined(name string) *Value { return &Value{kind: KindUndefined, und: name} }

// List wraps a slice of Values.
func List(items []*Value) *Value { return &Value{kind: KindList, list: items} }

// StringDict wraps a string-keyed dict, preserving insertion order.
func StringDict(m map[string]*Value, order []string) *Value {
	return &Value{kind: KindStringDict, sdict: m, sorder: order}
}

// ValueDict wraps a value-keyed dict (ordered by construction).
func ValueDict(entries []DictEntry) *Value {
	return &Value{kind: KindValueDict, vdict: entries}
}

// CallableValue wraps a Callable (macro or registered function) so it can
// flow through the same Value type as data.
func CallableValue(c Callable) *Value { return &Value{kind: KindCallable, call: c} }

// TimeValue wraps a time.Time.
func TimeValue(t time.Time) *Value { return &Value{kind: KindTime, t: t} }

// Object wraps an arbitrary Go value behind the Object-handle alternative;
// GetAttr/GetItem consult Attributer/Indexer if implemented.
func Object(v any) *Value { return &Value{kind: KindObject, obj: v} }

// FromGo converts a plain Go value (as supplied in a Context map) into a
// Value, handling the common JSON-ish shapes directly and falling back to
// Object for anything else.
func FromGo(v any) *Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case *Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case time.Time:
		return TimeValue(t)
	case []any:
		items := make([]*Value, len(t))
		for i, it := range t {
			items[i] = FromGo(it)
		}
		return List(items)
	case []*Value:
		return List(t)
	case map[string]any:
		order := make([]string, 0, len(t))
		m := make(map[string]*Value, len(t))
		for k := range t {
			order = append(order, k)
		}
		sort.Strings(order)
		for _, k := range order {
			m[k] = FromGo(t[k])
		}
		return StringDict(m, order)
	case Context:
		return FromGo(map[string]any(t))
	case map[string]*Value:
		order := make([]string, 0, len(t))
		for k := range t {
			order = append(order, k)
		}
		sort.Strings(order)
		return StringDict(t, order)
	default:
		return Object(v)
	}
}

// Kind reports the active alternative of the tagged union.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool      { return v.Kind() == KindNull }
func (v *Value) IsUndefined() bool { return v.Kind() == KindUndefined }
func (v *Value) IsString() bool {
	return v.Kind() == KindString || v.Kind() == KindSafeString
}
func (v *Value) IsSafe() bool  { return v.Kind() == KindSafeString }
func (v *Value) IsInt() bool   { return v.Kind() == KindInt }
func (v *Value) IsFloat() bool { return v.Kind() == KindFloat }
func (v *Value) IsNumber() bool {
	return v.Kind() == KindInt || v.Kind() == KindFloat
}
func (v *Value) IsBool() bool { return v.Kind() == KindBool }
func (v *Value) IsList() bool { return v.Kind() == KindList }
func (v *Value) IsDict() bool {
	return v.Kind() == KindStringDict || v.Kind() == KindValueDict
}
func (v *Value) IsCallable() bool { return v.Kind() == KindCallable }

// UndefinedName returns the missing name this Undefined refers to, or ""
// if v is not Undefined.
func (v *Value) UndefinedName() string {
	if v.Kind() == KindUndefined {
		return v.und
	}
	return ""
}

// Int64 returns v coerced to an int64 (truncating floats, parsing strings).
func (v *Value) Int64() int64 {
	switch v.Kind() {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString, KindSafeString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float64 returns v coerced to a float64.
func (v *Value) Float64() float64 {
	switch v.Kind() {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindString, KindSafeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// BoolValue returns v's Go bool, for KindBool only (false for anything else).
func (v *Value) BoolValue() bool {
	if v.Kind() == KindBool {
		return v.b
	}
	return false
}

// RawString returns the underlying Go string for String/SafeString values.
func (v *Value) RawString() string {
	if v.IsString() {
		return v.s
	}
	return ""
}

// Len reports the length of a string/list/dict value, 0 otherwise.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindString, KindSafeString:
		return len([]rune(v.s))
	case KindList:
		return len(v.list)
	case KindStringDict:
		return len(v.sorder)
	case KindValueDict:
		return len(v.vdict)
	default:
		return 0
	}
}

// IsTrue implements Jinja2 truthiness: numbers are true iff nonzero,
// strings/lists/dicts are true iff nonempty, bool is itself, Null and
// Undefined are false, and every other kind (Callable, Time, Object) is true.
func (v *Value) IsTrue() bool {
	switch v.Kind() {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString, KindSafeString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	case KindStringDict:
		return len(v.sorder) > 0
	case KindValueDict:
		return len(v.vdict) > 0
	case KindNull, KindUndefined:
		return false
	default:
		return true
	}
}

// String renders the canonical stringification used by Output and the `~`
// concat operator, per spec §4.3.
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull, KindUndefined:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString, KindSafeString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, it := range v.list {
			parts[i] = it.inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindStringDict:
		parts := make([]string, 0, len(v.sorder))
		for _, k := range v.sorder {
			parts = append(parts, fmt.Sprintf("%q: %s", k, v.sdict[k].inspect()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindValueDict:
		parts := make([]string, 0, len(v.vdict))
		for _, e := range v.vdict {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Key.inspect(), e.Value.inspect()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindCallable:
		return "<callable>"
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	default:
		return ""
	}
}

// inspect is like String but quotes string values, used when a value is
// nested inside a List/Dict's own String().
func (v *Value) inspect() string {
	if v.IsString() {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// EqualValueTo implements `==`/`!=` across the tagged union.
func (v *Value) EqualValueTo(other *Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.IsFloat() || other.IsFloat() {
			return v.Float64() == other.Float64()
		}
		return v.Int64() == other.Int64()
	}
	if v.IsString() && other.IsString() {
		return v.RawString() == other.RawString()
	}
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindUndefined:
		return v.und == other.und
	case KindBool:
		return v.b == other.b
	case KindTime:
		return v.t.Equal(other.t)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].EqualValueTo(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Contains implements the `in` operator: substring for strings, membership
// for lists, key presence for dicts.
func (v *Value) Contains(needle *Value) bool {
	switch v.Kind() {
	case KindString, KindSafeString:
		return strings.Contains(v.s, needle.String())
	case KindList:
		for _, it := range v.list {
			if it.EqualValueTo(needle) {
				return true
			}
		}
		return false
	case KindStringDict:
		_, ok := v.sdict[needle.String()]
		return ok
	case KindValueDict:
		for _, e := range v.vdict {
			if e.Key.EqualValueTo(needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// GetAttr implements `.name` access: dict key lookup, Attributer
// capability, or Undefined.
func (v *Value) GetAttr(name string) *Value {
	switch v.Kind() {
	case KindStringDict:
		if val, ok := v.sdict[name]; ok {
			return val
		}
		return Undefined(name)
	case KindObject:
		if a, ok := v.obj.(Attributer); ok {
			if val, found := a.Attribute(name); found {
				return val
			}
		}
		return Undefined(name)
	case KindTime:
		return timeAttribute(v.t, name)
	default:
		return Undefined(name)
	}
}

// GetItem implements `[index]` access: int index into List (negative
// allowed), stringified-key lookup into a dict.
func (v *Value) GetItem(index *Value) (*Value, bool) {
	switch v.Kind() {
	case KindList:
		i := int(index.Int64())
		if i < 0 {
			i += len(v.list)
		}
		if i < 0 || i >= len(v.list) {
			return Undefined(index.String()), false
		}
		return v.list[i], true
	case KindStringDict:
		val, ok := v.sdict[index.String()]
		if !ok {
			return Undefined(index.String()), false
		}
		return val, true
	case KindValueDict:
		for _, e := range v.vdict {
			if e.Key.EqualValueTo(index) {
				return e.Value, true
			}
		}
		return Undefined(index.String()), false
	case KindObject:
		if ix, ok := v.obj.(Indexer); ok {
			if val, found := ix.Index(index); found {
				return val, true
			}
		}
		return Undefined(index.String()), false
	default:
		return Undefined(index.String()), false
	}
}

// Items returns the list elements, or nil if v is not a list.
func (v *Value) Items() []*Value {
	if v.Kind() == KindList {
		return v.list
	}
	return nil
}

// Iterate walks the value as a for-loop iterable: list elements in order,
// or dict entries as (key, value) pairs. fn returning false stops early.
// empty is called once if the iterable has no elements.
func (v *Value) Iterate(fn func(index int, key, value *Value) bool, empty func()) {
	switch v.Kind() {
	case KindList:
		if len(v.list) == 0 {
			empty()
			return
		}
		for i, it := range v.list {
			if !fn(i, Int(int64(i)), it) {
				return
			}
		}
	case KindStringDict:
		if len(v.sorder) == 0 {
			empty()
			return
		}
		for i, k := range v.sorder {
			if !fn(i, String(k), v.sdict[k]) {
				return
			}
		}
	case KindValueDict:
		if len(v.vdict) == 0 {
			empty()
			return
		}
		for i, e := range v.vdict {
			if !fn(i, e.Key, e.Value) {
				return
			}
		}
	default:
		empty()
	}
}

// AsCallable returns the wrapped Callable, if v is KindCallable.
func (v *Value) AsCallable() (Callable, bool) {
	if v.Kind() == KindCallable {
		return v.call, true
	}
	return nil, false
}

// AsTime returns the wrapped time.Time, if v is KindTime.
func (v *Value) AsTime() (time.Time, bool) {
	if v.Kind() == KindTime {
		return v.t, true
	}
	return time.Time{}, false
}

func timeAttribute(t time.Time, name string) *Value {
	switch name {
	case "year":
		return Int(int64(t.Year()))
	case "month":
		return Int(int64(t.Month()))
	case "day":
		return Int(int64(t.Day()))
	case "hour":
		return Int(int64(t.Hour()))
	case "minute":
		return Int(int64(t.Minute()))
	case "second":
		return Int(int64(t.Second()))
	case "weekday":
		return Int(int64(t.Weekday()))
	default:
		return Undefined(name)
	}
}
