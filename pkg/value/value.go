// Package value 提供在 UI、Widget 与工作协程之间传递的带标签值类型
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind 值的类型标签
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStr
	KindBytes
	KindList
	KindMap
	KindSet
	KindTuple
	KindObject
)

var kindNames = [...]string{"null", "int", "float", "bool", "str", "bytes", "list", "map", "set", "tuple", "object"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value 带标签的异构值
// 零值为 Null
type Value struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	s     string
	bs    []byte
	items []Value          // List / Set / Tuple
	keys  []string         // Map 键顺序
	m     map[string]Value // Map
	obj   any
}

// Entry Map 的一个键值对
type Entry struct {
	Key   string
	Value Value
}

// Null 返回空值
func Null() Value { return Value{} }

// Int 创建整数值
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float 创建浮点值
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool 创建布尔值
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Str 创建字符串值
func Str(s string) Value { return Value{kind: KindStr, s: s} }

// Bytes 创建字节串值
func Bytes(b []byte) Value { return Value{kind: KindBytes, bs: append([]byte(nil), b...)} }

// List 创建列表值
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Tuple 创建元组值
func Tuple(items ...Value) Value { return Value{kind: KindTuple, items: items} }

// Set 创建集合值，重复元素只保留第一次出现
func Set(items ...Value) Value {
	uniq := make([]Value, 0, len(items))
	for _, it := range items {
		dup := false
		for _, u := range uniq {
			if u.Equal(it) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, it)
		}
	}
	return Value{kind: KindSet, items: uniq}
}

// Map 按给定顺序创建映射值
func Map(entries ...Entry) Value {
	v := Value{kind: KindMap, m: make(map[string]Value, len(entries))}
	for _, e := range entries {
		if _, ok := v.m[e.Key]; !ok {
			v.keys = append(v.keys, e.Key)
		}
		v.m[e.Key] = e.Value
	}
	return v
}

// Object 包装任意不透明对象
func Object(o any) Value { return Value{kind: KindObject, obj: o} }

// From 将 Go 值转换为 Value
// map 的键按字典序排列，无法识别的类型作为 Object 保存
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Value:
		if t == nil {
			return Null()
		}
		return *t
	case bool:
		return Bool(t)
	case string:
		return Str(t)
	case []byte:
		return Bytes(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = From(it)
		}
		return List(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{Key: k, Value: From(t[k])}
		}
		return Map(entries...)
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return Str(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		return fromReflect(rv.Elem())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List()
		}
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = From(rv.Index(i).Interface())
		}
		if rv.Kind() == reflect.Array {
			return Tuple(items...)
		}
		return List(items...)
	case reflect.Map:
		// map[K]struct{} 视为集合
		if rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0 {
			items := make([]Value, 0, rv.Len())
			for _, k := range sortedMapKeys(rv) {
				items = append(items, From(k.Interface()))
			}
			return Set(items...)
		}
		entries := make([]Entry, 0, rv.Len())
		for _, k := range sortedMapKeys(rv) {
			entries = append(entries, Entry{Key: fmt.Sprint(k.Interface()), Value: From(rv.MapIndex(k).Interface())})
		}
		return Map(entries...)
	}
	if !rv.IsValid() {
		return Null()
	}
	return Object(rv.Interface())
}

func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}

// Kind 返回值的类型标签
func (v Value) Kind() Kind { return v.kind }

// IsNull 是否为空值
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface 将 Value 还原为普通 Go 值
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindStr:
		return v.s
	case KindBytes:
		return append([]byte(nil), v.bs...)
	case KindList, KindSet, KindTuple:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.m[k].Interface()
		}
		return out
	case KindObject:
		return v.obj
	}
	return nil
}

// fromUint 超出 int64 范围的无符号数转为浮点数
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// AsInt 读取整数，整值浮点数也可接受
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) {
			return int64(v.f), nil
		}
	}
	return 0, v.typeError("int")
}

// AsFloat 读取浮点数，整数也可接受
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	}
	return 0, v.typeError("float")
}

// AsBool 读取布尔值
func (v Value) AsBool() (bool, error) {
	if v.kind == KindBool {
		return v.b, nil
	}
	return false, v.typeError("bool")
}

// AsString 读取字符串
func (v Value) AsString() (string, error) {
	if v.kind == KindStr {
		return v.s, nil
	}
	return "", v.typeError("str")
}

// AsBytes 读取字节串，字符串按 UTF-8 编码返回
func (v Value) AsBytes() ([]byte, error) {
	switch v.kind {
	case KindBytes:
		return append([]byte(nil), v.bs...), nil
	case KindStr:
		return []byte(v.s), nil
	}
	return nil, v.typeError("bytes")
}

// AsList 读取 List / Set / Tuple 的元素
func (v Value) AsList() ([]Value, error) {
	switch v.kind {
	case KindList, KindSet, KindTuple:
		return append([]Value(nil), v.items...), nil
	}
	return nil, v.typeError("list")
}

// AsMap 按插入顺序读取映射条目
func (v Value) AsMap() ([]Entry, error) {
	if v.kind != KindMap {
		return nil, v.typeError("map")
	}
	out := make([]Entry, len(v.keys))
	for i, k := range v.keys {
		out[i] = Entry{Key: k, Value: v.m[k]}
	}
	return out, nil
}

// Get 读取映射中的一个键
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	it, ok := v.m[key]
	return it, ok
}

// Len 返回容器长度，标量返回 0
func (v Value) Len() int {
	switch v.kind {
	case KindList, KindSet, KindTuple:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	case KindStr:
		return len(v.s)
	case KindBytes:
		return len(v.bs)
	}
	return 0
}

// Equal 深度比较，Int 与等值 Float 视为不同
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindStr:
		return v.s == o.s
	case KindBytes:
		return string(v.bs) == string(o.bs)
	case KindList, KindTuple:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindSet:
		if len(v.items) != len(o.items) {
			return false
		}
		for _, it := range v.items {
			found := false
			for _, ot := range o.items {
				if it.Equal(ot) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for _, k := range v.keys {
			ov, ok := o.m[k]
			if !ok || !v.m[k].Equal(ov) {
				return false
			}
		}
		return true
	case KindObject:
		return reflect.DeepEqual(v.obj, o.obj)
	}
	return false
}

// String 返回适合展示的文本，字符串本身不加引号
func (v Value) String() string {
	if v.kind == KindStr {
		return v.s
	}
	return v.Repr()
}

// Repr 返回字面量形式的文本，可被 ParseLiteral 解析回来（Object 除外）
func (v Value) Repr() string {
	switch v.kind {
	case KindNull:
		return "None"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindStr:
		return quote(v.s)
	case KindBytes:
		return "b" + quote(string(v.bs))
	case KindList:
		return "[" + joinRepr(v.items) + "]"
	case KindTuple:
		if len(v.items) == 1 {
			return "(" + v.items[0].Repr() + ",)"
		}
		return "(" + joinRepr(v.items) + ")"
	case KindSet:
		if len(v.items) == 0 {
			return "set()"
		}
		return "{" + joinRepr(v.items) + "}"
	case KindMap:
		parts := make([]string, len(v.keys))
		for i, k := range v.keys {
			parts[i] = quote(k) + ": " + v.m[k].Repr()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	}
	return ""
}

func joinRepr(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Repr()
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// MarshalJSON 实现 json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindBytes {
		return json.Marshal(string(v.bs))
	}
	return json.Marshal(v.Interface())
}

func (v Value) typeError(want string) error {
	return &TypeError{Want: want, Got: v.kind}
}

// TypeError 值类型不匹配
type TypeError struct {
	Want string
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s value, got %s", e.Want, e.Got)
}
