package function

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// 规范类型名
const (
	TypeInt            = "int"
	TypeFloat          = "float"
	TypeStr            = "str"
	TypeBool           = "bool"
	TypeBytes          = "bytes"
	TypeList           = "list"
	TypeTuple          = "tuple"
	TypeDict           = "dict"
	TypeSet            = "set"
	TypeObject         = "object"
	TypeAny            = "any"
	TypeMapping        = "Mapping"
	TypeMutableMapping = "MutableMapping"
	TypeMutableSet     = "MutableSet"
	TypeLiteral        = "Literal"
	TypeOptional       = "Optional"
	TypeUnion          = "Union"
)

var typeAliases = map[string]string{
	"int": TypeInt, "int8": TypeInt, "int16": TypeInt, "int32": TypeInt, "int64": TypeInt,
	"uint": TypeInt, "uint8": TypeInt, "uint16": TypeInt, "uint32": TypeInt, "uint64": TypeInt,
	"integer": TypeInt,
	"float": TypeFloat, "float32": TypeFloat, "float64": TypeFloat, "double": TypeFloat, "number": TypeFloat,
	"str": TypeStr, "string": TypeStr,
	"bool": TypeBool, "boolean": TypeBool,
	"bytes": TypeBytes, "bytearray": TypeBytes, "[]byte": TypeBytes,
	"list": TypeList, "List": TypeList, "Sequence": TypeList, "MutableSequence": TypeList,
	"tuple": TypeTuple, "Tuple": TypeTuple,
	"dict": TypeDict, "Dict": TypeDict, "map": TypeDict,
	"set": TypeSet, "Set": TypeSet, "frozenset": TypeSet, "FrozenSet": TypeSet,
	"object": TypeObject,
	"any": TypeAny, "Any": TypeAny, "interface{}": TypeAny,
	"Mapping": TypeMapping, "MutableMapping": TypeMutableMapping, "MutableSet": TypeMutableSet,
	"Literal": TypeLiteral, "Optional": TypeOptional, "Union": TypeUnion,
}

// CanonicalTypename 把类型名别名规范化，未知名称原样返回
func CanonicalTypename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 && !strings.Contains(name, "[") {
		// typing.List / collections.abc.Mapping
		if c, ok := typeAliases[name[i+1:]]; ok {
			return c
		}
	}
	if c, ok := typeAliases[name]; ok {
		return c
	}
	return name
}

var (
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	enumType   = reflect.TypeOf((*Enum)(nil)).Elem()
	goTypeHint = map[string]reflect.Type{
		TypeInt:   reflect.TypeOf(int64(0)),
		TypeFloat: reflect.TypeOf(float64(0)),
		TypeStr:   reflect.TypeOf(""),
		TypeBool:  reflect.TypeOf(false),
		TypeBytes: reflect.TypeOf([]byte(nil)),
		TypeList:  reflect.TypeOf([]any(nil)),
		TypeTuple: reflect.TypeOf([]any(nil)),
		TypeDict:  reflect.TypeOf(map[string]any(nil)),
		TypeAny:   anyType,
	}
)

// Enum 枚举类型，EnumValues 返回全部可选值
type Enum interface {
	EnumValues() []any
}

// TypeArg 类型参数：字面量或带参数的类型名
type TypeArg struct {
	Typename  string
	Args      []TypeArg
	Literal   value.Value
	IsLiteral bool
}

// LiteralArg 创建字面量类型参数
func LiteralArg(v any) TypeArg {
	return TypeArg{Literal: value.From(v), IsLiteral: true}
}

// TypeRef 创建类型名类型参数
func TypeRef(name string, args ...TypeArg) TypeArg {
	return TypeArg{Typename: name, Args: args}
}

func (a TypeArg) String() string {
	if a.IsLiteral {
		return a.Literal.Repr()
	}
	return formatTypename(a.Typename, a.Args)
}

func formatTypename(name string, args []TypeArg) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return name + "[" + strings.Join(parts, ", ") + "]"
}

// TypeExpr 参数化泛型注解，例如 Dict[str, int]
// Literal 的 Args 为字面量，其余为类型（reflect.Type、TypeExpr 或类型名字符串）
type TypeExpr struct {
	Origin string
	Args   []any
}

// Generic 创建参数化泛型注解
func Generic(origin string, args ...any) TypeExpr {
	return TypeExpr{Origin: origin, Args: args}
}

// Literal 创建 Literal[...] 注解
func Literal(values ...any) TypeExpr {
	return TypeExpr{Origin: TypeLiteral, Args: values}
}

// Optional 创建 Optional[T] 注解
func Optional(t any) TypeExpr {
	return TypeExpr{Origin: TypeOptional, Args: []any{t}}
}

func (e TypeExpr) String() string {
	r, err := ResolveType(e)
	if err != nil {
		return e.Origin
	}
	return r.String()
}

// ResolvedType 类型解析结果
type ResolvedType struct {
	Typename string
	Args     []TypeArg

	// Type 对应的 Go 类型，只有文本信息时为 nil
	Type reflect.Type
}

func (r ResolvedType) String() string {
	return formatTypename(r.Typename, r.Args)
}

// ResolveType 把类型注解解析为规范类型名与类型参数
// annotation 可以是 reflect.Type、TypeExpr、字符串或 nil（nil 解析为 any）
func ResolveType(annotation any) (ResolvedType, error) {
	switch a := annotation.(type) {
	case nil:
		return ResolvedType{Typename: TypeAny, Type: anyType}, nil
	case reflect.Type:
		return resolveReflect(a), nil
	case TypeExpr:
		return resolveExpr(a)
	case *TypeExpr:
		return resolveExpr(*a)
	case string:
		r, err := parseAnnotation(a)
		if err != nil {
			return ResolvedType{}, err
		}
		r.Type = goTypeHint[r.Typename]
		return r, nil
	}
	return ResolvedType{}, fmt.Errorf("unsupported annotation %T", annotation)
}

func resolveReflect(t reflect.Type) ResolvedType {
	if t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType) {
		return resolveEnum(t)
	}

	r := ResolvedType{Type: t}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		r.Typename = TypeInt
	case reflect.Float32, reflect.Float64:
		r.Typename = TypeFloat
	case reflect.String:
		r.Typename = TypeStr
	case reflect.Bool:
		r.Typename = TypeBool
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			r.Typename = TypeBytes
			break
		}
		r.Typename = TypeList
		r.Args = []TypeArg{typeArgOf(resolveReflect(t.Elem()))}
	case reflect.Array:
		r.Typename = TypeTuple
		elem := typeArgOf(resolveReflect(t.Elem()))
		for i := 0; i < t.Len(); i++ {
			r.Args = append(r.Args, elem)
		}
	case reflect.Map:
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			r.Typename = TypeSet
			r.Args = []TypeArg{typeArgOf(resolveReflect(t.Key()))}
			break
		}
		r.Typename = TypeDict
		r.Args = []TypeArg{typeArgOf(resolveReflect(t.Key())), typeArgOf(resolveReflect(t.Elem()))}
	case reflect.Pointer:
		inner := resolveReflect(t.Elem())
		inner.Type = t
		return inner
	case reflect.Interface:
		if t.NumMethod() == 0 {
			r.Typename = TypeAny
		} else {
			r.Typename = ownName(t)
		}
	case reflect.Struct:
		r.Typename = ownName(t)
	default:
		r.Typename = ownName(t)
	}
	return r
}

func resolveEnum(t reflect.Type) ResolvedType {
	var e Enum
	if t.Implements(enumType) {
		e, _ = reflect.New(t).Elem().Interface().(Enum)
	}
	if e == nil {
		e, _ = reflect.New(t).Interface().(Enum)
	}
	r := ResolvedType{Typename: ownName(t), Type: t}
	if e != nil {
		for _, v := range e.EnumValues() {
			r.Args = append(r.Args, LiteralArg(v))
		}
	}
	return r
}

// ownName 未识别类型回退到类型自身的名字
func ownName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	if t.Kind() == reflect.Struct || t.Kind() == reflect.Interface {
		return TypeObject
	}
	return t.String()
}

func typeArgOf(r ResolvedType) TypeArg {
	return TypeArg{Typename: r.Typename, Args: r.Args}
}

func resolveExpr(e TypeExpr) (ResolvedType, error) {
	origin := CanonicalTypename(e.Origin)
	if origin == "" {
		return ResolvedType{}, fmt.Errorf("type expression without origin")
	}
	r := ResolvedType{Typename: origin, Type: goTypeHint[origin]}
	for _, arg := range e.Args {
		if origin == TypeLiteral {
			r.Args = append(r.Args, LiteralArg(arg))
			continue
		}
		if arg == nil {
			// Optional[...] / Union[..., None] 中的 None
			r.Args = append(r.Args, LiteralArg(nil))
			continue
		}
		inner, err := ResolveType(arg)
		if err != nil {
			return ResolvedType{}, fmt.Errorf("%s argument: %w", origin, err)
		}
		r.Args = append(r.Args, typeArgOf(inner))
	}
	return r, nil
}

// parseAnnotation 解析字符串形式的注解：Name、Name[...]、A | B
func parseAnnotation(s string) (ResolvedType, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return ResolvedType{}, fmt.Errorf("empty type annotation")
	}

	if parts := splitTopLevel(s, '|'); len(parts) > 1 {
		r := ResolvedType{Typename: TypeUnion}
		for _, p := range parts {
			arg, err := parseTypeArg(p, false)
			if err != nil {
				return ResolvedType{}, err
			}
			r.Args = append(r.Args, arg)
		}
		return r, nil
	}

	// Go 风格：[]T、map[K]V
	if strings.HasPrefix(s, "[]") && s != "[]byte" {
		elem, err := parseAnnotation(s[2:])
		if err != nil {
			return ResolvedType{}, err
		}
		return ResolvedType{Typename: TypeList, Args: []TypeArg{typeArgOf(elem)}}, nil
	}
	if strings.HasPrefix(s, "map[") {
		if end := matchingBracket(s, 3); end > 0 {
			key, err := parseAnnotation(s[4:end])
			if err != nil {
				return ResolvedType{}, err
			}
			val, err := parseAnnotation(s[end+1:])
			if err != nil {
				return ResolvedType{}, err
			}
			return ResolvedType{Typename: TypeDict, Args: []TypeArg{typeArgOf(key), typeArgOf(val)}}, nil
		}
	}

	open := strings.IndexByte(s, '[')
	if open < 0 {
		if !isIdentifier(s) {
			return ResolvedType{}, fmt.Errorf("invalid type annotation %q", s)
		}
		return ResolvedType{Typename: CanonicalTypename(s)}, nil
	}
	if !strings.HasSuffix(s, "]") || matchingBracket(s, open) != len(s)-1 {
		return ResolvedType{}, fmt.Errorf("unbalanced brackets in type annotation %q", s)
	}

	origin := CanonicalTypename(s[:open])
	if !isIdentifier(s[:open]) {
		return ResolvedType{}, fmt.Errorf("invalid type annotation %q", s)
	}
	r := ResolvedType{Typename: origin}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return r, nil
	}
	for _, p := range splitTopLevel(inner, ',') {
		if strings.TrimSpace(p) == "" {
			continue
		}
		arg, err := parseTypeArg(p, origin == TypeLiteral)
		if err != nil {
			return ResolvedType{}, fmt.Errorf("%s argument: %w", origin, err)
		}
		r.Args = append(r.Args, arg)
	}
	return r, nil
}

// parseTypeArg 解析类型参数：字面量或嵌套类型
func parseTypeArg(s string, literal bool) (TypeArg, error) {
	s = strings.TrimSpace(s)
	if literal || looksLiteral(s) {
		v, err := value.ParseLiteral(s)
		if err == nil {
			return TypeArg{Literal: v, IsLiteral: true}, nil
		}
		if literal {
			return TypeArg{}, err
		}
	}
	inner, err := parseAnnotation(s)
	if err != nil {
		return TypeArg{}, err
	}
	return typeArgOf(inner), nil
}

func looksLiteral(s string) bool {
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c == '\'' || c == '"' || c == '-' || (c >= '0' && c <= '9'):
		return true
	}
	return s == "None" || s == "True" || s == "False"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return s == "interface{}"
		}
	}
	return true
}

// splitTopLevel 按不在括号或引号内的分隔符切分
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[' || c == '(' || c == '{':
			depth++
		case c == ']' || c == ')' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// matchingBracket 返回与 open 处 '[' 配对的 ']' 下标，找不到返回 -1
func matchingBracket(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
