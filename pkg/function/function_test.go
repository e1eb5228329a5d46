package function

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/KodaTao/FormChassis/pkg/value"
)

func nopCall(ctx context.Context, args *Arguments) (any, error) {
	return nil, nil
}

// TestParams 测试用的参数结构
type TestParams struct {
	Name    string `json:"name" desc:"名称" required:"true"`
	Count   int    `json:"count" desc:"数量" default:"10"`
	Enabled bool   `json:"enabled" desc:"是否启用"`
	Mode    string `type:"Literal['fast', 'slow']" default:"'fast'"`
}

func TestParse_Validation(t *testing.T) {
	if _, _, err := Parse(nil); err != ErrNilDescriptor {
		t.Errorf("Parse(nil) should return ErrNilDescriptor, got %v", err)
	}
	if _, _, err := Parse(&FnDescriptor{Call: nopCall}); err != ErrEmptyFunctionName {
		t.Errorf("Parse(empty name) should return ErrEmptyFunctionName, got %v", err)
	}
	if _, _, err := Parse(&FnDescriptor{Name: "f"}); !errors.Is(err, ErrNilCall) {
		t.Errorf("Parse(nil call) should return ErrNilCall, got %v", err)
	}

	_, _, err := Parse(&FnDescriptor{Name: "f", Call: nopCall, Params: []ParamSpec{{Name: "a"}, {Name: "a"}}})
	if !errors.Is(err, ErrDuplicateParameter) {
		t.Errorf("duplicate parameter should fail, got %v", err)
	}
}

func TestParse_ParameterOrder(t *testing.T) {
	names := []string{"zeta", "alpha", "mid", "beta"}
	desc := &FnDescriptor{Name: "order", Call: nopCall}
	for _, n := range names {
		desc.Params = append(desc.Params, ParamSpec{Name: n})
	}

	info, _, err := Parse(desc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := info.Parameters.Names()
	if !reflect.DeepEqual(got, names) {
		t.Errorf("Parameters.Names() = %v, want %v", got, names)
	}
}

func TestParse_ExcludeSelf(t *testing.T) {
	desc := &FnDescriptor{
		Name:        "method",
		Call:        nopCall,
		ExcludeSelf: true,
		Params:      []ParamSpec{{Name: "self"}, {Name: "x", Annotation: reflect.TypeOf(0)}},
	}
	info, _, err := Parse(desc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := info.Parameters.Names(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Parameters.Names() = %v, want [x]", got)
	}
}

func TestParse_ParameterKinds(t *testing.T) {
	_, _, err := Parse(&FnDescriptor{
		Name:   "posonly",
		Call:   nopCall,
		Params: []ParamSpec{{Name: "a", Kind: PositionalOnly}},
	})
	if !errors.Is(err, ErrInvalidParameterKind) {
		t.Fatalf("positional-only parameter should fail with ErrInvalidParameterKind, got %v", err)
	}
	var kindErr *InvalidParameterKindError
	if !errors.As(err, &kindErr) || kindErr.Parameter != "a" {
		t.Errorf("error should be *InvalidParameterKindError for a, got %#v", err)
	}

	info, _, err := Parse(&FnDescriptor{
		Name: "variadic",
		Call: nopCall,
		Params: []ParamSpec{
			{Name: "args", Kind: VarPositional, Annotation: reflect.TypeOf(0)},
			{Name: "kwargs", Kind: VarKeyword, Annotation: reflect.TypeOf("")},
		},
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	args, _ := info.Parameters.Get("args")
	if args.Typename != TypeList || len(args.TypeArgs) != 0 {
		t.Errorf("args = %s%v, want list with no args", args.Typename, args.TypeArgs)
	}
	kwargs, _ := info.Parameters.Get("kwargs")
	if kwargs.Typename != TypeDict || len(kwargs.TypeArgs) != 0 {
		t.Errorf("kwargs = %s%v, want dict with no args", kwargs.Typename, kwargs.TypeArgs)
	}
}

func TestParse_DefaultsAndTypes(t *testing.T) {
	desc := &FnDescriptor{
		Name: "f",
		Doc: `Do a thing.

    Longer text.

    Args:
        a: First. Defaults to 5.
        b (float): Second.
        c: Third. Defaults to 'hi'.
        d: Fourth.
    `,
		Call: nopCall,
		Params: []ParamSpec{
			{Name: "a", Annotation: reflect.TypeOf(0), Default: 3, HasDefault: true},
			{Name: "b"},
			{Name: "c"},
			{Name: "d"},
		},
	}

	info, _, err := Parse(desc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	a, _ := info.Parameters.Get("a")
	if a.DefaultValue != 3 {
		t.Errorf("a.DefaultValue = %v, signature default should win", a.DefaultValue)
	}
	if a.Typename != TypeInt || a.Type != reflect.TypeOf(0) {
		t.Errorf("a type = %s/%v", a.Typename, a.Type)
	}
	if a.Description != "First. Defaults to 5." {
		t.Errorf("a.Description = %q", a.Description)
	}

	b, _ := info.Parameters.Get("b")
	if b.Typename != TypeFloat || b.Type != nil {
		t.Errorf("b type = %s/%v, want float with nil type", b.Typename, b.Type)
	}
	if b.HasDefault() {
		t.Errorf("b should have no default, got %v", b.DefaultValue)
	}

	c, _ := info.Parameters.Get("c")
	if c.DefaultValue != "hi" {
		t.Errorf("c.DefaultValue = %v, want hi from docstring", c.DefaultValue)
	}
	if c.Typename != TypeStr {
		t.Errorf("c.Typename = %s, want str inferred from default", c.Typename)
	}

	d, _ := info.Parameters.Get("d")
	if d.Typename != TypeAny {
		t.Errorf("d.Typename = %s, want any", d.Typename)
	}

	if info.Document != "Do a thing.\n\nLonger text." {
		t.Errorf("Document = %q", info.Document)
	}
	if info.DisplayName != "f" || info.DocumentFormat != FormatMarkdown {
		t.Errorf("DisplayName = %q, DocumentFormat = %q", info.DisplayName, info.DocumentFormat)
	}
}

func TestParse_Options(t *testing.T) {
	info, _, err := Parse(&FnDescriptor{Name: "f", Call: nopCall},
		WithDisplayName("Pretty"),
		WithGroup("Tools"),
		WithDocument("<b>doc</b>"),
		WithDocumentFormat(FormatHTML),
		WithCancelable(true),
	)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if info.DisplayName != "Pretty" || info.Group != "Tools" || !info.Cancelable {
		t.Errorf("options not applied: %+v", info)
	}
	if info.Document != "<b>doc</b>" || info.DocumentFormat != FormatHTML {
		t.Errorf("document = %q (%s)", info.Document, info.DocumentFormat)
	}

	if _, _, err := Parse(&FnDescriptor{Name: "f", Call: nopCall}, WithDocumentFormat("rtf")); err == nil {
		t.Error("unsupported document format should fail")
	}
}

func TestParse_Metadata(t *testing.T) {
	desc := &FnDescriptor{
		Name: "h",
		Doc: `Slide it.

@params
[n]
widget_class = "IntSlider"
min_value = 0
max_value = 10
label = "Count"
@end
`,
		Metadata: "[n]\nlabel = \"N\"\n[m]\nstep = 2\n",
		Call:     nopCall,
		Params:   []ParamSpec{{Name: "n", Annotation: reflect.TypeOf(0)}},
	}

	info, md, err := Parse(desc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if info.Document != "Slide it." {
		t.Errorf("metadata block should be stripped, Document = %q", info.Document)
	}

	n := md.Options("n")
	if n[KeyWidgetClass] != "IntSlider" {
		t.Errorf("widget_class = %v", n[KeyWidgetClass])
	}
	if n["min_value"] != int64(0) || n["max_value"] != int64(10) {
		t.Errorf("min/max = %v/%v", n["min_value"], n["max_value"])
	}
	if n[KeyLabel] != "N" {
		t.Errorf("separate metadata should win, label = %v", n[KeyLabel])
	}
	if md.Options("m")["step"] != int64(2) {
		t.Errorf("m.step = %v", md.Options("m")["step"])
	}
}

func TestParse_MalformedMetadata(t *testing.T) {
	desc := &FnDescriptor{
		Name:   "bad",
		Doc:    "Summary.\n\n@widgets\n[n\nwidget_class = \n@end\n",
		Call:   nopCall,
		Params: []ParamSpec{{Name: "n"}},
	}
	info, md, err := Parse(desc)
	if err != nil {
		t.Fatalf("malformed metadata must not fail registration: %v", err)
	}
	if len(md) != 0 {
		t.Errorf("malformed block should be treated as absent, got %v", md)
	}
	if info.Document != "Summary." {
		t.Errorf("Document = %q", info.Document)
	}
}

func TestExtractMetadata(t *testing.T) {
	doc := "Intro\n  @parameters  \n[x]\nlabel = 'X'\n  @end\nOutro"
	stripped, block, found := ExtractMetadata(doc)
	if !found {
		t.Fatal("block should be found")
	}
	if stripped != "Intro\nOutro" {
		t.Errorf("stripped = %q", stripped)
	}
	md, err := ParseMetadata(block)
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if md.Options("x")[KeyLabel] != "X" {
		t.Errorf("label = %v", md.Options("x")[KeyLabel])
	}

	if _, _, found := ExtractMetadata("text with @params inline @end"); found {
		t.Error("markers must be anchored to line start")
	}
	if _, err := ParseMetadata("x = 1"); err == nil {
		t.Error("non-table top-level key should be rejected")
	}
}

func TestResolveType(t *testing.T) {
	type color int
	tests := []struct {
		name       string
		annotation any
		typename   string
		args       string
	}{
		{"nil", nil, "any", "any"},
		{"int", reflect.TypeOf(0), "int", "int"},
		{"uint8", reflect.TypeOf(uint8(0)), "int", "int"},
		{"float", reflect.TypeOf(0.0), "float", "float"},
		{"string", reflect.TypeOf(""), "str", "str"},
		{"bool", reflect.TypeOf(true), "bool", "bool"},
		{"bytes", reflect.TypeOf([]byte(nil)), "bytes", "bytes"},
		{"slice", reflect.TypeOf([]string(nil)), "list", "list[str]"},
		{"array", reflect.TypeOf([2]int{}), "tuple", "tuple[int, int]"},
		{"map", reflect.TypeOf(map[string]float64(nil)), "dict", "dict[str, float]"},
		{"set", reflect.TypeOf(map[int]struct{}(nil)), "set", "set[int]"},
		{"pointer", reflect.TypeOf((*int)(nil)), "int", "int"},
		{"interface", reflect.TypeOf((*any)(nil)).Elem(), "any", "any"},
		{"named", reflect.TypeOf(color(0)), "int", "int"},
		{"struct", reflect.TypeOf(TestParams{}), "TestParams", "TestParams"},
		{"generic", Generic("Dict", reflect.TypeOf(""), Generic("List", "int")), "dict", "dict[str, list[int]]"},
		{"literal", Literal("a", "b", 3), "Literal", "Literal['a', 'b', 3]"},
		{"optional", Optional(reflect.TypeOf(0)), "Optional", "Optional[int]"},
		{"string simple", "List", "list", "list"},
		{"string generic", "Dict[str, List[int]]", "dict", "dict[str, list[int]]"},
		{"string literal", "Literal['x', 'y']", "Literal", "Literal['x', 'y']"},
		{"string union", "int | None", "Union", "Union[int, None]"},
		{"string go slice", "[]string", "list", "list[str]"},
		{"string go map", "map[string]int", "dict", "dict[str, int]"},
		{"string qualified", "typing.Mapping", "Mapping", "Mapping"},
		{"string unknown", "Widget", "Widget", "Widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ResolveType(tt.annotation)
			if err != nil {
				t.Fatalf("ResolveType() error = %v", err)
			}
			if r.Typename != tt.typename {
				t.Errorf("Typename = %s, want %s", r.Typename, tt.typename)
			}
			if r.String() != tt.args {
				t.Errorf("String() = %s, want %s", r.String(), tt.args)
			}

			// 多次解析结果稳定
			again, _ := ResolveType(tt.annotation)
			if again.String() != r.String() {
				t.Errorf("unstable resolution: %s vs %s", again.String(), r.String())
			}
		})
	}
}

func TestResolveType_Errors(t *testing.T) {
	for _, s := range []string{"", "List[int", "1abc", "Literal[oops]"} {
		if _, err := ResolveType(s); err == nil {
			t.Errorf("ResolveType(%q) should fail", s)
		}
	}
	if _, err := ResolveType(42); err == nil {
		t.Error("ResolveType(42) should fail")
	}
}

type level int

func (level) EnumValues() []any { return []any{"low", "high"} }

func TestResolveType_Enum(t *testing.T) {
	r, err := ResolveType(reflect.TypeOf(level(0)))
	if err != nil {
		t.Fatalf("ResolveType() error = %v", err)
	}
	if r.Typename != "level" {
		t.Errorf("Typename = %s, want level", r.Typename)
	}
	if len(r.Args) != 2 || !r.Args[0].IsLiteral || !r.Args[0].Literal.Equal(value.Str("low")) {
		t.Errorf("Args = %v", r.Args)
	}
}

func TestDescriptorFromStruct(t *testing.T) {
	desc, err := DescriptorFromStruct("struct_fn", "Struct based.", TestParams{}, nopCall)
	if err != nil {
		t.Fatalf("DescriptorFromStruct() error = %v", err)
	}
	if len(desc.Params) != 4 {
		t.Fatalf("Params has %d items, want 4", len(desc.Params))
	}

	name := desc.Params[0]
	if name.Name != "name" || name.HasDefault || name.Description != "名称" {
		t.Errorf("name param = %+v", name)
	}
	count := desc.Params[1]
	if !count.HasDefault || count.Default != int64(10) {
		t.Errorf("count default = %v (%v)", count.Default, count.HasDefault)
	}
	mode := desc.Params[3]
	if mode.Name != "mode" || mode.Annotation != "Literal['fast', 'slow']" || mode.Default != "fast" {
		t.Errorf("mode param = %+v", mode)
	}

	info, _, err := Parse(desc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m, _ := info.Parameters.Get("mode")
	if m.Typename != TypeLiteral || len(m.TypeArgs) != 2 {
		t.Errorf("mode resolved to %s%v", m.Typename, m.TypeArgs)
	}

	if _, err := DescriptorFromStruct("bad", "", 42, nopCall); err == nil {
		t.Error("non-struct params should fail")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Name", "name"},
		{"UserName", "user_name"},
		{"userID", "user_i_d"},
		{"simple", "simple"},
	}

	for _, tt := range tests {
		if got := toSnakeCase(tt.input); got != tt.expected {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestArguments_Bind(t *testing.T) {
	type target struct {
		Name  string         `json:"name"`
		Count int            `json:"count"`
		Ratio float64        `json:"ratio"`
		Tags  []string       `json:"tags"`
		Opts  map[string]int `json:"opts"`
		Ptr   *bool          `json:"ptr"`
	}

	args := ArgumentsFrom([]string{"name", "count"}, map[string]any{
		"name":  "x",
		"count": 3,
		"ratio": 2,
		"tags":  []string{"a", "b"},
		"opts":  map[string]int{"k": 1},
		"ptr":   true,
	})
	if got := args.Names()[:2]; !reflect.DeepEqual(got, []string{"name", "count"}) {
		t.Errorf("Names() = %v", got)
	}

	var tg target
	if err := args.Bind(&tg); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if tg.Name != "x" || tg.Count != 3 || tg.Ratio != 2 {
		t.Errorf("scalar fields = %+v", tg)
	}
	if !reflect.DeepEqual(tg.Tags, []string{"a", "b"}) || tg.Opts["k"] != 1 {
		t.Errorf("container fields = %+v", tg)
	}
	if tg.Ptr == nil || !*tg.Ptr {
		t.Errorf("Ptr = %v", tg.Ptr)
	}

	if err := args.Bind(tg); err != ErrInvalidTarget {
		t.Errorf("Bind(non-pointer) should return ErrInvalidTarget, got %v", err)
	}

	bad := ArgumentsFrom(nil, map[string]any{"count": "many"})
	err := bad.Bind(&tg)
	pe, ok := AsParameterError(err)
	if !ok || pe.ParameterName != "count" {
		t.Errorf("Bind() type mismatch should be a ParameterError for count, got %v", err)
	}
}

func TestArguments_BindNaming(t *testing.T) {
	type Common struct {
		Verbose bool `json:"verbose"`
	}
	type target struct {
		Common
		MaxRetries int
		Raw        value.Value `json:"raw"`
		Keep       string      `json:"keep"`
	}

	args := NewArguments()
	args.Set("verbose", value.Bool(true))
	args.Set("max_retries", value.Int(4))
	args.Set("raw", value.List(value.Int(1), value.Str("a")))
	args.Set("keep", value.Null())

	tg := target{Keep: "original"}
	if err := args.Bind(&tg); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if !tg.Verbose {
		t.Errorf("embedded field not bound: %+v", tg)
	}
	if tg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", tg.MaxRetries)
	}
	if !tg.Raw.Equal(value.List(value.Int(1), value.Str("a"))) {
		t.Errorf("Raw = %s", tg.Raw.Repr())
	}
	if tg.Keep != "original" {
		t.Errorf("None argument must not overwrite the field, got %q", tg.Keep)
	}
}

func TestArguments_Accessors(t *testing.T) {
	args := NewArguments()
	args.Set("n", value.Int(4))
	args.Set("s", value.Str("hi"))

	if n, err := args.Int("n"); err != nil || n != 4 {
		t.Errorf("Int(n) = %d, %v", n, err)
	}
	if _, err := args.String("n"); err == nil {
		t.Error("String(n) should fail")
	} else if _, ok := AsParameterError(err); !ok {
		t.Errorf("String(n) error should be a ParameterError, got %T", err)
	}
	if _, err := args.Float("missing"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Float(missing) should wrap ErrUnknownParameter, got %v", err)
	}
}

func TestExecuteError_Classification(t *testing.T) {
	pe := NewParameterError("x", "must be positive")
	ee := ClassifyError(pe, "")
	if ee.Kind != ParameterErrorKind {
		t.Errorf("Kind = %s, want parameter_error", ee.Kind)
	}
	if got, ok := ee.ParameterError(); !ok || got != pe {
		t.Errorf("ParameterError() = %v, %v", got, ok)
	}

	rt := ClassifyError(errors.New("boom"), "")
	if rt.Kind != RuntimeErrorKind {
		t.Errorf("Kind = %s, want runtime_error", rt.Kind)
	}
	if _, ok := rt.ParameterError(); ok {
		t.Error("runtime error should not expose a ParameterError")
	}
}
