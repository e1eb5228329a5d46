package widget

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/value"
)

func nopCall(ctx context.Context, args *function.Arguments) (any, error) {
	return nil, nil
}

func parse(t *testing.T, desc *function.FnDescriptor) (*function.FnInfo, function.Metadata) {
	t.Helper()
	desc.Call = nopCall
	info, md, err := function.Parse(desc)
	require.NoError(t, err)
	return info, md
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("int", IntSpinBox, false))

	err := r.Register("int", IntSlider, false)
	var already *AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "int", already.Name)

	require.NoError(t, r.Register("int", IntSlider, true))
	c, ok := r.ClassFor("int")
	require.True(t, ok)
	assert.Same(t, IntSlider, c)

	_, err = r.ClassByName("Nope")
	var notRegistered *NotRegisteredError
	assert.ErrorAs(t, err, &notRegistered)

	other := &Class{Name: "IntSlider", NewConfig: IntSlider.NewConfig, New: IntSlider.New}
	assert.ErrorAs(t, r.RegisterClass(other, false), &already)
	assert.True(t, r.Unregister("int"))
	assert.False(t, r.Unregister("int"))
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name       string
		annotation any
		want       *Class
	}{
		{"int", reflect.TypeOf(0), IntSpinBox},
		{"float", reflect.TypeOf(0.0), FloatSpinBox},
		{"str", reflect.TypeOf(""), LineEdit},
		{"bool", reflect.TypeOf(false), CheckBox},
		{"bytes", reflect.TypeOf([]byte(nil)), BytesEdit},
		{"list", reflect.TypeOf([]int(nil)), ListEdit},
		{"tuple", reflect.TypeOf([2]int{}), ListEdit},
		{"set", reflect.TypeOf(map[string]struct{}(nil)), ListEdit},
		{"dict", reflect.TypeOf(map[string]int(nil)), DictEdit},
		{"mapping", "Mapping[str, int]", DictEdit},
		{"any", nil, AnyEdit},
		{"literal", function.Literal("a", "b"), ExclusiveChoiceBox},
		{"enum", reflect.TypeOf(color(0)), ExclusiveChoiceBox},
		{"optional", function.Optional(reflect.TypeOf(0)), IntSpinBox},
		{"union none", "Union[str, None]", LineEdit},
		{"pipe none", "float | None", FloatSpinBox},
		{"optional literal", "Optional[Literal['x', 'y']]", ExclusiveChoiceBox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, _ := parse(t, &function.FnDescriptor{
				Name:   "f",
				Params: []function.ParamSpec{{Name: "p", Annotation: tt.annotation}},
			})
			p, _ := info.Parameters.Get("p")
			c, err := r.Resolve("p", p, "")
			require.NoError(t, err)
			assert.Same(t, tt.want, c, "resolved %s", c)
		})
	}
}

func TestRegistry_ResolveFailures(t *testing.T) {
	r := NewDefaultRegistry()
	info := &function.ParameterInfo{Name: "w", Typename: "Widget", DefaultValue: function.Unset}

	_, err := r.Resolve("w", info, "")
	var unresolved *UnresolvedWidgetClassError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "w", unresolved.ParameterName)
	assert.Equal(t, "Widget", unresolved.Typename)

	_, err = r.Resolve("w", info, "MissingClass")
	var notRegistered *NotRegisteredError
	assert.ErrorAs(t, err, &notRegistered)

	union := &function.ParameterInfo{
		Name:     "u",
		Typename: function.TypeUnion,
		TypeArgs: []function.TypeArg{function.TypeRef("int"), function.TypeRef("str")},
	}
	_, err = r.Resolve("u", union, "")
	assert.ErrorAs(t, err, &unresolved, "Union without None has no default widget")

	r.AddRule(func(info *function.ParameterInfo) *Class {
		if info.Typename == "Widget" {
			return AnyEdit
		}
		return nil
	})
	c, err := r.Resolve("w", info, "")
	require.NoError(t, err)
	assert.Same(t, AnyEdit, c)
}

type color int

func (color) EnumValues() []any { return []any{"red", "green", "blue"} }

func TestMerge_SignatureDriven(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name: "f",
		Params: []function.ParamSpec{
			{Name: "a", Annotation: reflect.TypeOf(0), Default: 3, HasDefault: true},
			{Name: "b", Annotation: reflect.TypeOf(""), Default: "x", HasDefault: true},
		},
	})

	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, configs.Names())

	a, _ := configs.Get("a")
	assert.Same(t, IntSpinBox, a.Class)
	assert.Equal(t, 3, a.Config.Base().DefaultValue)
	assert.Equal(t, "a", a.Config.Base().Label)

	b, _ := configs.Get("b")
	assert.Same(t, LineEdit, b.Class)
	assert.Equal(t, "x", b.Config.Base().DefaultValue)
}

func TestMerge_LiteralChoice(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name:   "g",
		Params: []function.ParamSpec{{Name: "mode", Annotation: function.Literal("a", "b", "c")}},
	})

	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, nil)
	require.NoError(t, err)

	e, _ := configs.Get("mode")
	assert.Same(t, ExclusiveChoiceBox, e.Class)
	cfg := e.Config.(*ExclusiveChoiceBoxConfig)
	assert.Equal(t, []any{"a", "b", "c"}, cfg.Choices)
	assert.Equal(t, "a", cfg.DefaultValue)

	w, err := e.Class.Create(nil, "mode", e.Config)
	require.NoError(t, err)
	v, err := w.GetValue()
	require.NoError(t, err)
	assert.True(t, v.Equal(value.Str("a")))

	err = w.SetValue(value.Str("z"))
	pe, ok := function.AsParameterError(err)
	require.True(t, ok)
	assert.Equal(t, "mode", pe.ParameterName)
	require.NoError(t, w.(TextSetter).SetText("c"))
	v, _ = w.GetValue()
	assert.True(t, v.Equal(value.Str("c")))
}

func TestMerge_DocstringOverride(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name:   "h",
		Doc:    "Slide.\n\n@params\n[n]\nwidget_class = \"IntSlider\"\nmin_value = 0\nmax_value = 10\ncolor = \"red\"\n@end\n",
		Params: []function.ParamSpec{{Name: "n", Annotation: reflect.TypeOf(0)}},
	})

	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, nil)
	require.NoError(t, err)

	e, _ := configs.Get("n")
	assert.Same(t, IntSlider, e.Class)
	cfg := e.Config.(*IntSliderConfig)
	assert.Equal(t, int64(0), cfg.MinValue)
	assert.Equal(t, int64(10), cfg.MaxValue)
	assert.Equal(t, map[string]any{"color": "red"}, cfg.Extra)

	w, err := e.Class.Create(nil, "n", cfg)
	require.NoError(t, err)
	err = w.SetValue(value.Int(11))
	_, ok := function.AsParameterError(err)
	assert.True(t, ok, "out of range value should be a parameter error")
}

func TestMerge_Precedence(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name: "p",
		Doc:  "@params\n[x]\ndefault_value = 1\nlabel = \"From doc\"\n@end",
		Params: []function.ParamSpec{
			{Name: "x", Annotation: reflect.TypeOf(0), Default: 3, HasDefault: true},
		},
	})

	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, nil)
	require.NoError(t, err)
	e, _ := configs.Get("x")
	assert.Equal(t, int64(1), e.Config.Base().DefaultValue, "docstring beats signature")
	assert.Equal(t, "From doc", e.Config.Base().Label)

	configs, err = Merge(NewDefaultRegistry(), info.Parameters, md, map[string]any{
		"x": Options{"default_value": 2},
	})
	require.NoError(t, err)
	e, _ = configs.Get("x")
	assert.Equal(t, 2, e.Config.Base().DefaultValue, "user options beat docstring")
	assert.Equal(t, "From doc", e.Config.Base().Label)
}

func TestMerge_UserConfigInstanceWins(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name:   "q",
		Doc:    "@params\n[n]\nwidget_class = \"IntSlider\"\n@end",
		Params: []function.ParamSpec{{Name: "n", Annotation: reflect.TypeOf(0)}},
	})

	user := &IntSpinBoxConfig{MinValue: -5, MaxValue: 5, Step: 1}
	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, map[string]any{"n": user})
	require.NoError(t, err)

	e, _ := configs.Get("n")
	assert.Same(t, IntSpinBox, e.Class)
	assert.Same(t, user, e.Config)
	assert.Equal(t, "n", e.Config.Base().Label)

	choiceInfo, choiceMD := parse(t, &function.FnDescriptor{
		Name:   "m",
		Params: []function.ParamSpec{{Name: "mode", Annotation: function.Literal("fast", "slow")}},
	})
	choice := &ExclusiveChoiceBoxConfig{Columns: 2}
	configs, err = Merge(NewDefaultRegistry(), choiceInfo.Parameters, choiceMD, map[string]any{"mode": choice})
	require.NoError(t, err)
	assert.Equal(t, []any{"fast", "slow"}, choice.Choices)
	assert.Equal(t, "fast", choice.DefaultValue)
	e, _ = configs.Get("mode")
	_, err = e.Class.Create(nil, "mode", e.Config)
	assert.NoError(t, err)

	_, err = Merge(NewDefaultRegistry(), choiceInfo.Parameters, choiceMD,
		map[string]any{"mode": &ExclusiveChoiceBoxConfig{Columns: 0}})
	assert.Error(t, err, "user instances are validated")
}

func TestMerge_Errors(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name:   "e",
		Params: []function.ParamSpec{{Name: "n", Annotation: reflect.TypeOf(0)}},
	})

	_, err := Merge(NewDefaultRegistry(), info.Parameters, md, map[string]any{
		"n": Options{"min_value": 10, "max_value": 1},
	})
	assert.Error(t, err, "max_value below min_value should fail validation")

	_, err = Merge(NewDefaultRegistry(), info.Parameters, md, map[string]any{"n": 42})
	assert.Error(t, err)

	_, err = Merge(NewDefaultRegistry(), info.Parameters, md, map[string]any{
		"n": Options{"widget_class": "Missing"},
	})
	var notRegistered *NotRegisteredError
	assert.True(t, errors.As(err, &notRegistered))
}

func TestMerge_OptionalIsNullable(t *testing.T) {
	info, md := parse(t, &function.FnDescriptor{
		Name: "o",
		Params: []function.ParamSpec{
			{Name: "n", Annotation: function.Optional(reflect.TypeOf(0)), Default: nil, HasDefault: true},
		},
	})

	configs, err := Merge(NewDefaultRegistry(), info.Parameters, md, nil)
	require.NoError(t, err)
	e, _ := configs.Get("n")
	assert.True(t, e.Config.Base().Nullable)

	w, err := e.Class.Create(nil, "n", e.Config)
	require.NoError(t, err)
	v, _ := w.GetValue()
	assert.True(t, v.IsNull())
	require.NoError(t, w.(TextSetter).SetText("7"))
	v, _ = w.GetValue()
	assert.True(t, v.Equal(value.Int(7)))
}

func TestWidgets_Values(t *testing.T) {
	line, err := LineEdit.Create(nil, "s", &LineEditConfig{MaxLength: 3, Pattern: `[a-z]+`})
	require.NoError(t, err)
	require.NoError(t, line.(TextSetter).SetText("abc"))
	assert.Error(t, line.SetValue(value.Str("abcd")))
	assert.Error(t, line.SetValue(value.Str("AB")))
	assert.Error(t, line.SetValue(value.Null()), "non-nullable widget rejects None")

	bytesW, err := BytesEdit.Create(nil, "b", &BytesEditConfig{})
	require.NoError(t, err)
	require.NoError(t, bytesW.(TextSetter).SetText("hi"))
	v, _ := bytesW.GetValue()
	assert.True(t, v.Equal(value.Bytes([]byte("hi"))))

	list, err := ListEdit.Create(nil, "l", &ListEditConfig{MaxItems: 2})
	require.NoError(t, err)
	require.NoError(t, list.(TextSetter).SetText("[1, 2]"))
	assert.Error(t, list.SetValue(value.List(value.Int(1), value.Int(2), value.Int(3))))

	anyW, err := AnyEdit.Create(nil, "x", &AnyEditConfig{})
	require.NoError(t, err)
	v, _ = anyW.GetValue()
	assert.True(t, v.IsNull())

	_, err = IntSpinBox.Create(nil, "n", &LineEditConfig{})
	assert.Error(t, err, "class must reject a foreign config")
}

func TestWidgets_ParameterErrorFeedback(t *testing.T) {
	w, err := IntSpinBox.Create(nil, "x", newIntSpinBoxConfig())
	require.NoError(t, err)

	iw := w.(*IntWidget)
	w.OnParameterError("x", "must be positive")
	assert.Equal(t, "must be positive", iw.ErrorMessage())
	w.OnParameterError("y", "ignored")
	assert.Equal(t, "must be positive", iw.ErrorMessage())
	w.OnClearParameterError("x")
	assert.Empty(t, iw.ErrorMessage())
}

func TestOptionsOf(t *testing.T) {
	cfg, err := IntSlider.Materialize(map[string]any{"min_value": 1, "max_value": 5, "color": "red"})
	require.NoError(t, err)

	opts, err := OptionsOf(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 1, opts["min_value"])
	assert.EqualValues(t, 5, opts["max_value"])
	assert.Equal(t, "red", opts["color"])
	assert.Contains(t, opts, "label")
}
