package widget

import (
	"fmt"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/value"
)

// baseWidget 内置控件的公共部分
type baseWidget struct {
	parent   any
	name     string
	base     *BaseConfig
	value    value.Value
	errorMsg string

	// check 校验并规范化待设置的值
	check func(v value.Value) (value.Value, error)
	// zero 没有默认值时的初始值
	zero value.Value
}

func newBaseWidget(parent any, name string, cfg Config, zero value.Value, check func(value.Value) (value.Value, error)) (*baseWidget, error) {
	w := &baseWidget{
		parent: parent,
		name:   name,
		base:   cfg.Base(),
		check:  check,
		zero:   zero,
	}
	switch {
	case w.base.DefaultValue != nil && !function.IsUnset(w.base.DefaultValue):
		if err := w.SetValue(value.From(w.base.DefaultValue)); err != nil {
			return nil, fmt.Errorf("widget for %q: default value: %w", name, err)
		}
	case w.base.Nullable:
		w.value = value.Null()
	default:
		// 初始的空输入不做校验
		w.value = zero
	}
	return w, nil
}

func (w *baseWidget) ParameterName() string { return w.name }

// Parent 创建控件时传入的父对象
func (w *baseWidget) Parent() any { return w.parent }

func (w *baseWidget) SetValue(v value.Value) error {
	if v.IsNull() {
		// zero 为 None 的控件本身接受空值
		if w.base.Nullable || w.zero.IsNull() {
			w.value = v
			return nil
		}
		return function.NewParameterError(w.name, "a value is required")
	}
	checked, err := w.check(v)
	if err != nil {
		if _, ok := function.AsParameterError(err); ok {
			return err
		}
		return function.NewParameterError(w.name, err.Error())
	}
	w.value = checked
	return nil
}

func (w *baseWidget) GetValue() (value.Value, error) {
	return w.value, nil
}

func (w *baseWidget) RestoreValue(v value.Value) {
	w.value = v
}

func (w *baseWidget) OnParameterError(parameterName, message string) {
	if parameterName == w.name {
		w.errorMsg = message
	}
}

func (w *baseWidget) OnClearParameterError(parameterName string) {
	if parameterName == w.name {
		w.errorMsg = ""
	}
}

// ErrorMessage 当前显示的参数错误，没有时为空
func (w *baseWidget) ErrorMessage() string { return w.errorMsg }

func (w *baseWidget) DefaultValue() any { return w.base.DefaultValue }

func (w *baseWidget) Label() string { return w.base.Label }

func (w *baseWidget) Description() string { return w.base.Description }

func (w *baseWidget) DefaultValueDescription() string { return w.base.DefaultValueDescription }

func (w *baseWidget) Group() string { return w.base.Group }

// SetText 把输入文本按字面量解析后赋值，None 表示空值
func (w *baseWidget) SetText(text string) error {
	return w.SetValue(value.ParseLiteralOr(text))
}
