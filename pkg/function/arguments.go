package function

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// Arguments 一次调用的实参，保持参数声明顺序
type Arguments struct {
	names  []string
	values map[string]value.Value
}

// NewArguments 创建空实参表
func NewArguments() *Arguments {
	return &Arguments{values: make(map[string]value.Value)}
}

// ArgumentsFrom 从普通 map 创建实参，顺序由 order 决定，未列出的键追加在后
func ArgumentsFrom(order []string, m map[string]any) *Arguments {
	args := NewArguments()
	for _, name := range order {
		if v, ok := m[name]; ok {
			args.Set(name, value.From(v))
		}
	}
	for name, v := range m {
		if _, ok := args.values[name]; !ok {
			args.Set(name, value.From(v))
		}
	}
	return args
}

// Set 设置一个实参
func (a *Arguments) Set(name string, v value.Value) {
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = v
}

// Get 读取一个实参
func (a *Arguments) Get(name string) (value.Value, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names 按顺序返回实参名
func (a *Arguments) Names() []string {
	return append([]string(nil), a.names...)
}

// Len 实参个数
func (a *Arguments) Len() int {
	return len(a.names)
}

// Int 读取整数实参
func (a *Arguments) Int(name string) (int64, error) {
	v, err := a.require(name)
	if err != nil {
		return 0, err
	}
	i, err := v.AsInt()
	if err != nil {
		return 0, NewParameterError(name, err.Error())
	}
	return i, nil
}

// Float 读取浮点实参
func (a *Arguments) Float(name string) (float64, error) {
	v, err := a.require(name)
	if err != nil {
		return 0, err
	}
	f, err := v.AsFloat()
	if err != nil {
		return 0, NewParameterError(name, err.Error())
	}
	return f, nil
}

// String 读取字符串实参
func (a *Arguments) String(name string) (string, error) {
	v, err := a.require(name)
	if err != nil {
		return "", err
	}
	s, err := v.AsString()
	if err != nil {
		return "", NewParameterError(name, err.Error())
	}
	return s, nil
}

// Bool 读取布尔实参
func (a *Arguments) Bool(name string) (bool, error) {
	v, err := a.require(name)
	if err != nil {
		return false, err
	}
	b, err := v.AsBool()
	if err != nil {
		return false, NewParameterError(name, err.Error())
	}
	return b, nil
}

func (a *Arguments) require(name string) (value.Value, error) {
	v, ok := a.values[name]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return v, nil
}

// Map 转换为普通 map
func (a *Arguments) Map() map[string]any {
	out := make(map[string]any, len(a.names))
	for _, name := range a.names {
		out[name] = a.values[name].Interface()
	}
	return out
}

// Bind 将实参填充到目标结构体
// 字段名规则与 DescriptorFromStruct 相同，None 实参保留字段原值
func (a *Arguments) Bind(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	// 逐个参数解码，出错时能定位到参数名
	for _, name := range a.names {
		val := a.values[name]
		if val.IsNull() {
			continue
		}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           target,
			TagName:          "json",
			Squash:           true,
			WeaklyTypedInput: true,
			MatchName:        matchFieldName,
			DecodeHook:       valueHook,
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(map[string]any{name: val.Interface()}); err != nil {
			return NewParameterError(name, err.Error())
		}
	}
	return nil
}

// matchFieldName 未加 json tag 的字段按下划线形式匹配
func matchFieldName(key, field string) bool {
	return key == field || key == toSnakeCase(field)
}

var valueType = reflect.TypeOf(value.Value{})

// valueHook 目标字段为 value.Value 时保留原始值
func valueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to == valueType {
		return value.From(data), nil
	}
	return data, nil
}

// BindCall 把接收参数结构体的函数适配为 CallFunc
func BindCall[T any](fn func(ctx context.Context, params T) (any, error)) CallFunc {
	return func(ctx context.Context, args *Arguments) (any, error) {
		var params T
		if err := args.Bind(&params); err != nil {
			return nil, err
		}
		return fn(ctx, params)
	}
}
