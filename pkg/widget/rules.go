package widget

import (
	"reflect"

	"github.com/KodaTao/FormChassis/pkg/function"
)

var enumType = reflect.TypeOf((*function.Enum)(nil)).Elem()

// LiteralRule Literal[...] 参数使用单选框
func LiteralRule(info *function.ParameterInfo) *Class {
	if info.Typename == function.TypeLiteral {
		return ExclusiveChoiceBox
	}
	return nil
}

// EnumRule 实现 function.Enum 的类型使用单选框
func EnumRule(info *function.ParameterInfo) *Class {
	if isEnum(info.Type) {
		return ExclusiveChoiceBox
	}
	return nil
}

// OptionalRule Optional[T] 与 Union[T, None] 使用 T 的控件类
func OptionalRule(r *Registry) MappingRule {
	return func(info *function.ParameterInfo) *Class {
		inner, ok := OptionalInner(info)
		if !ok || inner.IsLiteral {
			return nil
		}
		return r.match(&function.ParameterInfo{
			Name:         info.Name,
			Kind:         info.Kind,
			DefaultValue: info.DefaultValue,
			Typename:     inner.Typename,
			TypeArgs:     inner.Args,
			Description:  info.Description,
		})
	}
}

// OptionalInner 如果参数是 Optional[T] 或 Union[T, None]，返回 T
func OptionalInner(info *function.ParameterInfo) (function.TypeArg, bool) {
	switch info.Typename {
	case function.TypeOptional:
		if len(info.TypeArgs) == 1 {
			return info.TypeArgs[0], true
		}
	case function.TypeUnion:
		var rest []function.TypeArg
		hasNone := false
		for _, arg := range info.TypeArgs {
			if isNoneArg(arg) {
				hasNone = true
				continue
			}
			rest = append(rest, arg)
		}
		if hasNone && len(rest) == 1 {
			return rest[0], true
		}
	}
	return function.TypeArg{}, false
}

func isNoneArg(arg function.TypeArg) bool {
	if arg.IsLiteral {
		return arg.Literal.IsNull()
	}
	return arg.Typename == "None" || arg.Typename == "NoneType"
}

func isEnum(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}

// choicesOf 从 Literal / Enum / Optional 参数中取出候选值
func choicesOf(info *function.ParameterInfo) []any {
	if info == nil {
		return nil
	}
	typename, args := info.Typename, info.TypeArgs
	if inner, ok := OptionalInner(info); ok {
		typename, args = inner.Typename, inner.Args
	}

	if typename != function.TypeLiteral && !isEnum(info.Type) {
		return nil
	}
	var choices []any
	for _, arg := range args {
		if arg.IsLiteral {
			choices = append(choices, arg.Literal.Interface())
		}
	}
	return choices
}
