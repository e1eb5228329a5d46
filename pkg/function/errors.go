package function

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	ErrNilDescriptor        = fmt.Errorf("function descriptor cannot be nil")
	ErrEmptyFunctionName    = fmt.Errorf("function name cannot be empty")
	ErrNilCall              = fmt.Errorf("function call cannot be nil")
	ErrEmptyParameterName   = fmt.Errorf("parameter name cannot be empty")
	ErrDuplicateParameter   = fmt.Errorf("duplicate parameter")
	ErrInvalidParameterKind = fmt.Errorf("invalid parameter kind")
	ErrUnknownParameter     = fmt.Errorf("unknown parameter")
	ErrInvalidTarget        = &SchemaError{Message: "target must be a non-nil pointer to struct"}
)

// ParameterError 参数值无效
// 由 Widget 的取值/赋值或用户函数返回，窗口据此高亮对应的输入控件
type ParameterError struct {
	ParameterName string
	Message       string
}

// NewParameterError 创建参数错误
func NewParameterError(name, message string) *ParameterError {
	return &ParameterError{ParameterName: name, Message: message}
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.ParameterName, e.Message)
}

// AsParameterError 从错误链中提取 ParameterError
func AsParameterError(err error) (*ParameterError, bool) {
	var pe *ParameterError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// InvalidParameterKindError 参数种类不受支持（仅位置参数）
type InvalidParameterKindError struct {
	Function  string
	Parameter string
	Kind      ParamKind
}

func (e *InvalidParameterKindError) Error() string {
	return fmt.Sprintf("%s: parameter %q has unsupported kind %s", e.Function, e.Parameter, e.Kind)
}

// Is 支持 errors.Is(err, ErrInvalidParameterKind)
func (e *InvalidParameterKindError) Is(target error) bool {
	return target == ErrInvalidParameterKind
}

// SchemaError 描述符或参数绑定相关错误
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}
