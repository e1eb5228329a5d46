// Package function 提供函数描述符、参数模型以及从描述符到 FnInfo 的解析
package function

import (
	"context"
	"reflect"
)

// CallFunc 被包装的用户函数
// ctx 在运行期间携带 UI 桥接与取消标志，args 为从表单收集的参数
type CallFunc func(ctx context.Context, args *Arguments) (any, error)

// ParamKind 形参种类
type ParamKind int

const (
	// PositionalOrKeyword 普通参数
	PositionalOrKeyword ParamKind = iota
	// KeywordOnly 仅关键字参数
	KeywordOnly
	// PositionalOnly 仅位置参数，不受支持
	PositionalOnly
	// VarPositional 可变位置参数，映射为 list
	VarPositional
	// VarKeyword 可变关键字参数，映射为 dict
	VarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case PositionalOrKeyword:
		return "POSITIONAL_OR_KEYWORD"
	case KeywordOnly:
		return "KEYWORD_ONLY"
	case PositionalOnly:
		return "POSITIONAL_ONLY"
	case VarPositional:
		return "VAR_POSITIONAL"
	case VarKeyword:
		return "VAR_KEYWORD"
	}
	return "UNKNOWN"
}

// ParamSpec 描述符中的单个形参
type ParamSpec struct {
	Name string
	Kind ParamKind

	// Annotation 类型注解：reflect.Type、TypeExpr、字符串或 nil
	Annotation any

	// Default 默认值，仅当 HasDefault 为 true 时有效
	Default    any
	HasDefault bool

	// Description 当文档注释没有描述该参数时使用
	Description string
}

// FnDescriptor 显式的函数描述
// 替代运行时反射：由注册方手写，或通过 DescriptorFromStruct 从参数结构体生成
type FnDescriptor struct {
	Name string

	// Doc 文档注释，可以包含 @params ... @end 元数据块
	Doc string

	// Metadata 与元数据块相同格式的 TOML，单独传入
	Metadata string

	Params []ParamSpec

	// ExcludeSelf 为 true 时忽略名为 self 的首个参数
	ExcludeSelf bool

	Call CallFunc
}

// unsetType 未设置哨兵的类型
type unsetType struct{}

func (unsetType) String() string { return "UNSET" }

// Unset 表示参数没有默认值
var Unset any = unsetType{}

// IsUnset 判断值是否为 Unset 哨兵
func IsUnset(v any) bool {
	_, ok := v.(unsetType)
	return ok
}

// ParameterInfo 单个参数的解析结果
type ParameterInfo struct {
	Name         string
	Kind         ParamKind
	DefaultValue any
	Type         reflect.Type
	Typename     string
	TypeArgs     []TypeArg
	Description  string
}

// HasDefault 参数是否有默认值
func (p *ParameterInfo) HasDefault() bool {
	return !IsUnset(p.DefaultValue)
}

// ParameterMap 保持声明顺序的参数表
type ParameterMap struct {
	names []string
	infos map[string]*ParameterInfo
}

// NewParameterMap 创建空参数表
func NewParameterMap() *ParameterMap {
	return &ParameterMap{infos: make(map[string]*ParameterInfo)}
}

func (m *ParameterMap) add(info *ParameterInfo) {
	m.names = append(m.names, info.Name)
	m.infos[info.Name] = info
}

// Names 按声明顺序返回参数名
func (m *ParameterMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Get 获取参数信息
func (m *ParameterMap) Get(name string) (*ParameterInfo, bool) {
	info, ok := m.infos[name]
	return info, ok
}

// Len 参数个数
func (m *ParameterMap) Len() int {
	return len(m.names)
}

// DocumentFormat 文档格式
type DocumentFormat string

const (
	FormatMarkdown  DocumentFormat = "markdown"
	FormatHTML      DocumentFormat = "html"
	FormatPlainText DocumentFormat = "plaintext"
)

// Valid 格式是否受支持
func (f DocumentFormat) Valid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatPlainText:
		return true
	}
	return false
}

// FnInfo 函数元信息
// 注册时创建一次，之后只读
type FnInfo struct {
	Fn             CallFunc
	Name           string
	DisplayName    string
	Group          string
	Icon           any
	Document       string
	DocumentFormat DocumentFormat
	Parameters     *ParameterMap
	Cancelable     bool

	// Executor 可选的自定义执行器工厂
	Executor ExecutorFactory
}
