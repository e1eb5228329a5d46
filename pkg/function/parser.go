package function

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/docstring"
	"github.com/KodaTao/FormChassis/pkg/value"
)

type parseOptions struct {
	displayName    string
	group          string
	icon           any
	document       *string
	documentFormat DocumentFormat
	cancelable     bool
	executor       ExecutorFactory
}

// ParseOption 解析选项
type ParseOption func(*parseOptions)

// WithDisplayName 设置显示名称，默认为函数名
func WithDisplayName(name string) ParseOption {
	return func(o *parseOptions) { o.displayName = name }
}

// WithGroup 设置分组
func WithGroup(group string) ParseOption {
	return func(o *parseOptions) { o.group = group }
}

// WithIcon 设置图标
func WithIcon(icon any) ParseOption {
	return func(o *parseOptions) { o.icon = icon }
}

// WithDocument 使用给定文档替代从文档注释生成的文档
func WithDocument(document string) ParseOption {
	return func(o *parseOptions) { o.document = &document }
}

// WithDocumentFormat 设置文档格式
func WithDocumentFormat(format DocumentFormat) ParseOption {
	return func(o *parseOptions) { o.documentFormat = format }
}

// WithCancelable 标记函数支持协作式取消
func WithCancelable(cancelable bool) ParseOption {
	return func(o *parseOptions) { o.cancelable = cancelable }
}

// WithExecutor 使用自定义执行器
func WithExecutor(factory ExecutorFactory) ParseOption {
	return func(o *parseOptions) { o.executor = factory }
}

// Parse 把函数描述符解析为 FnInfo
// 同时返回文档注释中的元数据块与 desc.Metadata 合并后的结果
func Parse(desc *FnDescriptor, opts ...ParseOption) (*FnInfo, Metadata, error) {
	if desc == nil {
		return nil, nil, ErrNilDescriptor
	}
	if desc.Name == "" {
		return nil, nil, ErrEmptyFunctionName
	}
	if desc.Call == nil {
		return nil, nil, fmt.Errorf("%s: %w", desc.Name, ErrNilCall)
	}

	o := parseOptions{documentFormat: FormatMarkdown}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.documentFormat.Valid() {
		return nil, nil, fmt.Errorf("%s: unsupported document format %q", desc.Name, o.documentFormat)
	}

	doc, md := resolveMetadata(desc.Name, desc.Doc, desc.Metadata)
	ds := docstring.Parse(doc)

	params := NewParameterMap()
	for i, spec := range desc.Params {
		if i == 0 && desc.ExcludeSelf && spec.Name == "self" {
			continue
		}
		info, err := parseParameter(desc.Name, spec, ds)
		if err != nil {
			return nil, nil, err
		}
		if _, exists := params.Get(info.Name); exists {
			return nil, nil, fmt.Errorf("%s: %w: %s", desc.Name, ErrDuplicateParameter, info.Name)
		}
		params.add(info)
	}

	info := &FnInfo{
		Fn:             desc.Call,
		Name:           desc.Name,
		DisplayName:    o.displayName,
		Group:          o.group,
		Icon:           o.icon,
		DocumentFormat: o.documentFormat,
		Parameters:     params,
		Cancelable:     o.cancelable,
		Executor:       o.executor,
	}
	if info.DisplayName == "" {
		info.DisplayName = desc.Name
	}
	if o.document != nil {
		info.Document = *o.document
	} else {
		info.Document = buildDocument(doc, ds)
	}
	return info, md, nil
}

func parseParameter(fnName string, spec ParamSpec, ds *docstring.Docstring) (*ParameterInfo, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%s: %w", fnName, ErrEmptyParameterName)
	}
	if spec.Kind == PositionalOnly {
		return nil, &InvalidParameterKindError{Function: fnName, Parameter: spec.Name, Kind: spec.Kind}
	}
	if spec.Kind < PositionalOrKeyword || spec.Kind > VarKeyword {
		return nil, &InvalidParameterKindError{Function: fnName, Parameter: spec.Name, Kind: spec.Kind}
	}

	info := &ParameterInfo{
		Name:         spec.Name,
		Kind:         spec.Kind,
		DefaultValue: Unset,
	}

	// 默认值：签名 → 文档注释 → Unset
	switch {
	case spec.HasDefault:
		info.DefaultValue = spec.Default
	default:
		if text, ok := ds.ParameterDefault(spec.Name); ok {
			info.DefaultValue = value.ParseLiteralOr(text).Interface()
		}
	}

	if err := resolveParameterType(fnName, spec, ds, info); err != nil {
		return nil, err
	}

	if d, ok := ds.ParameterDescription(spec.Name); ok {
		info.Description = d
	} else {
		info.Description = spec.Description
	}
	return info, nil
}

func resolveParameterType(fnName string, spec ParamSpec, ds *docstring.Docstring, info *ParameterInfo) error {
	switch spec.Kind {
	case VarPositional:
		info.Typename, info.Type = TypeList, goTypeHint[TypeList]
		return nil
	case VarKeyword:
		info.Typename, info.Type = TypeDict, goTypeHint[TypeDict]
		return nil
	}

	if spec.Annotation != nil {
		r, err := ResolveType(spec.Annotation)
		if err != nil {
			return fmt.Errorf("%s: parameter %q: %w", fnName, spec.Name, err)
		}
		applyResolved(info, r)
		return nil
	}

	if tn, ok := ds.ParameterTypename(spec.Name); ok {
		r, err := parseAnnotation(tn)
		if err != nil {
			r = ResolvedType{Typename: strings.TrimSpace(tn)}
		}
		applyResolved(info, r)
		info.Type = nil
		return nil
	}

	if info.HasDefault() && info.DefaultValue != nil {
		applyResolved(info, resolveReflect(reflect.TypeOf(info.DefaultValue)))
		return nil
	}

	info.Typename, info.Type = TypeAny, anyType
	return nil
}

func applyResolved(info *ParameterInfo, r ResolvedType) {
	info.Typename = r.Typename
	info.TypeArgs = r.Args
	info.Type = r.Type
	if info.Typename == "" {
		info.Typename = TypeAny
	}
}

// buildDocument 生成 "{short}\n\n{long}"，两者都为空时使用整理后的文档注释
func buildDocument(doc string, ds *docstring.Docstring) string {
	short, _ := ds.ShortDescription()
	long, _ := ds.LongDescription()
	document := strings.TrimSpace(short + "\n\n" + long)
	if document == "" {
		return docstring.Clean(doc)
	}
	return document
}
