package function

import (
	"reflect"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// DescriptorFromStruct 从参数结构体生成函数描述符
// params 可以是结构体值、结构体指针或其 reflect.Type
// 字段按声明顺序成为参数，支持以下 tag：
//
//	json     参数名，缺省为字段名的下划线形式
//	desc     参数描述
//	default  默认值，按字面量解析
//	type     类型注解，覆盖字段的 Go 类型，例如 Literal['a', 'b']
func DescriptorFromStruct(name, doc string, params any, call CallFunc) (*FnDescriptor, error) {
	desc := &FnDescriptor{Name: name, Doc: doc, Call: call}
	if params == nil {
		return desc, nil
	}

	paramType, ok := params.(reflect.Type)
	if !ok {
		paramType = reflect.TypeOf(params)
	}

	// 如果是指针，获取元素类型
	if paramType.Kind() == reflect.Ptr {
		paramType = paramType.Elem()
	}

	// 只处理结构体类型
	if paramType.Kind() != reflect.Struct {
		return nil, &SchemaError{Message: "params must be a struct, got " + paramType.String()}
	}

	desc.Params = extractStructParams(paramType)
	return desc, nil
}

// extractStructParams 从结构体类型提取参数
func extractStructParams(t reflect.Type) []ParamSpec {
	var params []ParamSpec

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// 跳过嵌入字段（匿名字段）
		if field.Anonymous {
			// 递归处理嵌入的结构体
			if field.Type.Kind() == reflect.Struct {
				params = append(params, extractStructParams(field.Type)...)
			}
			continue
		}

		// 跳过非导出字段
		if field.PkgPath != "" || field.Tag.Get("json") == "-" {
			continue
		}

		spec := ParamSpec{
			Name:        getFieldName(field),
			Kind:        PositionalOrKeyword,
			Annotation:  field.Type,
			Description: field.Tag.Get("desc"),
		}
		if typeTag := field.Tag.Get("type"); typeTag != "" {
			spec.Annotation = typeTag
		}
		if defaultTag, ok := field.Tag.Lookup("default"); ok && !isRequired(field) {
			spec.Default = defaultFromTag(field.Type, defaultTag)
			spec.HasDefault = true
		}

		params = append(params, spec)
	}

	return params
}

// defaultFromTag 解析 default tag
// 字符串字段的未加引号文本按原样使用
func defaultFromTag(t reflect.Type, tag string) any {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	trimmed := strings.TrimSpace(tag)
	if t.Kind() == reflect.String && !isQuoted(trimmed) {
		return tag
	}
	return value.ParseLiteralOr(trimmed).Interface()
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0]
}

// getFieldName 获取字段名称
// 优先使用 json tag，否则使用字段名（转小写）
func getFieldName(field reflect.StructField) string {
	// 尝试 json tag
	jsonTag := field.Tag.Get("json")
	if jsonTag != "" && jsonTag != "-" {
		parts := strings.Split(jsonTag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}

	// 默认使用字段名（转小写下划线）
	return toSnakeCase(field.Name)
}

// isRequired 判断字段是否必填，必填字段忽略 default tag
func isRequired(field reflect.StructField) bool {
	// 检查 required tag
	requiredTag := field.Tag.Get("required")
	if requiredTag == "true" || requiredTag == "1" {
		return true
	}

	// 检查 validate tag (常见的验证库格式)
	return strings.Contains(field.Tag.Get("validate"), "required")
}

// toSnakeCase 将驼峰命名转换为下划线命名
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteByte(byte(r + 32)) // 转小写
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
