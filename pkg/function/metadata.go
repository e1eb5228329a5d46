package function

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/KodaTao/FormChassis/pkg/observability"
)

// 元数据块中的保留键
const (
	KeyWidgetClass             = "widget_class"
	KeyDefaultValue            = "default_value"
	KeyLabel                   = "label"
	KeyDescription             = "description"
	KeyDefaultValueDescription = "default_value_description"
	KeyGroup                   = "group"
	KeyStylesheet              = "stylesheet"
)

// Metadata 参数名 → 控件选项
type Metadata map[string]map[string]any

var metadataBlockRe = regexp.MustCompile(`(?ms)^[ \t]*@(?:widgets|parameters|params)[ \t]*\r?$(.*?)^[ \t]*@end[ \t]*\r?$\n?`)

// ExtractMetadata 从文档注释中取出元数据块
// 返回去掉元数据块的文档与块内的原始 TOML，没有块时 found 为 false
func ExtractMetadata(doc string) (stripped, block string, found bool) {
	loc := metadataBlockRe.FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, "", false
	}
	block = doc[loc[2]:loc[3]]
	stripped = doc[:loc[0]] + doc[loc[1]:]
	return stripped, block, true
}

// ParseMetadata 把 TOML 文本解析为 Metadata
// 每个顶层表对应一个参数，非表的顶层键会被拒绝
func ParseMetadata(text string) (Metadata, error) {
	if strings.TrimSpace(text) == "" {
		return Metadata{}, nil
	}

	var raw map[string]any
	if err := toml.Unmarshal([]byte(dedentBlock(text)), &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	md := make(Metadata, len(raw))
	for param, v := range raw {
		options, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse metadata: %q must be a table, got %T", param, v)
		}
		md[param] = options
	}
	return md, nil
}

// Merge 按键合并，other 中的选项覆盖 m 中的同名选项
func (m Metadata) Merge(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	for param, options := range m {
		out[param] = copyOptions(options)
	}
	for param, options := range other {
		dst, ok := out[param]
		if !ok {
			dst = make(map[string]any, len(options))
			out[param] = dst
		}
		for k, v := range options {
			dst[k] = v
		}
	}
	return out
}

// Options 返回参数的选项，不存在时返回 nil
func (m Metadata) Options(param string) map[string]any {
	if m == nil {
		return nil
	}
	return m[param]
}

func copyOptions(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// resolveMetadata 取出文档中的元数据块并与单独传入的元数据合并
// 解析失败只记录警告，对应的来源视为不存在
func resolveMetadata(fnName, doc, extra string) (string, Metadata) {
	stripped, block, found := ExtractMetadata(doc)

	md := Metadata{}
	if found {
		parsed, err := ParseMetadata(block)
		if err != nil {
			observability.Warn("Ignoring malformed metadata block",
				"function", fnName,
				"error", err,
			)
		} else {
			md = parsed
		}
	}

	if strings.TrimSpace(extra) != "" {
		parsed, err := ParseMetadata(extra)
		if err != nil {
			observability.Warn("Ignoring malformed metadata argument",
				"function", fnName,
				"error", err,
			)
		} else {
			md = md.Merge(parsed)
		}
	}
	return stripped, md
}

// dedentBlock 去掉元数据块的公共缩进，文档注释里的块通常整体缩进
func dedentBlock(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		n := len(line) - len(trimmed)
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
