package chassis

import (
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/widget"
	"github.com/KodaTao/FormChassis/pkg/window"
)

// ParameterDescriptor 表单中的单个参数
type ParameterDescriptor struct {
	Name        string         `json:"name"`
	Typename    string         `json:"typename"`
	Type        string         `json:"type"`
	WidgetClass string         `json:"widget_class"`
	Group       string         `json:"group,omitempty"`
	Options     widget.Options `json:"options"`
}

// FunctionDescriptor 函数表单的只读描述，供 HTTP 接口与命令行使用
type FunctionDescriptor struct {
	Name           string                  `json:"name"`
	DisplayName    string                  `json:"display_name"`
	Group          string                  `json:"group,omitempty"`
	Document       string                  `json:"document,omitempty"`
	DocumentFormat function.DocumentFormat `json:"document_format"`
	Cancelable     bool                    `json:"cancelable"`
	Parameters     []ParameterDescriptor   `json:"parameters"`
}

// Describe 生成函数包的描述
func Describe(b *window.FnBundle) (*FunctionDescriptor, error) {
	info := b.FnInfo
	d := &FunctionDescriptor{
		Name:           info.Name,
		DisplayName:    info.DisplayName,
		Group:          info.Group,
		Document:       info.Document,
		DocumentFormat: info.DocumentFormat,
		Cancelable:     info.Cancelable,
		Parameters:     []ParameterDescriptor{},
	}
	if b.WidgetConfigs == nil {
		return d, nil
	}

	for _, name := range b.WidgetConfigs.Names() {
		entry, _ := b.WidgetConfigs.Get(name)
		opts, err := widget.OptionsOf(entry.Config)
		if err != nil {
			return nil, err
		}
		p := ParameterDescriptor{
			Name:        name,
			WidgetClass: entry.Class.Name,
			Group:       entry.Config.Base().Group,
			Options:     opts,
		}
		if pi, ok := info.Parameters.Get(name); ok {
			p.Typename = pi.Typename
			p.Type = function.ResolvedType{Typename: pi.Typename, Args: pi.TypeArgs}.String()
		}
		d.Parameters = append(d.Parameters, p)
	}
	return d, nil
}
