package widget

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// LineEditConfig 单行文本配置
type LineEditConfig struct {
	BaseConfig `mapstructure:",squash"`

	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
	MaxLength   int    `mapstructure:"max_length" json:"max_length,omitempty" validate:"gte=0"`
	// Pattern 输入必须完整匹配的正则表达式
	Pattern string `mapstructure:"validator" json:"validator,omitempty"`
	Clear   bool   `mapstructure:"clear_button" json:"clear_button,omitempty"`
}

func (*LineEditConfig) TargetWidgetClass() *Class { return LineEdit }

// LineEditWidget 单行文本控件
type LineEditWidget struct {
	*baseWidget
}

func newLineEdit(parent any, name string, cfg Config) (ParameterWidget, error) {
	c, ok := cfg.(*LineEditConfig)
	if !ok {
		return nil, fmt.Errorf("line edit: unexpected config %T", cfg)
	}
	var pattern *regexp.Regexp
	if c.Pattern != "" {
		re, err := regexp.Compile(`^(?:` + c.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("line edit %q: invalid validator: %w", name, err)
		}
		pattern = re
	}

	base, err := newBaseWidget(parent, name, cfg, value.Str(""), func(v value.Value) (value.Value, error) {
		s, err := v.AsString()
		if err != nil {
			return v, err
		}
		if c.MaxLength > 0 && utf8.RuneCountInString(s) > c.MaxLength {
			return v, fmt.Errorf("text longer than %d characters", c.MaxLength)
		}
		if pattern != nil && !pattern.MatchString(s) {
			return v, fmt.Errorf("text does not match %s", c.Pattern)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &LineEditWidget{baseWidget: base}, nil
}

// SetText 文本原样使用
func (w *LineEditWidget) SetText(text string) error {
	return w.SetValue(value.Str(text))
}

// CheckBoxConfig 复选框配置
type CheckBoxConfig struct {
	BaseConfig `mapstructure:",squash"`

	Text string `mapstructure:"text" json:"text,omitempty"`
}

func (*CheckBoxConfig) TargetWidgetClass() *Class { return CheckBox }

// CheckBoxWidget 复选框
type CheckBoxWidget struct {
	*baseWidget
}

func newCheckBox(parent any, name string, cfg Config) (ParameterWidget, error) {
	base, err := newBaseWidget(parent, name, cfg, value.Bool(false), func(v value.Value) (value.Value, error) {
		b, err := v.AsBool()
		if err != nil {
			return v, err
		}
		return value.Bool(b), nil
	})
	if err != nil {
		return nil, err
	}
	return &CheckBoxWidget{baseWidget: base}, nil
}

// BytesEditConfig 字节串配置
type BytesEditConfig struct {
	BaseConfig `mapstructure:",squash"`

	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
}

func (*BytesEditConfig) TargetWidgetClass() *Class { return BytesEdit }

// BytesEditWidget 字节串控件，字符串按 UTF-8 编码
type BytesEditWidget struct {
	*baseWidget
}

func newBytesEdit(parent any, name string, cfg Config) (ParameterWidget, error) {
	base, err := newBaseWidget(parent, name, cfg, value.Bytes(nil), func(v value.Value) (value.Value, error) {
		if s, err := v.AsString(); err == nil {
			return value.Bytes([]byte(s)), nil
		}
		b, err := v.AsBytes()
		if err != nil {
			return v, err
		}
		return value.Bytes(b), nil
	})
	if err != nil {
		return nil, err
	}
	return &BytesEditWidget{baseWidget: base}, nil
}

// SetText 只有 b'...' 形式按字面量解析，其余文本直接编码
func (w *BytesEditWidget) SetText(text string) error {
	if v, err := value.ParseLiteral(text); err == nil && v.Kind() == value.KindBytes {
		return w.SetValue(v)
	}
	return w.SetValue(value.Str(text))
}
