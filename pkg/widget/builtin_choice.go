package widget

import (
	"fmt"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/value"
)

// ExclusiveChoiceBoxConfig 单选框配置
type ExclusiveChoiceBoxConfig struct {
	BaseConfig `mapstructure:",squash"`

	// Choices 候选值，为空时从 Literal / Enum 类型参数中获取
	Choices []any `mapstructure:"choices" json:"choices"`
	Columns int   `mapstructure:"columns" json:"columns" validate:"gte=1"`
}

func (*ExclusiveChoiceBoxConfig) TargetWidgetClass() *Class { return ExclusiveChoiceBox }

// choicePostProcess 补全候选值，没有默认值时选中第一项
func choicePostProcess(cfg Config, name string, info *function.ParameterInfo) error {
	markNullable(cfg, info)
	c, ok := cfg.(*ExclusiveChoiceBoxConfig)
	if !ok {
		return nil
	}
	if len(c.Choices) == 0 {
		c.Choices = choicesOf(info)
	}
	if len(c.Choices) == 0 {
		return fmt.Errorf("parameter %q: exclusive choice box requires choices", name)
	}
	if c.DefaultValue == nil && !c.Nullable {
		c.DefaultValue = c.Choices[0]
	}
	return nil
}

// ExclusiveChoiceBoxWidget 单选框，值必须是候选值之一
type ExclusiveChoiceBoxWidget struct {
	*baseWidget
	choices []value.Value
}

func newExclusiveChoiceBox(parent any, name string, cfg Config) (ParameterWidget, error) {
	c, ok := cfg.(*ExclusiveChoiceBoxConfig)
	if !ok {
		return nil, fmt.Errorf("exclusive choice box: unexpected config %T", cfg)
	}
	if len(c.Choices) == 0 {
		return nil, fmt.Errorf("exclusive choice box %q: no choices", name)
	}

	w := &ExclusiveChoiceBoxWidget{}
	for _, choice := range c.Choices {
		w.choices = append(w.choices, value.From(choice))
	}
	base, err := newBaseWidget(parent, name, cfg, w.choices[0], w.check)
	if err != nil {
		return nil, err
	}
	w.baseWidget = base
	return w, nil
}

func (w *ExclusiveChoiceBoxWidget) check(v value.Value) (value.Value, error) {
	for _, choice := range w.choices {
		if choice.Equal(v) {
			return choice, nil
		}
	}
	return v, fmt.Errorf("%s is not one of the choices", v.Repr())
}

// Choices 候选值
func (w *ExclusiveChoiceBoxWidget) Choices() []value.Value {
	return append([]value.Value(nil), w.choices...)
}

// SetText 优先按候选值的显示文本匹配
func (w *ExclusiveChoiceBoxWidget) SetText(text string) error {
	for _, choice := range w.choices {
		if choice.String() == text {
			return w.SetValue(choice)
		}
	}
	return w.baseWidget.SetText(text)
}
