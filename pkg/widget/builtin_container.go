package widget

import (
	"fmt"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// ListEditConfig 列表配置，同时用于 tuple 与 set
type ListEditConfig struct {
	BaseConfig `mapstructure:",squash"`

	MinItems int `mapstructure:"min_items" json:"min_items,omitempty" validate:"gte=0"`
	MaxItems int `mapstructure:"max_items" json:"max_items,omitempty" validate:"gte=0"`
}

func (*ListEditConfig) TargetWidgetClass() *Class { return ListEdit }

// ListEditWidget 列表控件
type ListEditWidget struct {
	*baseWidget
}

func newListEdit(parent any, name string, cfg Config) (ParameterWidget, error) {
	c, ok := cfg.(*ListEditConfig)
	if !ok {
		return nil, fmt.Errorf("list edit: unexpected config %T", cfg)
	}
	base, err := newBaseWidget(parent, name, cfg, value.List(), func(v value.Value) (value.Value, error) {
		switch v.Kind() {
		case value.KindList, value.KindTuple, value.KindSet:
		default:
			return v, fmt.Errorf("expected a list, got %s", v.Kind())
		}
		if v.Len() < c.MinItems {
			return v, fmt.Errorf("at least %d items required", c.MinItems)
		}
		if c.MaxItems > 0 && v.Len() > c.MaxItems {
			return v, fmt.Errorf("at most %d items allowed", c.MaxItems)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &ListEditWidget{baseWidget: base}, nil
}

// DictEditConfig 字典配置
type DictEditConfig struct {
	BaseConfig `mapstructure:",squash"`
}

func (*DictEditConfig) TargetWidgetClass() *Class { return DictEdit }

// DictEditWidget 字典控件
type DictEditWidget struct {
	*baseWidget
}

func newDictEdit(parent any, name string, cfg Config) (ParameterWidget, error) {
	base, err := newBaseWidget(parent, name, cfg, value.Map(), func(v value.Value) (value.Value, error) {
		if v.Kind() != value.KindMap {
			return v, fmt.Errorf("expected a dict, got %s", v.Kind())
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &DictEditWidget{baseWidget: base}, nil
}

// AnyEditConfig 任意值配置
type AnyEditConfig struct {
	BaseConfig `mapstructure:",squash"`
}

func (*AnyEditConfig) TargetWidgetClass() *Class { return AnyEdit }

// AnyEditWidget 任意值控件，接受任何字面量
type AnyEditWidget struct {
	*baseWidget
}

func newAnyEdit(parent any, name string, cfg Config) (ParameterWidget, error) {
	base, err := newBaseWidget(parent, name, cfg, value.Null(), func(v value.Value) (value.Value, error) {
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return &AnyEditWidget{baseWidget: base}, nil
}
