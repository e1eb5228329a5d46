package widget

import (
	"fmt"
	"math"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// IntSpinBoxConfig 整数输入框配置
type IntSpinBoxConfig struct {
	BaseConfig `mapstructure:",squash"`

	MinValue int64  `mapstructure:"min_value" json:"min_value"`
	MaxValue int64  `mapstructure:"max_value" json:"max_value" validate:"gtefield=MinValue"`
	Step     int64  `mapstructure:"step" json:"step" validate:"gt=0"`
	Prefix   string `mapstructure:"prefix" json:"prefix,omitempty"`
	Suffix   string `mapstructure:"suffix" json:"suffix,omitempty"`
}

func newIntSpinBoxConfig() *IntSpinBoxConfig {
	return &IntSpinBoxConfig{MinValue: math.MinInt32, MaxValue: math.MaxInt32, Step: 1}
}

func (*IntSpinBoxConfig) TargetWidgetClass() *Class { return IntSpinBox }

func (c *IntSpinBoxConfig) bounds() (int64, int64) { return c.MinValue, c.MaxValue }

// IntSliderConfig 整数滑块配置
type IntSliderConfig struct {
	BaseConfig `mapstructure:",squash"`

	MinValue     int64 `mapstructure:"min_value" json:"min_value"`
	MaxValue     int64 `mapstructure:"max_value" json:"max_value" validate:"gtefield=MinValue"`
	Step         int64 `mapstructure:"step" json:"step" validate:"gt=0"`
	ShowValue    bool  `mapstructure:"show_value_label" json:"show_value_label"`
	TickInterval int64 `mapstructure:"tick_interval" json:"tick_interval,omitempty" validate:"gte=0"`
}

func newIntSliderConfig() *IntSliderConfig {
	return &IntSliderConfig{MinValue: 0, MaxValue: 100, Step: 1, ShowValue: true}
}

func (*IntSliderConfig) TargetWidgetClass() *Class { return IntSlider }

func (c *IntSliderConfig) bounds() (int64, int64) { return c.MinValue, c.MaxValue }

type intBounded interface {
	Config
	bounds() (int64, int64)
}

// IntWidget 整数控件，IntSpinBox 与 IntSlider 共用
type IntWidget struct {
	*baseWidget
}

func newIntWidget(parent any, name string, cfg Config) (ParameterWidget, error) {
	c, ok := cfg.(intBounded)
	if !ok {
		return nil, fmt.Errorf("int widget: unexpected config %T", cfg)
	}
	lo, hi := c.bounds()
	zero := value.Int(0)
	if lo > 0 || hi < 0 {
		zero = value.Int(lo)
	}
	base, err := newBaseWidget(parent, name, cfg, zero, func(v value.Value) (value.Value, error) {
		i, err := v.AsInt()
		if err != nil {
			return v, err
		}
		if i < lo || i > hi {
			return v, fmt.Errorf("value %d out of range [%d, %d]", i, lo, hi)
		}
		return value.Int(i), nil
	})
	if err != nil {
		return nil, err
	}
	return &IntWidget{baseWidget: base}, nil
}

// FloatSpinBoxConfig 浮点输入框配置
type FloatSpinBoxConfig struct {
	BaseConfig `mapstructure:",squash"`

	MinValue float64 `mapstructure:"min_value" json:"min_value"`
	MaxValue float64 `mapstructure:"max_value" json:"max_value" validate:"gtefield=MinValue"`
	Step     float64 `mapstructure:"step" json:"step" validate:"gt=0"`
	Decimals int     `mapstructure:"decimals" json:"decimals" validate:"gte=0,lte=15"`
	Prefix   string  `mapstructure:"prefix" json:"prefix,omitempty"`
	Suffix   string  `mapstructure:"suffix" json:"suffix,omitempty"`
}

func newFloatSpinBoxConfig() *FloatSpinBoxConfig {
	return &FloatSpinBoxConfig{MinValue: math.MinInt32, MaxValue: math.MaxInt32, Step: 1, Decimals: 2}
}

func (*FloatSpinBoxConfig) TargetWidgetClass() *Class { return FloatSpinBox }

func (c *FloatSpinBoxConfig) bounds() (float64, float64) { return c.MinValue, c.MaxValue }

// FloatSliderConfig 浮点滑块配置
type FloatSliderConfig struct {
	BaseConfig `mapstructure:",squash"`

	MinValue  float64 `mapstructure:"min_value" json:"min_value"`
	MaxValue  float64 `mapstructure:"max_value" json:"max_value" validate:"gtefield=MinValue"`
	Decimals  int     `mapstructure:"decimals" json:"decimals" validate:"gte=0,lte=15"`
	ShowValue bool    `mapstructure:"show_value_label" json:"show_value_label"`
}

func newFloatSliderConfig() *FloatSliderConfig {
	return &FloatSliderConfig{MinValue: 0, MaxValue: 1, Decimals: 2, ShowValue: true}
}

func (*FloatSliderConfig) TargetWidgetClass() *Class { return FloatSlider }

func (c *FloatSliderConfig) bounds() (float64, float64) { return c.MinValue, c.MaxValue }

type floatBounded interface {
	Config
	bounds() (float64, float64)
}

// FloatWidget 浮点控件，FloatSpinBox 与 FloatSlider 共用
type FloatWidget struct {
	*baseWidget
}

func newFloatWidget(parent any, name string, cfg Config) (ParameterWidget, error) {
	c, ok := cfg.(floatBounded)
	if !ok {
		return nil, fmt.Errorf("float widget: unexpected config %T", cfg)
	}
	lo, hi := c.bounds()
	zero := value.Float(0)
	if lo > 0 || hi < 0 {
		zero = value.Float(lo)
	}
	base, err := newBaseWidget(parent, name, cfg, zero, func(v value.Value) (value.Value, error) {
		f, err := v.AsFloat()
		if err != nil {
			return v, err
		}
		if math.IsNaN(f) || f < lo || f > hi {
			return v, fmt.Errorf("value %g out of range [%g, %g]", f, lo, hi)
		}
		return value.Float(f), nil
	})
	if err != nil {
		return nil, err
	}
	return &FloatWidget{baseWidget: base}, nil
}
