package widget

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/KodaTao/FormChassis/pkg/function"
)

var validate = validator.New()

// Materialize 用选项构造控件类的配置实例
// 配置结构体不认识的键进入 BaseConfig.Extra
func (c *Class) Materialize(options map[string]any) (Config, error) {
	if c.NewConfig == nil {
		return nil, fmt.Errorf("widget class %s has no config constructor", c.Name)
	}
	cfg := c.NewConfig()

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		Squash:           true,
		Metadata:         &md,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("widget class %s: %w", c.Name, err)
	}

	if len(md.Unused) > 0 {
		base := cfg.Base()
		if base.Extra == nil {
			base.Extra = make(map[string]any, len(md.Unused))
		}
		sort.Strings(md.Unused)
		for _, key := range md.Unused {
			base.Extra[key] = options[key]
		}
	}
	return cfg, nil
}

// Validate 按结构体 validate tag 校验配置
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid %T: %w", cfg, err)
	}
	return nil
}

// markNullable Optional 参数的控件接受 None
func markNullable(cfg Config, info *function.ParameterInfo) {
	if info == nil {
		return
	}
	if _, ok := OptionalInner(info); ok {
		cfg.Base().Nullable = true
		return
	}
	if info.HasDefault() && info.DefaultValue == nil {
		cfg.Base().Nullable = true
	}
}

// OptionsOf 把配置实例还原为选项表，Extra 中的键一并展开
func OptionsOf(cfg Config) (Options, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(cfg, &out); err != nil {
		return nil, fmt.Errorf("encode %T: %w", cfg, err)
	}
	for k, v := range cfg.Base().Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out, nil
}
