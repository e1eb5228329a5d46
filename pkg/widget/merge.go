package widget

import (
	"fmt"

	"github.com/KodaTao/FormChassis/pkg/function"
)

// Options 用户提供的控件选项，叠加在自动生成的选项之上
type Options map[string]any

// Merge 为每个参数确定控件类与配置
//
// userConfigs 的值可以是 Config 实例（直接采用）或 Options / map[string]any（叠加后构造配置）
// 优先级：用户配置 > 文档注释元数据 > 函数签名
func Merge(registry *Registry, params *function.ParameterMap, metadata function.Metadata, userConfigs map[string]any) (*ConfigMap, error) {
	out := NewConfigMap()
	if params == nil {
		return out, nil
	}

	for _, name := range params.Names() {
		info, _ := params.Get(name)
		class, cfg, err := mergeParameter(registry, info, metadata.Options(name), userConfigs[name])
		if err != nil {
			return nil, err
		}
		if err := out.Add(name, class, cfg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func mergeParameter(registry *Registry, info *function.ParameterInfo, md map[string]any, user any) (*Class, Config, error) {
	// 用户提供的配置实例优先，只补全未设置的字段
	if cfg, ok := user.(Config); ok {
		class := cfg.TargetWidgetClass()
		if class == nil {
			return nil, nil, fmt.Errorf("parameter %q: config %T has no widget class", info.Name, cfg)
		}
		base := cfg.Base()
		if base.Label == "" {
			base.Label = info.Name
		}
		if base.Description == "" {
			base.Description = info.Description
		}
		if base.DefaultValue == nil && info.HasDefault() {
			base.DefaultValue = info.DefaultValue
		}
		return finish(class, cfg, info)
	}

	options := make(map[string]any, len(md)+3)
	if info.HasDefault() {
		options[function.KeyDefaultValue] = info.DefaultValue
	}
	options[function.KeyLabel] = info.Name
	options[function.KeyDescription] = info.Description

	explicit := ""
	for k, v := range md {
		if k == function.KeyWidgetClass {
			explicit, _ = v.(string)
			continue
		}
		options[k] = v
	}

	var userOptions map[string]any
	switch u := user.(type) {
	case nil:
	case Options:
		userOptions = u
	case map[string]any:
		userOptions = u
	default:
		return nil, nil, fmt.Errorf("parameter %q: unsupported widget config %T", info.Name, user)
	}
	if name, ok := userOptions[function.KeyWidgetClass].(string); ok && name != "" {
		explicit = name
	}

	class, err := registry.Resolve(info.Name, info, explicit)
	if err != nil {
		return nil, nil, err
	}
	overlay(options, userOptions)

	cfg, err := class.Materialize(options)
	if err != nil {
		return nil, nil, fmt.Errorf("parameter %q: %w", info.Name, err)
	}
	return finish(class, cfg, info)
}

func finish(class *Class, cfg Config, info *function.ParameterInfo) (*Class, Config, error) {
	if class.PostProcess != nil {
		if err := class.PostProcess(cfg, info.Name, info); err != nil {
			return nil, nil, err
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("parameter %q: %w", info.Name, err)
	}
	return class, cfg, nil
}

func overlay(dst, src map[string]any) {
	for k, v := range src {
		if k == function.KeyWidgetClass {
			continue
		}
		dst[k] = v
	}
}
