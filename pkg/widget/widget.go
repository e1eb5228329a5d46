// Package widget 提供参数控件的能力定义、控件类注册表、类型映射规则与配置合并
//
// 这里的控件是无界面的值模型：负责保存与校验参数值，具体的绘制交给界面工具包
package widget

import (
	"fmt"
	"reflect"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/value"
)

// ParameterWidget 参数控件能力
// SetValue / GetValue 可以返回 *function.ParameterError
type ParameterWidget interface {
	ParameterName() string
	SetValue(v value.Value) error
	GetValue() (value.Value, error)

	// OnParameterError 参数错误的视觉反馈
	OnParameterError(parameterName, message string)
	OnClearParameterError(parameterName string)

	DefaultValue() any
	Label() string
	Description() string
	DefaultValueDescription() string
	Group() string
}

// TextSetter 可以从用户输入的文本赋值的控件
// 控制台界面和命令行参数通过它填充控件
type TextSetter interface {
	SetText(text string) error
}

// ValueRestorer 不经校验恢复之前读出的值，批量赋值失败时回滚用
type ValueRestorer interface {
	RestoreValue(v value.Value)
}

// Config 控件配置能力
type Config interface {
	Base() *BaseConfig
	TargetWidgetClass() *Class
}

// BaseConfig 所有控件配置的公共部分
type BaseConfig struct {
	DefaultValue            any    `mapstructure:"default_value" json:"default_value"`
	Label                   string `mapstructure:"label" json:"label"`
	Description             string `mapstructure:"description" json:"description"`
	DefaultValueDescription string `mapstructure:"default_value_description" json:"default_value_description,omitempty"`
	Group                   string `mapstructure:"group" json:"group,omitempty"`
	Stylesheet              string `mapstructure:"stylesheet" json:"stylesheet,omitempty"`

	// Nullable 为 true 时控件接受 None，Optional 参数自动设置
	Nullable bool `mapstructure:"nullable" json:"nullable,omitempty"`

	// Extra 控件不认识的选项，原样保留给界面工具包
	Extra map[string]any `mapstructure:"-" json:"extra,omitempty"`
}

// Base 实现 Config
func (b *BaseConfig) Base() *BaseConfig {
	return b
}

// Class 控件类
type Class struct {
	Name string

	// NewConfig 返回填好默认值的配置实例
	NewConfig func() Config

	// New 创建控件，parent 由界面工具包决定
	New func(parent any, parameterName string, cfg Config) (ParameterWidget, error)

	// PostProcess 可选，根据参数信息补全配置
	PostProcess func(cfg Config, parameterName string, info *function.ParameterInfo) error
}

func (c *Class) String() string {
	return c.Name
}

// Accepts 配置是否属于该控件类的配置类型
func (c *Class) Accepts(cfg Config) bool {
	if c == nil || cfg == nil || c.NewConfig == nil {
		return false
	}
	return reflect.TypeOf(c.NewConfig()) == reflect.TypeOf(cfg)
}

// Create 创建控件并检查配置类型
func (c *Class) Create(parent any, parameterName string, cfg Config) (ParameterWidget, error) {
	if !c.Accepts(cfg) {
		return nil, fmt.Errorf("widget class %s does not accept config %T", c.Name, cfg)
	}
	return c.New(parent, parameterName, cfg)
}

// Entry ConfigMap 中的一项
type Entry struct {
	Class  *Class
	Config Config
}

// ConfigMap 保持参数顺序的 参数名 → (控件类, 配置)
type ConfigMap struct {
	names   []string
	entries map[string]Entry
}

// NewConfigMap 创建空表
func NewConfigMap() *ConfigMap {
	return &ConfigMap{entries: make(map[string]Entry)}
}

// Add 追加一项，类与配置不兼容时失败
func (m *ConfigMap) Add(name string, class *Class, cfg Config) error {
	if !class.Accepts(cfg) {
		return fmt.Errorf("parameter %q: widget class %s does not accept config %T", name, class.Name, cfg)
	}
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = Entry{Class: class, Config: cfg}
	return nil
}

// Get 获取参数对应的控件类与配置
func (m *ConfigMap) Get(name string) (Entry, bool) {
	e, ok := m.entries[name]
	return e, ok
}

// Names 按参数顺序返回参数名
func (m *ConfigMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Len 项数
func (m *ConfigMap) Len() int {
	return len(m.names)
}
