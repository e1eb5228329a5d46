package widget

import (
	"fmt"
	"sync"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

// AlreadyRegisteredError 重复注册
type AlreadyRegisteredError struct {
	// Kind typename 或 class
	Kind string
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("widget %s already registered: %s", e.Kind, e.Name)
}

// NotRegisteredError 按名称查找控件类失败
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("widget class not registered: %s", e.Name)
}

// UnresolvedWidgetClassError 参数找不到可用的控件类
type UnresolvedWidgetClassError struct {
	ParameterName string
	Typename      string
}

func (e *UnresolvedWidgetClassError) Error() string {
	return fmt.Sprintf("cannot resolve widget class for parameter %q of type %s", e.ParameterName, e.Typename)
}

// MappingRule 类型映射规则，不匹配时返回 nil
type MappingRule func(info *function.ParameterInfo) *Class

// Registry 控件类注册表
// 线程安全，支持并发读写
type Registry struct {
	mu         sync.RWMutex
	byTypename map[string]*Class
	byName     map[string]*Class
	rules      []MappingRule
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		byTypename: make(map[string]*Class),
		byName:     make(map[string]*Class),
	}
}

// NewDefaultRegistry 创建包含内置控件类与映射规则的注册表
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, m := range builtinMappings() {
		for _, typename := range m.typenames {
			// 新注册表不会冲突
			_ = r.Register(typename, m.class, false)
		}
	}
	for _, c := range BuiltinClasses() {
		_ = r.RegisterClass(c, true)
	}
	r.AddRule(LiteralRule)
	r.AddRule(EnumRule)
	r.AddRule(OptionalRule(r))
	return r
}

// Register 把类型名映射到控件类，同时按类名建立索引
func (r *Registry) Register(typename string, class *Class, replace bool) error {
	if typename == "" || class == nil || class.Name == "" {
		return fmt.Errorf("register widget class: typename and class name are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTypename[typename]; exists && !replace {
		return &AlreadyRegisteredError{Kind: "typename", Name: typename}
	}
	if existing, exists := r.byName[class.Name]; exists && existing != class && !replace {
		return &AlreadyRegisteredError{Kind: "class", Name: class.Name}
	}

	r.byTypename[typename] = class
	r.byName[class.Name] = class
	observability.Debug("Widget class registered", "typename", typename, "class", class.Name)
	return nil
}

// RegisterClass 只按类名注册，供元数据中的 widget_class 使用
func (r *Registry) RegisterClass(class *Class, replace bool) error {
	if class == nil || class.Name == "" {
		return fmt.Errorf("register widget class: class name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.byName[class.Name]; exists && existing != class && !replace {
		return &AlreadyRegisteredError{Kind: "class", Name: class.Name}
	}
	r.byName[class.Name] = class
	return nil
}

// Unregister 删除类型名映射
func (r *Registry) Unregister(typename string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byTypename[typename]; ok {
		delete(r.byTypename, typename)
		return true
	}
	return false
}

// AddRule 追加映射规则，按添加顺序生效
func (r *Registry) AddRule(rule MappingRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule)
}

// ClassByName 按类名查找
func (r *Registry) ClassByName(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	return c, nil
}

// ClassFor 按类型名查找
func (r *Registry) ClassFor(typename string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byTypename[typename]
	return c, ok
}

// Count 已映射的类型名数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byTypename)
}

// Resolve 为参数选择控件类
// 顺序：显式类名 → 类型名映射 → 映射规则
func (r *Registry) Resolve(parameterName string, info *function.ParameterInfo, explicitName string) (*Class, error) {
	if explicitName != "" {
		c, err := r.ClassByName(explicitName)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", parameterName, err)
		}
		return c, nil
	}

	if c := r.match(info); c != nil {
		return c, nil
	}
	return nil, &UnresolvedWidgetClassError{ParameterName: parameterName, Typename: info.Typename}
}

// match 类型名映射与规则，规则在锁外调用以便递归解析
func (r *Registry) match(info *function.ParameterInfo) *Class {
	r.mu.RLock()
	c, ok := r.byTypename[info.Typename]
	rules := append([]MappingRule(nil), r.rules...)
	r.mu.RUnlock()

	if ok {
		return c
	}
	for _, rule := range rules {
		if c := rule(info); c != nil {
			return c
		}
	}
	return nil
}

// DefaultRegistry 默认的全局注册表
var DefaultRegistry = NewDefaultRegistry()

// Register 向默认注册表注册控件类
func Register(typename string, class *Class, replace bool) error {
	return DefaultRegistry.Register(typename, class, replace)
}

// AddRule 向默认注册表追加映射规则
func AddRule(rule MappingRule) {
	DefaultRegistry.AddRule(rule)
}
