package bridge

import (
	"fmt"
	"sort"
	"sync"
)

// DialogFactory 在 UI 线程中创建并运行自定义对话框，返回对话框的结果
type DialogFactory func(parent any, options map[string]any) (any, error)

// AlreadyRegisteredError 对话框重复注册
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("dialog already registered: %s", e.Name)
}

// NotRegisteredError 对话框未注册
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("dialog not registered: %s", e.Name)
}

// DialogRegistry 自定义对话框注册表
// 线程安全，支持并发读写
type DialogRegistry struct {
	mu        sync.RWMutex
	factories map[string]DialogFactory
}

// NewDialogRegistry 创建空注册表
func NewDialogRegistry() *DialogRegistry {
	return &DialogRegistry{factories: make(map[string]DialogFactory)}
}

// Register 注册对话框，同名已存在且 replace 为 false 时失败
func (r *DialogRegistry) Register(name string, factory DialogFactory, replace bool) error {
	if name == "" || factory == nil {
		return fmt.Errorf("register dialog: name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists && !replace {
		return &AlreadyRegisteredError{Name: name}
	}
	r.factories[name] = factory
	return nil
}

// Unregister 注销对话框
func (r *DialogRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return &NotRegisteredError{Name: name}
	}
	delete(r.factories, name)
	return nil
}

// Get 获取对话框工厂
func (r *DialogRegistry) Get(name string) (DialogFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	return f, nil
}

// Names 按名称排序返回已注册的对话框
func (r *DialogRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
