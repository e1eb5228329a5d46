package chassis

import (
	"errors"
	"fmt"
	"sync"

	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/window"
)

// 错误定义
var (
	ErrNilBundle         = errors.New("function bundle cannot be nil")
	ErrEmptyFunctionName = errors.New("function name cannot be empty")
	ErrAlreadyRegistered = errors.New("function already registered")
	ErrNotRegistered     = errors.New("function not registered")
	ErrNoFunctions       = errors.New("no function registered")
)

// BundleStore 函数包注册表
// 线程安全，保持注册顺序
type BundleStore struct {
	mu      sync.RWMutex
	names   []string
	bundles map[string]*window.FnBundle
}

// NewBundleStore 创建新的注册表
func NewBundleStore() *BundleStore {
	return &BundleStore{
		bundles: make(map[string]*window.FnBundle),
	}
}

// Add 注册函数包
// 同名已存在且 replace 为 false 时返回 ErrAlreadyRegistered；替换时保留原位置
func (s *BundleStore) Add(bundle *window.FnBundle, replace bool) error {
	if bundle == nil || bundle.FnInfo == nil {
		return ErrNilBundle
	}
	name := bundle.FnInfo.Name
	if name == "" {
		return ErrEmptyFunctionName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bundles[name]; exists {
		if !replace {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
		}
	} else {
		s.names = append(s.names, name)
	}
	s.bundles[name] = bundle
	observability.Info("Function registered", "name", name)
	return nil
}

// Get 获取指定名称的函数包
func (s *BundleStore) Get(name string) (*window.FnBundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bundles[name]
	return b, ok
}

// Has 检查是否存在指定名称的函数
func (s *BundleStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.bundles[name]
	return ok
}

// Names 按注册顺序列出函数名
func (s *BundleStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.names...)
}

// List 按注册顺序列出函数包
func (s *BundleStore) List() []*window.FnBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundles := make([]*window.FnBundle, 0, len(s.names))
	for _, name := range s.names {
		bundles = append(bundles, s.bundles[name])
	}
	return bundles
}

// Remove 注销一个函数
func (s *BundleStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bundles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	delete(s.bundles, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	observability.Info("Function unregistered", "name", name)
	return nil
}

// Clear 注销全部函数
func (s *BundleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.names = nil
	s.bundles = make(map[string]*window.FnBundle)
}

// Count 返回已注册的函数数量
func (s *BundleStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.names)
}
