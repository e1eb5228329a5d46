package chassis

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/history"
	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/storage"
	"github.com/KodaTao/FormChassis/pkg/widget"
	"github.com/KodaTao/FormChassis/pkg/window"
)

// App FormChassis 应用实例
// 这是整个框架的入口点
type App struct {
	config  *Config
	bundles *BundleStore
	widgets *widget.Registry
	dialogs *bridge.DialogRegistry

	db          *gorm.DB
	history     *history.Repository
	initialized bool
}

// New 创建新的 App 实例
func New(opts ...Option) *App {
	// 应用默认配置
	config := DefaultConfig()

	// 应用选项
	for _, opt := range opts {
		opt(config)
	}

	widgets := config.WidgetRegistry
	if widgets == nil {
		widgets = widget.DefaultRegistry
	}
	dialogs := config.DialogRegistry
	if dialogs == nil {
		dialogs = bridge.NewDialogRegistry()
	}

	return &App{
		config:  config,
		bundles: NewBundleStore(),
		widgets: widgets,
		dialogs: dialogs,
	}
}

// Config 应用配置
func (a *App) Config() *Config { return a.config }

// WidgetRegistry 控件注册表
func (a *App) WidgetRegistry() *widget.Registry { return a.widgets }

// DialogRegistry 自定义对话框注册表
func (a *App) DialogRegistry() *bridge.DialogRegistry { return a.dialogs }

// History 执行记录，未启用时为 nil
func (a *App) History() *history.Repository { return a.history }

// Add 注册函数
// 解析描述符、合成控件配置并生成函数包
func (a *App) Add(desc *function.FnDescriptor, opts ...AddOption) error {
	o := &addOptions{}
	for _, opt := range opts {
		opt(o)
	}

	info, md, err := function.Parse(desc, o.parse...)
	if err != nil {
		return err
	}
	for name := range o.widgetConfigs {
		if _, ok := info.Parameters.Get(name); !ok {
			observability.Warn("Widget config for unknown parameter ignored",
				"function", info.Name,
				"parameter", name,
			)
		}
	}

	configs, err := widget.Merge(a.widgets, info.Parameters, md, o.widgetConfigs)
	if err != nil {
		return fmt.Errorf("%s: %w", info.Name, err)
	}

	windowConfig := o.windowConfig
	if windowConfig == nil {
		windowConfig = a.config.windowConfig()
	}

	return a.bundles.Add(&window.FnBundle{
		FnInfo:          info,
		WidgetConfigs:   configs,
		WindowConfig:    windowConfig,
		WindowListener:  o.windowListener,
		WindowToolbar:   o.toolbar,
		WindowMenus:     o.menus,
		OnExecuteResult: o.onExecuteResult,
		OnExecuteError:  o.onExecuteError,
	}, o.replace)
}

// Remove 注销函数
func (a *App) Remove(name string) error {
	return a.bundles.Remove(name)
}

// Exists 函数是否已注册
func (a *App) Exists(name string) bool {
	return a.bundles.Has(name)
}

// GetBundle 获取函数包
func (a *App) GetBundle(name string) (*window.FnBundle, bool) {
	return a.bundles.Get(name)
}

// ClearBundles 注销全部函数
func (a *App) ClearBundles() {
	a.bundles.Clear()
}

// Bundles 按注册顺序返回全部函数包
func (a *App) Bundles() []*window.FnBundle {
	return a.bundles.List()
}

// Initialize 初始化应用
// 包括：配置校验、日志、指标、执行记录
func (a *App) Initialize() error {
	if a.initialized {
		return nil
	}

	// 1. 校验配置
	if err := validator.New().Struct(a.config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. 初始化日志
	if err := observability.InitLogger(observability.LogConfig{
		Level:    a.config.Log.Level,
		Format:   a.config.Log.Format,
		Output:   a.config.Log.Output,
		FilePath: a.config.Log.FilePath,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	observability.Info("Initializing FormChassis",
		"functions", a.bundles.Count(),
		"history", a.config.History.Enabled,
	)

	// 3. 初始化指标
	if a.config.Observability.Metrics.Enabled {
		observability.InitMetrics()
	}

	// 4. 初始化执行记录
	if a.config.History.Enabled {
		db, err := storage.Open(storage.Config{Path: a.config.History.Path}, &history.ExecutionRecord{})
		if err != nil {
			return fmt.Errorf("failed to initialize history: %w", err)
		}
		a.db = db
		a.history = history.NewRepository(db)

		if keep := a.config.History.Keep; keep > 0 {
			if removed, err := a.history.Prune(keep); err != nil {
				observability.Warn("Failed to prune history", "error", err)
			} else if removed > 0 {
				observability.Info("History pruned", "removed", removed)
			}
		}
	}

	a.initialized = true
	return nil
}

// Close 释放资源
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	a.history = nil
	a.initialized = false
	return sqlDB.Close()
}

// DefaultApp 默认的全局应用
var DefaultApp = New()

// Add 向默认应用注册函数
func Add(desc *function.FnDescriptor, opts ...AddOption) error {
	return DefaultApp.Add(desc, opts...)
}
