// Package chassis 把函数注册、控件合成与执行窗口组装为一个应用
package chassis

import (
	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/ui"
	"github.com/KodaTao/FormChassis/pkg/widget"
	"github.com/KodaTao/FormChassis/pkg/window"
)

// Config 应用配置
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	History       HistoryConfig       `mapstructure:"history"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Window        WindowConfig        `mapstructure:"window"`

	// 显式协作者，为 nil 时使用各包的默认实例
	WidgetRegistry *widget.Registry        `mapstructure:"-" validate:"-"`
	DialogRegistry *bridge.DialogRegistry `mapstructure:"-" validate:"-"`
	Loop           *ui.Loop               `mapstructure:"-" validate:"-"`
	Bridge         *bridge.Bridge         `mapstructure:"-" validate:"-"`
}

// ServerConfig 只读 HTTP 接口配置
type ServerConfig struct {
	// Host 监听地址
	Host string `mapstructure:"host" validate:"required"`

	// Port 监听端口
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`

	// Mode 运行模式：debug, release, test
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

// HistoryConfig 执行记录配置
type HistoryConfig struct {
	// Enabled 是否记录每次运行
	Enabled bool `mapstructure:"enabled"`

	// Path 数据库文件路径，:memory: 表示内存数据库
	Path string `mapstructure:"path"`

	// Keep 启动时保留的最大记录数，0 表示不清理
	Keep int `mapstructure:"keep" validate:"gte=0"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug, info, warn, error
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format 日志格式：text, json
	Format string `mapstructure:"format" validate:"oneof=text json"`

	// Output 输出目标：stdout, file
	Output string `mapstructure:"output" validate:"oneof=stdout file"`

	// FilePath 日志文件路径（当 Output 为 file 时生效）
	FilePath string `mapstructure:"file_path"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用
	Enabled bool `mapstructure:"enabled"`

	// Path 指标暴露路径
	Path string `mapstructure:"path"`
}

// WindowConfig 所有执行窗口的默认配置，注册时可逐个覆盖
type WindowConfig struct {
	DefaultParameterGroupName string `mapstructure:"default_parameter_group_name"`
	AutoClearOutput           bool   `mapstructure:"auto_clear_output"`
	PrintFunctionResult       bool   `mapstructure:"print_function_result"`
	PrintFunctionError        bool   `mapstructure:"print_function_error"`
	ShowFunctionErrorDialog   bool   `mapstructure:"show_function_error_dialog"`
	ShowErrorTraceback        bool   `mapstructure:"show_error_traceback"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	w := window.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: "release",
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "~/.formchassis/history.db",
			Keep:    1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Window: WindowConfig{
			DefaultParameterGroupName: w.DefaultParameterGroupName,
			AutoClearOutput:           w.AutoClearOutput,
			PrintFunctionResult:       w.PrintFunctionResult,
			PrintFunctionError:        w.PrintFunctionError,
			ShowFunctionErrorDialog:   w.ShowFunctionErrorDialog,
			ShowErrorTraceback:        w.ShowErrorTraceback,
		},
	}
}

// windowConfig 由应用配置生成窗口配置
func (c *Config) windowConfig() *window.Config {
	w := window.DefaultConfig()
	if c.Window.DefaultParameterGroupName != "" {
		w.DefaultParameterGroupName = c.Window.DefaultParameterGroupName
	}
	w.AutoClearOutput = c.Window.AutoClearOutput
	w.PrintFunctionResult = c.Window.PrintFunctionResult
	w.PrintFunctionError = c.Window.PrintFunctionError
	w.ShowFunctionErrorDialog = c.Window.ShowFunctionErrorDialog
	w.ShowErrorTraceback = c.Window.ShowErrorTraceback
	return w
}

// Option 配置选项函数
type Option func(*Config)

// WithConfig 替换整个配置，通常来自 viper
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		*c = *cfg
	}
}

// WithLogLevel 设置日志级别
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.Log.Level = level
	}
}

// WithHistory 启用执行记录
func WithHistory(path string) Option {
	return func(c *Config) {
		c.History.Enabled = true
		c.History.Path = path
	}
}

// WithServer 设置 HTTP 接口地址
func WithServer(host string, port int) Option {
	return func(c *Config) {
		c.Server.Host = host
		c.Server.Port = port
	}
}

// WithWidgetRegistry 使用独立的控件注册表
func WithWidgetRegistry(r *widget.Registry) Option {
	return func(c *Config) {
		c.WidgetRegistry = r
	}
}

// WithDialogRegistry 使用独立的对话框注册表
func WithDialogRegistry(r *bridge.DialogRegistry) Option {
	return func(c *Config) {
		c.DialogRegistry = r
	}
}

// WithLoop 使用外部创建的 UI 循环，Run 会在当前 goroutine 中运行它
func WithLoop(loop *ui.Loop) Option {
	return func(c *Config) {
		c.Loop = loop
	}
}

// WithBridge 使用外部创建的桥接，它必须绑定在 WithLoop 提供的循环上
func WithBridge(b *bridge.Bridge) Option {
	return func(c *Config) {
		c.Bridge = b
	}
}

// AddOption 注册函数时的选项
type AddOption func(*addOptions)

type addOptions struct {
	parse           []function.ParseOption
	widgetConfigs   map[string]any
	windowConfig    *window.Config
	windowListener  window.Listener
	toolbar         *action.Toolbar
	menus           []*action.Menu
	onExecuteResult window.ResultCallback
	onExecuteError  window.ErrorCallback
	replace         bool
}

// WithDisplayName 显示名称
func WithDisplayName(name string) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithDisplayName(name)) }
}

// WithGroup 函数所在的分组
func WithGroup(group string) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithGroup(group)) }
}

// WithIcon 图标
func WithIcon(icon any) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithIcon(icon)) }
}

// WithDocument 替换文档注释生成的文档
func WithDocument(document string) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithDocument(document)) }
}

// WithDocumentFormat 文档格式
func WithDocumentFormat(format function.DocumentFormat) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithDocumentFormat(format)) }
}

// WithCancelable 函数支持取消
func WithCancelable(cancelable bool) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithCancelable(cancelable)) }
}

// WithExecutor 自定义执行器
func WithExecutor(factory function.ExecutorFactory) AddOption {
	return func(o *addOptions) { o.parse = append(o.parse, function.WithExecutor(factory)) }
}

// WithOnExecuteResult 运行成功的回调
func WithOnExecuteResult(cb window.ResultCallback) AddOption {
	return func(o *addOptions) { o.onExecuteResult = cb }
}

// WithOnExecuteError 运行失败的回调
func WithOnExecuteError(cb window.ErrorCallback) AddOption {
	return func(o *addOptions) { o.onExecuteError = cb }
}

// WithWidgetConfigs 按参数名提供控件配置，值为 widget.Config 实例或 widget.Options
func WithWidgetConfigs(configs map[string]any) AddOption {
	return func(o *addOptions) { o.widgetConfigs = configs }
}

// WithWindowConfig 执行窗口配置
func WithWindowConfig(cfg *window.Config) AddOption {
	return func(o *addOptions) { o.windowConfig = cfg }
}

// WithWindowListener 执行窗口生命周期监听器
func WithWindowListener(l window.Listener) AddOption {
	return func(o *addOptions) { o.windowListener = l }
}

// WithWindowToolbar 执行窗口工具栏
func WithWindowToolbar(t *action.Toolbar) AddOption {
	return func(o *addOptions) { o.toolbar = t }
}

// WithWindowMenus 执行窗口菜单
func WithWindowMenus(menus ...*action.Menu) AddOption {
	return func(o *addOptions) { o.menus = menus }
}

// WithReplace 同名函数已存在时替换
func WithReplace() AddOption {
	return func(o *addOptions) { o.replace = true }
}
