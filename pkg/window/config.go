package window

// Config 执行窗口配置
type Config struct {
	// Title 窗口标题，为空时使用函数的显示名
	Title string `mapstructure:"title"`

	// DefaultParameterGroupName 未声明分组的参数所在的分组
	DefaultParameterGroupName string `mapstructure:"default_parameter_group_name"`

	ExecuteButtonText string `mapstructure:"execute_button_text"`
	CancelButtonText  string `mapstructure:"cancel_button_text"`
	ClearButtonText   string `mapstructure:"clear_button_text"`
	CloseButtonText   string `mapstructure:"close_button_text"`

	// AutoClearOutput 每次执行前清空输出区
	AutoClearOutput bool `mapstructure:"auto_clear_output"`

	// EnableCancel 显示取消按钮，函数本身还需要是 Cancelable
	EnableCancel bool `mapstructure:"enable_cancel"`

	// DisableWidgetsOnExecute 执行期间禁止编辑参数
	DisableWidgetsOnExecute bool `mapstructure:"disable_widgets_on_execute"`

	// PrintFunctionResult 把结果打印到输出区，ResultMessage 为 fmt 格式，参数为结果
	PrintFunctionResult      bool   `mapstructure:"print_function_result"`
	ShowFunctionResultDialog bool   `mapstructure:"show_function_result_dialog"`
	ResultMessage            string `mapstructure:"result_message"`
	ResultDialogTitle        string `mapstructure:"result_dialog_title"`

	// PrintFunctionError 把错误打印到输出区，ErrorMessage 为 fmt 格式，参数为错误类别与错误
	PrintFunctionError      bool   `mapstructure:"print_function_error"`
	ShowFunctionErrorDialog bool   `mapstructure:"show_function_error_dialog"`
	ShowErrorTraceback      bool   `mapstructure:"show_error_traceback"`
	ErrorMessage            string `mapstructure:"error_message"`
	ErrorDialogTitle        string `mapstructure:"error_dialog_title"`

	ShowParameterErrorDialog  bool   `mapstructure:"show_parameter_error_dialog"`
	ParameterErrorDialogTitle string `mapstructure:"parameter_error_dialog_title"`

	// FunctionExecutingMessage 执行期间点击执行、清空或关闭时的提示
	FunctionExecutingMessage string `mapstructure:"function_executing_message"`
	// UncancelableMessage 函数不支持取消时点击取消的提示
	UncancelableMessage string `mapstructure:"uncancelable_message"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DefaultParameterGroupName: "Main Parameters",
		ExecuteButtonText:         "Execute",
		CancelButtonText:          "Cancel",
		ClearButtonText:           "Clear",
		CloseButtonText:           "Close",
		AutoClearOutput:           false,
		EnableCancel:              true,
		DisableWidgetsOnExecute:   true,
		PrintFunctionResult:       true,
		ShowFunctionResultDialog:  false,
		ResultMessage:             "function executed successfully, result: %v",
		ResultDialogTitle:         "Result",
		PrintFunctionError:        true,
		ShowFunctionErrorDialog:   true,
		ShowErrorTraceback:        true,
		ErrorMessage:              "%s: %v",
		ErrorDialogTitle:          "Error",
		ShowParameterErrorDialog:  true,
		ParameterErrorDialogTitle: "Parameter Error",
		FunctionExecutingMessage:  "function is executing now",
		UncancelableMessage:       "function is not cancelable",
	}
}
