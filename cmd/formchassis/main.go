// Package main 是 FormChassis 的 CLI 入口
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/console"
	"github.com/KodaTao/FormChassis/pkg/function/builtin"
	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/server"
)

const version = "v0.1.0"

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "formchassis",
		Short: "FormChassis - turn Go functions into form applications",
		Long: `FormChassis derives an input form from a function descriptor, runs the function
on a worker goroutine and streams its output back to the window.`,
		SilenceUsage: true,
	}

	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./formchassis.yaml)")

	// 添加子命令
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// newApp 加载配置并注册内置函数
func newApp(opts ...chassis.Option) (*chassis.App, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := chassis.New(append([]chassis.Option{chassis.WithConfig(config)}, opts...)...)
	if err := builtin.Register(app); err != nil {
		return nil, fmt.Errorf("failed to register functions: %w", err)
	}
	return app, nil
}

// listCmd 列出函数
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDISPLAY NAME\tGROUP\tPARAMETERS")
			for _, b := range app.Bundles() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					b.FnInfo.Name, b.FnInfo.DisplayName, b.FnInfo.Group,
					strings.Join(b.FnInfo.Parameters.Names(), ", "))
			}
			return w.Flush()
		},
	}
}

// describeCmd 输出函数表单的 JSON 描述
func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <function>",
		Short: "Print the form descriptor of a function as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			b, ok := app.GetBundle(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", chassis.ErrNotRegistered, args[0])
			}
			d, err := chassis.Describe(b)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}
}

// runCmd 在终端中打开函数窗口
func runCmd() *cobra.Command {
	var (
		params  []string
		execute bool
		plain   bool
		selects bool
	)

	cmd := &cobra.Command{
		Use:   "run [function]",
		Short: "Open a function in the console window",
		Long: `Open a function in the console window. Without a function name the select
window lists every function. Parameters given with -p are applied before the window is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(params) > 0 && len(args) == 0 {
				return fmt.Errorf("--param requires a function name")
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			styles := console.DefaultStyles()
			if plain {
				styles = console.PlainStyles()
			}
			tk := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), styles)
			tk.AutoExecute = execute

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, chassis.RunOptions{
				Argv:             append(args, params...),
				ShowSelectWindow: selects,
				Toolkit:          tk,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter value as name=value (repeatable)")
	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "execute immediately after opening")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors and borders")
	cmd.Flags().BoolVar(&selects, "select", false, "show the select window even for a single function")

	return cmd
}

// serveCmd 启动 HTTP 服务器
func serveCmd() *cobra.Command {
	var port int
	var host string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only HTTP server",
		Long:  `Start the FormChassis HTTP server exposing form descriptors, execution history and metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 命令行参数覆盖配置
			var opts []chassis.Option
			if port != 0 || host != "" {
				opts = append(opts, func(c *chassis.Config) {
					if port != 0 {
						c.Server.Port = port
					}
					if host != "" {
						c.Server.Host = host
					}
				})
			}

			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			defer app.Close()

			// 初始化
			if err := app.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			// 优雅关闭
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			observability.Info("FormChassis serving", "functions", len(app.Bundles()))
			return server.NewServer(app).Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "P", 0, "Server port (default 8080)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Server host (default 127.0.0.1)")

	return cmd
}

// versionCmd 显示版本信息
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "FormChassis "+version)
			fmt.Fprintln(cmd.OutOrStdout(), "Function-to-form binding for Go")
		},
	}
}

// loadConfig 加载配置文件
func loadConfig() (*chassis.Config, error) {
	v := viper.New()
	d := chassis.DefaultConfig()

	// 设置默认值
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.keep", d.History.Keep)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.file_path", d.Log.FilePath)

	v.SetDefault("observability.metrics.enabled", d.Observability.Metrics.Enabled)
	v.SetDefault("observability.metrics.path", d.Observability.Metrics.Path)

	v.SetDefault("window.default_parameter_group_name", d.Window.DefaultParameterGroupName)
	v.SetDefault("window.auto_clear_output", d.Window.AutoClearOutput)
	v.SetDefault("window.print_function_result", d.Window.PrintFunctionResult)
	v.SetDefault("window.print_function_error", d.Window.PrintFunctionError)
	v.SetDefault("window.show_function_error_dialog", d.Window.ShowFunctionErrorDialog)
	v.SetDefault("window.show_error_traceback", d.Window.ShowErrorTraceback)

	// 配置文件
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("formchassis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.formchassis")
	}

	// 环境变量，例如 FC_SERVER_PORT
	v.SetEnvPrefix("FC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件（如果存在）
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// 配置文件不存在时使用默认值
	}

	// 解析配置
	config := &chassis.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}

	return config, nil
}
