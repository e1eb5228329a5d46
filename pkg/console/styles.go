// Package console 提供基于终端的界面工具包
//
// 窗口内容以 lipgloss 样式打印到输出流，用户通过逐行命令操作窗口
package console

import "github.com/charmbracelet/lipgloss"

// Styles 终端样式
type Styles struct {
	Title    lipgloss.Style
	Group    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Output   lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
	Progress lipgloss.Style
	Prompt   lipgloss.Style
}

// DefaultStyles 默认样式
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Group:    lipgloss.NewStyle().Bold(true).Underline(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Output:   lipgloss.NewStyle(),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Progress: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Prompt:   lipgloss.NewStyle().Bold(true),
	}
}

// PlainStyles 不带任何颜色与边框，便于脚本与测试
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title: plain, Group: plain, Label: plain, Muted: plain, Output: plain,
		Info: plain, Warning: plain, Error: plain, Box: plain, Progress: plain, Prompt: plain,
	}
}
