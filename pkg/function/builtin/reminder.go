package builtin

import (
	"context"
	"reflect"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

// 提醒级别
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// ReminderParams 提醒参数
type ReminderParams struct {
	Message string `json:"message" desc:"reminder text" required:"true"`
	Level   string `json:"level" desc:"message box style" type:"Literal['info', 'warning', 'critical']" default:"'info'"`
	Confirm bool   `json:"confirm" desc:"ask before showing the reminder" default:"False"`
	AskNote bool   `json:"ask_note" desc:"ask for a note to append" default:"False"`
}

// ReminderFunction 以消息框显示提醒
type ReminderFunction struct{}

func (f *ReminderFunction) Name() string {
	return "remind"
}

func (f *ReminderFunction) Description() string {
	return `Show a reminder in a message box.

Args:
    message: reminder text
    level: message box style
`
}

func (f *ReminderFunction) ParamsType() reflect.Type {
	return reflect.TypeOf(ReminderParams{})
}

func (f *ReminderFunction) Options() []chassis.AddOption {
	return []chassis.AddOption{
		chassis.WithDisplayName("Reminder"),
		chassis.WithGroup("Demos"),
	}
}

func (f *ReminderFunction) Call(ctx context.Context, args *function.Arguments) (any, error) {
	return function.BindCall(f.Execute)(ctx, args)
}

// Execute 显示提醒，返回用户点击的按钮；用户拒绝确认时返回 No
func (f *ReminderFunction) Execute(ctx context.Context, p ReminderParams) (any, error) {
	if p.Message == "" {
		return nil, function.NewParameterError("message", "cannot be empty")
	}

	if p.Confirm {
		answer, err := bridge.ShowQuestionMessageBox(ctx, "Show the reminder now?", bridge.WithTitle("Reminder"))
		if err != nil {
			return nil, err
		}
		if answer != bridge.ButtonYes {
			return answer, nil
		}
	}

	text := p.Message
	if p.AskNote {
		note, err := bridge.GetString(ctx, "Reminder", "note", bridge.WithDefault(""))
		if err != nil {
			return nil, err
		}
		if note != "" {
			text += "\n" + note
		}
	}

	show := bridge.ShowInfoMessageBox
	switch p.Level {
	case LevelWarning:
		show = bridge.ShowWarningMessageBox
	case LevelCritical:
		show = bridge.ShowCriticalMessageBox
	}
	clicked, err := show(ctx, text, bridge.WithTitle("Reminder"))
	if err != nil {
		return nil, err
	}

	observability.InfoContext(ctx, "Reminder shown", "level", p.Level)
	return clicked, nil
}
