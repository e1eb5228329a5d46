package builtin

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/function"
)

// CountdownParams 倒计时参数
type CountdownParams struct {
	Seconds int    `json:"seconds" desc:"countdown length in seconds" default:"5"`
	Message string `json:"message" desc:"text printed when the countdown ends" default:"done"`
}

// CountdownFunction 倒计时，每个节拍更新一次进度条，可随时取消
type CountdownFunction struct {
	tick time.Duration
}

// NewCountdownFunction 创建 CountdownFunction，tick 为每一秒实际等待的时长
func NewCountdownFunction(tick time.Duration) *CountdownFunction {
	return &CountdownFunction{tick: tick}
}

func (f *CountdownFunction) Name() string {
	return "countdown"
}

func (f *CountdownFunction) Description() string {
	return `Count down and report progress.

The countdown checks for cancellation on every tick and stops early when asked.

@params
[seconds]
widget_class = "IntSlider"
min_value = 1
max_value = 60
@end
`
}

func (f *CountdownFunction) ParamsType() reflect.Type {
	return reflect.TypeOf(CountdownParams{})
}

func (f *CountdownFunction) Options() []chassis.AddOption {
	return []chassis.AddOption{
		chassis.WithDisplayName("Countdown"),
		chassis.WithGroup("Demos"),
		chassis.WithCancelable(true),
	}
}

func (f *CountdownFunction) Call(ctx context.Context, args *function.Arguments) (any, error) {
	return function.BindCall(f.Execute)(ctx, args)
}

// Execute 运行倒计时，返回实际经过的秒数
func (f *CountdownFunction) Execute(ctx context.Context, p CountdownParams) (result any, err error) {
	if p.Seconds <= 0 {
		return nil, function.NewParameterError("seconds", "must be positive")
	}

	if err := bridge.ShowProgressbar(ctx, bridge.ProgressbarConfig{
		Max:            p.Seconds,
		ShowMessage:    true,
		MessageFormat:  "%d s elapsed",
		InitialMessage: "starting",
	}); err != nil {
		return nil, err
	}
	defer func() {
		if hideErr := bridge.HideProgressbar(ctx); hideErr != nil && err == nil {
			result, err = nil, fmt.Errorf("hide progressbar: %w", hideErr)
		}
	}()

	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()

	for elapsed := 1; elapsed <= p.Seconds; elapsed++ {
		select {
		case <-ctx.Done():
			if err := bridge.PrintOutput(ctx, fmt.Sprintf("cancelled after %d s", elapsed-1)); err != nil {
				return nil, err
			}
			return elapsed - 1, nil
		case <-ticker.C:
		}
		if err := bridge.UpdateProgress(ctx, elapsed, ""); err != nil {
			return nil, err
		}
	}

	if err := bridge.PrintOutput(ctx, p.Message); err != nil {
		return nil, err
	}
	return p.Seconds, nil
}
