package builtin

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/function"
)

// CronParams Cron 预览参数
type CronParams struct {
	Expression  string `json:"expression" desc:"cron expression, for example '0 30 9 * * *' fires every day at 9:30" required:"true"`
	Count       int    `json:"count" desc:"number of upcoming fire times" default:"5"`
	WithSeconds bool   `json:"with_seconds" desc:"expression has a leading seconds field" default:"True"`
	Location    string `json:"location" desc:"time zone of the schedule" type:"Literal['Local', 'UTC']" default:"'Local'"`
}

// CronFunction 计算 Cron 表达式接下来的触发时间
type CronFunction struct {
	now func() time.Time
}

// NewCronFunction 创建 CronFunction，now 为当前时间来源
func NewCronFunction(now func() time.Time) *CronFunction {
	return &CronFunction{now: now}
}

func (f *CronFunction) Name() string {
	return "cron_preview"
}

func (f *CronFunction) Description() string {
	return `Preview the upcoming fire times of a cron expression.

Six fields (sec min hour dom month dow) are expected unless with_seconds is off.
Descriptors such as @daily and @every 1h are accepted too.

@params
[count]
widget_class = "IntSpinBox"
min_value = 1
max_value = 50
@end
`
}

func (f *CronFunction) ParamsType() reflect.Type {
	return reflect.TypeOf(CronParams{})
}

func (f *CronFunction) Options() []chassis.AddOption {
	return []chassis.AddOption{
		chassis.WithDisplayName("Cron Preview"),
		chassis.WithGroup("Demos"),
	}
}

func (f *CronFunction) Call(ctx context.Context, args *function.Arguments) (any, error) {
	return function.BindCall(f.Execute)(ctx, args)
}

// Execute 打印并返回接下来的触发时间
func (f *CronFunction) Execute(ctx context.Context, p CronParams) (any, error) {
	fields := cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor
	if p.WithSeconds {
		fields |= cron.Second
	}
	schedule, err := cron.NewParser(fields).Parse(p.Expression)
	if err != nil {
		return nil, function.NewParameterError("expression", err.Error())
	}
	if p.Count <= 0 {
		return nil, function.NewParameterError("count", "must be positive")
	}

	now := f.now()
	if p.Location == "UTC" {
		now = now.UTC()
	}

	times := make([]string, 0, p.Count)
	next := now
	for i := 0; i < p.Count; i++ {
		next = schedule.Next(next)
		if next.IsZero() {
			break
		}
		s := next.Format(time.RFC3339)
		times = append(times, s)
		if err := bridge.PrintOutput(ctx, fmt.Sprintf("%2d. %s", i+1, s)); err != nil {
			return nil, err
		}
	}
	return times, nil
}
