// Package builtin 提供内置的演示函数
//
// 每个函数都以参数结构体描述表单，演示进度条、取消、消息框与参数错误等窗口能力
package builtin

import (
	"context"
	"reflect"
	"time"

	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/function"
)

// Function 内置函数
type Function interface {
	Name() string
	// Description 文档注释，可以包含 @params 元数据块
	Description() string
	ParamsType() reflect.Type
	Call(ctx context.Context, args *function.Arguments) (any, error)
	// Options 注册选项
	Options() []chassis.AddOption
}

// All 返回全部内置函数
func All() []Function {
	return []Function{
		NewCountdownFunction(time.Second),
		NewCronFunction(time.Now),
		&ReminderFunction{},
	}
}

// Descriptor 生成函数描述符
func Descriptor(f Function) (*function.FnDescriptor, error) {
	return function.DescriptorFromStruct(f.Name(), f.Description(), f.ParamsType(), f.Call)
}

// Register 把函数注册到应用，fns 为空时注册全部内置函数
func Register(app *chassis.App, fns ...Function) error {
	if len(fns) == 0 {
		fns = All()
	}
	for _, f := range fns {
		desc, err := Descriptor(f)
		if err != nil {
			return err
		}
		if err := app.Add(desc, f.Options()...); err != nil {
			return err
		}
	}
	return nil
}
