package widget

import (
	"github.com/KodaTao/FormChassis/pkg/function"
)

// 内置控件类
var (
	IntSpinBox = &Class{
		Name:        "IntSpinBox",
		NewConfig:   func() Config { return newIntSpinBoxConfig() },
		New:         newIntWidget,
		PostProcess: commonPostProcess,
	}
	IntSlider = &Class{
		Name:        "IntSlider",
		NewConfig:   func() Config { return newIntSliderConfig() },
		New:         newIntWidget,
		PostProcess: commonPostProcess,
	}
	FloatSpinBox = &Class{
		Name:        "FloatSpinBox",
		NewConfig:   func() Config { return newFloatSpinBoxConfig() },
		New:         newFloatWidget,
		PostProcess: commonPostProcess,
	}
	FloatSlider = &Class{
		Name:        "FloatSlider",
		NewConfig:   func() Config { return newFloatSliderConfig() },
		New:         newFloatWidget,
		PostProcess: commonPostProcess,
	}
	LineEdit = &Class{
		Name:        "LineEdit",
		NewConfig:   func() Config { return &LineEditConfig{} },
		New:         newLineEdit,
		PostProcess: commonPostProcess,
	}
	CheckBox = &Class{
		Name:        "CheckBox",
		NewConfig:   func() Config { return &CheckBoxConfig{} },
		New:         newCheckBox,
		PostProcess: commonPostProcess,
	}
	ExclusiveChoiceBox = &Class{
		Name:        "ExclusiveChoiceBox",
		NewConfig:   func() Config { return &ExclusiveChoiceBoxConfig{Columns: 1} },
		New:         newExclusiveChoiceBox,
		PostProcess: choicePostProcess,
	}
	ListEdit = &Class{
		Name:        "ListEdit",
		NewConfig:   func() Config { return &ListEditConfig{} },
		New:         newListEdit,
		PostProcess: commonPostProcess,
	}
	DictEdit = &Class{
		Name:        "DictEdit",
		NewConfig:   func() Config { return &DictEditConfig{} },
		New:         newDictEdit,
		PostProcess: commonPostProcess,
	}
	BytesEdit = &Class{
		Name:        "BytesEdit",
		NewConfig:   func() Config { return &BytesEditConfig{} },
		New:         newBytesEdit,
		PostProcess: commonPostProcess,
	}
	AnyEdit = &Class{
		Name:        "AnyEdit",
		NewConfig:   func() Config { return &AnyEditConfig{BaseConfig: BaseConfig{Nullable: true}} },
		New:         newAnyEdit,
		PostProcess: commonPostProcess,
	}
)

// BuiltinClasses 返回全部内置控件类
func BuiltinClasses() []*Class {
	return []*Class{
		IntSpinBox, IntSlider, FloatSpinBox, FloatSlider, LineEdit, CheckBox,
		ExclusiveChoiceBox, ListEdit, DictEdit, BytesEdit, AnyEdit,
	}
}

type builtinMapping struct {
	class     *Class
	typenames []string
}

func builtinMappings() []builtinMapping {
	return []builtinMapping{
		{IntSpinBox, []string{function.TypeInt}},
		{FloatSpinBox, []string{function.TypeFloat}},
		{LineEdit, []string{function.TypeStr}},
		{CheckBox, []string{function.TypeBool}},
		{ListEdit, []string{function.TypeList, function.TypeTuple, function.TypeSet, function.TypeMutableSet}},
		{DictEdit, []string{function.TypeDict, function.TypeMapping, function.TypeMutableMapping}},
		{BytesEdit, []string{function.TypeBytes}},
		{AnyEdit, []string{function.TypeAny, function.TypeObject}},
	}
}

func commonPostProcess(cfg Config, _ string, info *function.ParameterInfo) error {
	markNullable(cfg, info)
	return nil
}
