// Package history 持久化函数运行记录
package history

import (
	"time"

	"gorm.io/gorm"
)

// Status 运行结果
type Status string

const (
	StatusSuccess        Status = "success"         // 正常返回
	StatusParameterError Status = "parameter_error" // 参数错误
	StatusRuntimeError   Status = "runtime_error"   // 其他错误或 panic
)

// ExecutionRecord 一次运行的记录
type ExecutionRecord struct {
	gorm.Model
	RunID      string    `gorm:"uniqueIndex;not null" json:"run_id"`
	Function   string    `gorm:"not null;index" json:"function"`
	Status     Status    `gorm:"index" json:"status"`
	Parameter  string    `json:"parameter,omitempty"`               // 参数错误对应的参数
	Message    string    `gorm:"type:text" json:"message,omitempty"` // 结果或错误信息
	Arguments  string    `gorm:"type:text" json:"arguments,omitempty"`
	Cancelled  bool      `json:"cancelled"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// TableName 指定表名
func (ExecutionRecord) TableName() string {
	return "execution_records"
}

// Failed 运行是否失败
func (r *ExecutionRecord) Failed() bool {
	return r.Status != StatusSuccess
}
