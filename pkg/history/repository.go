package history

import (
	"errors"

	"gorm.io/gorm"
)

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("execution record not found")

// Repository ExecutionRecord 数据访问层
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate 创建或更新表结构
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&ExecutionRecord{})
}

// Create 保存记录
func (r *Repository) Create(rec *ExecutionRecord) error {
	return r.db.Create(rec).Error
}

// GetByRunID 根据运行 ID 获取记录
func (r *Repository) GetByRunID(runID string) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	err := r.db.Where("run_id = ?", runID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Filter 列表查询条件
type Filter struct {
	Function string
	Status   Status
	Limit    int
	Offset   int
}

// List 按开始时间倒序列出记录
func (r *Repository) List(f Filter) ([]ExecutionRecord, error) {
	var records []ExecutionRecord
	query := r.db.Model(&ExecutionRecord{})

	if f.Function != "" {
		query = query.Where("function = ?", f.Function)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	err := query.Order("started_at DESC").Order("id DESC").Find(&records).Error
	return records, err
}

// CountByStatus 统计某函数各状态的运行次数
func (r *Repository) CountByStatus(function string) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := r.db.Model(&ExecutionRecord{}).
		Select("status, count(*) as count").
		Where("function = ?", function).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Prune 只保留最近的 keep 条记录
func (r *Repository) Prune(keep int) (int64, error) {
	sub := r.db.Model(&ExecutionRecord{}).Select("id").Order("id DESC").Limit(keep)
	result := r.db.Unscoped().Where("id NOT IN (?)", sub).Delete(&ExecutionRecord{})
	return result.RowsAffected, result.Error
}
