// Package storage 提供数据存储功能
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KodaTao/FormChassis/pkg/observability"
)

// MemoryPath 内存数据库
const MemoryPath = ":memory:"

// DB 全局数据库实例
var DB *gorm.DB

// Config 数据库配置
type Config struct {
	Path string // 数据库文件路径，:memory: 表示内存数据库
}

// Open 打开数据库连接并迁移 models
func Open(cfg Config, models ...any) (*gorm.DB, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if dbPath != MemoryPath {
		// 处理路径中的 ~，并确保目录存在
		dbPath = expandPath(dbPath)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if dbPath == MemoryPath {
		// 每个连接都有独立的内存库，限制为单连接
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, err
		}
	}

	observability.Info("Database opened", "path", dbPath)
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(cfg Config, models ...any) error {
	db, err := Open(cfg, models...)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}

// Close 关闭全局数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}

// expandPath 展开路径中的 ~ 为用户主目录
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// 错误定义
var (
	ErrDBNotInitialized = &DBError{Message: "database not initialized"}
)

// DBError 数据库错误
type DBError struct {
	Message string
}

func (e *DBError) Error() string {
	return e.Message
}
