package repository

import (
	"context"

	"gorm.io/gorm"

	"routine-hub/backend/internal/model"
)

// RoutineRepository 课程安排数据访问接口
type RoutineRepository interface {
	// ListAll 全量读取（无分页、无过滤）
	ListAll(ctx context.Context) ([]model.Routine, error)
	// BatchCreate 批量插入，单条失败则整体回滚
	BatchCreate(ctx context.Context, rows []model.Routine) error
}

type routineRepo struct {
	db *gorm.DB
}

// NewRoutineRepo 创建 RoutineRepository 实例
func NewRoutineRepo(db *gorm.DB) RoutineRepository {
	return &routineRepo{db: db}
}

func (r *routineRepo) ListAll(ctx context.Context) ([]model.Routine, error) {
	var rows []model.Routine
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *routineRepo) BatchCreate(ctx context.Context, rows []model.Routine) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}
