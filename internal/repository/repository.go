package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Routine  RoutineRepository
	Metadata MetadataRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Routine:  NewRoutineRepo(db),
		Metadata: NewMetadataRepo(db),
	}
}
