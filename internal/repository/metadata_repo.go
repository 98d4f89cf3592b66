package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"routine-hub/backend/internal/model"
)

// MetadataRepository 课表版本数据访问接口
type MetadataRepository interface {
	// GetLatest 按 id 倒序取最新一行；表为空时返回 (nil, nil)
	GetLatest(ctx context.Context) (*model.Metadata, error)
	Create(ctx context.Context, meta *model.Metadata) error
}

type metadataRepo struct {
	db *gorm.DB
}

// NewMetadataRepo 创建 MetadataRepository 实例
func NewMetadataRepo(db *gorm.DB) MetadataRepository {
	return &metadataRepo{db: db}
}

func (r *metadataRepo) GetLatest(ctx context.Context) (*model.Metadata, error) {
	var meta model.Metadata
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(1).
		Take(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

func (r *metadataRepo) Create(ctx context.Context, meta *model.Metadata) error {
	return r.db.WithContext(ctx).Create(meta).Error
}
