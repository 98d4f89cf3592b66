package syncer

import (
	"context"

	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/repository"
)

// Source 远程数据源
type Source interface {
	// LatestMetadata 最新一行元数据；表为空时返回 (nil, nil)
	LatestMetadata(ctx context.Context) (*model.Metadata, error)
	// ListRoutine 全量课程
	ListRoutine(ctx context.Context) ([]model.Routine, error)
}

// Connectivity 在线状态查询
type Connectivity interface {
	Online() bool
}

// AlwaysOnline 未配置探测时使用
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// AlwaysOffline 只读本地缓存时使用（CLI --offline）
type AlwaysOffline struct{}

func (AlwaysOffline) Online() bool { return false }

type repositorySource struct {
	repo *repository.Repository
}

// NewRepositorySource 以 Postgres 仓储作为数据源
func NewRepositorySource(repo *repository.Repository) Source {
	return &repositorySource{repo: repo}
}

func (s *repositorySource) LatestMetadata(ctx context.Context) (*model.Metadata, error) {
	return s.repo.Metadata.GetLatest(ctx)
}

func (s *repositorySource) ListRoutine(ctx context.Context) ([]model.Routine, error) {
	return s.repo.Routine.ListAll(ctx)
}
