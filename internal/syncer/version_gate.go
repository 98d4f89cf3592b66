package syncer

import (
	"context"

	"routine-hub/backend/internal/cache"
)

// VersionGate 以持久化的 lastSeenVersion 判断版本是否切换
//
// 首次运行（无记录）与重复版本都不算切换；无论结果如何都会写回新版本。
type VersionGate struct {
	store *cache.Store
}

func NewVersionGate(store *cache.Store) *VersionGate {
	return &VersionGate{store: store}
}

// Observe 返回是否发生切换以及之前的版本
func (g *VersionGate) Observe(ctx context.Context, version string) (changed bool, previous string) {
	previous, ok := g.store.Load(ctx, cache.KeyLastSeenVersion)
	changed = ok && previous != "" && previous != version
	g.store.Save(ctx, cache.KeyLastSeenVersion, version)
	return changed, previous
}
