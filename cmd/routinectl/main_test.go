package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/app"
	"routine-hub/backend/internal/cache"
	"routine-hub/backend/internal/schedule"
	apperrors "routine-hub/backend/pkg/errors"
)

func newOfflineApp(t *testing.T) *app.App {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}
	cfg.Cache.Driver = "memory"

	a, err := app.New(cfg, zap.NewNop(), app.Options{Offline: true})
	if err != nil {
		t.Fatalf("装配离线应用失败: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestPrepare_OfflineEmptyCache(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()

	prepare(ctx, a)

	state := a.Service.Routine.State(ctx)
	if state.IsLoading {
		t.Error("离线且无缓存时不应停留在加载状态")
	}
	if len(state.Classes) != 0 {
		t.Errorf("期望课程为空，实际 %d", len(state.Classes))
	}
	if state.Error == nil || state.Error.Kind != string(apperrors.KindOffline) {
		t.Fatalf("期望 Offline 错误，实际 %+v", state.Error)
	}
	if err := stateError(state); err == nil {
		t.Error("stateError 应返回错误，命令不应渲染空日程")
	}
}

func TestPrepare_OfflineWithCache(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()

	a.Store.SaveJSON(ctx, cache.KeyRoutine, []schedule.ClassSession{
		{ID: "1", Subject: "Physics", Code: "PHY102", StartTime: "08:30", EndTime: "10:00", Day: schedule.Sunday},
	})

	prepare(ctx, a)

	state := a.Service.Routine.State(ctx)
	if err := stateError(state); err != nil {
		t.Fatalf("有缓存时离线不应报错: %v", err)
	}
	if len(state.Classes) != 1 || state.IsLoading {
		t.Errorf("期望渲染缓存中的 1 节课，实际 classes=%d loading=%v", len(state.Classes), state.IsLoading)
	}
}
