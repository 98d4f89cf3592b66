package syncer

import (
	"context"

	"routine-hub/backend/internal/schedule"
)

// VersionChange 一次版本切换
type VersionChange struct {
	From     string                   `json:"from"`
	To       string                   `json:"to"`
	Metadata schedule.RoutineMetadata `json:"metadata"`
}

// Notifier 版本切换的外部通知
type Notifier interface {
	VersionChanged(ctx context.Context, change VersionChange) error
}

type nopNotifier struct{}

func (nopNotifier) VersionChanged(context.Context, VersionChange) error { return nil }
