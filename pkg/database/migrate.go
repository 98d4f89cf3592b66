package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ManagedTables 迁移负责创建的远程表
var ManagedTables = []string{"metadata", "routine"}

// ErrDirtyMigration 上次迁移中断，需人工修复 schema_migrations 后再启动
var ErrDirtyMigration = errors.New("远程课表库迁移处于 dirty 状态")

// EmbeddedVersions 返回内嵌迁移的版本号（升序）
func EmbeddedVersions() ([]uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	defer source.Close()

	v, err := source.First()
	if err != nil {
		return nil, fmt.Errorf("读取首个迁移版本失败: %w", err)
	}
	versions := []uint{v}
	for {
		v, err = source.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, fmt.Errorf("读取迁移版本失败: %w", err)
		}
		versions = append(versions, v)
	}
}

// RunMigrations 建立 routine 与 metadata 表（仅在 db.auto_migrate 开启且远程可达时调用）
//
// 已是最新版本时不做任何修改；dirty 状态返回 ErrDirtyMigration。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	upErr := m.Up()
	version, dirty, _ := m.Version()
	if dirty {
		return fmt.Errorf("%w（version=%d）", ErrDirtyMigration, version)
	}
	switch {
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.Debug("远程课表库已是最新版本", zap.Uint("version", version))
	case upErr != nil:
		return fmt.Errorf("执行迁移失败: %w", upErr)
	default:
		logger.Info("远程课表库迁移完成",
			zap.Uint("version", version),
			zap.Strings("tables", ManagedTables),
		)
	}
	return nil
}
