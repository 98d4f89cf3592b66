package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"routine-hub/backend/config"
)

// NewDB 初始化远程 PostgreSQL 连接
//
// 连接建立采用惰性方式：Ping 失败只返回 reachable=false，
// 调用方继续以本地缓存模式运行，待网络恢复后由同步控制器重新拉取。
func NewDB(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) (db *gorm.DB, reachable bool, err error) {
	gormLevel := gormlogger.Warn
	if logLevel == "debug" {
		gormLevel = gormlogger.Info
	}

	db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormLevel),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, false, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 连接池配置（已有默认值 10/5）
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Warn("远程数据库暂不可达，将以本地缓存模式启动",
			zap.String("host", cfg.Host),
			zap.Error(err),
		)
		return db, false, nil
	}

	logger.Info("数据库连接成功",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Name),
	)

	return db, true, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
