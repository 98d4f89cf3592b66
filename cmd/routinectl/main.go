// Package main routinectl：在终端查看课表、手动同步、导入与导出。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/app"
	applogger "routine-hub/backend/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags 所有子命令共用的参数
type globalFlags struct {
	configPath string
	offline    bool
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "routinectl",
		Short:         "Class routine in your terminal",
		Long:          "routinectl renders the class routine from the local cache and syncs it with the remote store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().BoolVar(&flags.offline, "offline", false, "Render the local cache only, never contact the remote store")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		todayCmd(flags),
		dayCmd(flags),
		weekCmd(flags),
		coursesCmd(flags),
		teachersCmd(flags),
		syncCmd(flags),
		importCmd(flags),
		exportCmd(flags),
	)
	return cmd
}

// withApp 装配依赖、读取缓存并完成一次首次同步
func withApp(flags *globalFlags, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	cfg.Log.Level = flags.logLevel
	cfg.Log.Format = "console"

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger, app.Options{Offline: flags.offline})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prepare(ctx, a)
	return fn(ctx, a)
}

// prepare 读取缓存并执行一次首次同步
// 离线模式下该同步不访问远程，仅在无缓存时给出 Offline 错误
func prepare(ctx context.Context, a *app.App) {
	a.Start(ctx, false)
	snap := a.Controller.Sync(ctx, true)
	a.Logger.Debug("首次同步结束", zap.String("status", string(snap.Status)), zap.Bool("offline", a.Offline))
}
