package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"routine-hub/backend/internal/app"
	"routine-hub/backend/internal/dto"
)

func todayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's classes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showDay(cmd.OutOrStdout(), flags, "")
		},
	}
}

func dayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "day <name>",
		Short: "Show classes of a weekday (sat, sunday, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDay(cmd.OutOrStdout(), flags, args[0])
		},
	}
}

func showDay(out io.Writer, flags *globalFlags, day string) error {
	return withApp(flags, func(ctx context.Context, a *app.App) error {
		state := a.Service.Routine.State(ctx)
		if err := stateError(state); err != nil {
			return err
		}
		resp, err := a.Service.Routine.Daily(ctx, day)
		if err != nil {
			return err
		}
		fmt.Fprint(out, renderStatus(state))
		fmt.Fprint(out, renderDaily(resp))
		return nil
	})
}

func weekCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show the weekly grid and summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app.App) error {
				state := a.Service.Routine.State(ctx)
				if err := stateError(state); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderStatus(state))
				fmt.Fprint(cmd.OutOrStdout(), renderWeekly(a.Service.Routine.Weekly(ctx)))
				return nil
			})
		},
	}
}

func coursesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List unique courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app.App) error {
				fmt.Fprint(cmd.OutOrStdout(), renderCourses(a.Service.Routine.Courses(ctx)))
				return nil
			})
		},
	}
}

func teachersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "teachers [day]",
		Short: "List teachers of the week or of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := ""
			if len(args) == 1 {
				day = args[0]
			}
			return withApp(flags, func(ctx context.Context, a *app.App) error {
				resp, err := a.Service.Routine.Teachers(ctx, day)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTeachers(resp))
				return nil
			})
		},
	}
}

func syncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull the latest routine from the remote store into the local cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.offline {
				return app.ErrOfflineMode
			}
			return withApp(flags, func(ctx context.Context, a *app.App) error {
				state := a.Service.Routine.State(ctx)
				fmt.Fprint(cmd.OutOrStdout(), renderStatus(state))
				return stateError(state)
			})
		},
	}
}

func importCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import classes from an .ics file or from pasted routine text (AI)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.offline {
				return app.ErrOfflineMode
			}
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(flags, func(ctx context.Context, a *app.App) error {
				var resp *dto.ImportResponse
				if strings.EqualFold(filepath.Ext(path), ".ics") {
					resp, err = a.Service.Import.ImportICS(ctx, f, dryRun)
				} else {
					var text []byte
					text, err = io.ReadAll(f)
					if err != nil {
						return err
					}
					resp, err = a.Service.Import.ImportText(ctx, &dto.ImportRequest{Text: string(text), DryRun: dryRun})
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderImport(resp))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate only, write nothing")
	return cmd
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var format, outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the routine as an Excel grid or an iCalendar feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app.App) error {
				var (
					data     []byte
					filename string
				)
				switch format {
				case "xlsx":
					buf, name, err := a.Service.Export.WeeklyExcel(ctx)
					if err != nil {
						return err
					}
					data, filename = buf.Bytes(), name
				case "ics":
					b, name, err := a.Service.Export.Calendar(ctx)
					if err != nil {
						return err
					}
					data, filename = b, name
				default:
					return fmt.Errorf("不支持的导出格式 %q（xlsx | ics）", format)
				}

				target := filepath.Join(outDir, filename)
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("✓"), target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Export format (xlsx, ics)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}

// stateError 首次加载失败且无缓存时返回可展示的错误
func stateError(state *dto.StateResponse) error {
	if state.Error == nil {
		return nil
	}
	return fmt.Errorf("%s: %s", state.Error.Title, state.Error.Message)
}
