package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/extractor"
	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/repository"
	"routine-hub/backend/internal/schedule"
	apperrors "routine-hub/backend/pkg/errors"
	"routine-hub/backend/pkg/validate"
)

// ── 导入模块业务错误 ──

var (
	ErrImportDisabled = errors.New("AI 导入未启用")
	ErrImportTooLarge = errors.New("导入内容超过长度限制")
	ErrExtractFailed  = errors.New("AI 文本抽取失败")
	ErrNoClassesFound = errors.New("No classes found in the provided text.")
	ErrImportRejected = errors.New("远程数据库拒绝写入导入数据")
)

// Extractor 文本 → 课程行（*extractor.Extractor 实现）
type Extractor interface {
	Extract(ctx context.Context, text string) ([]extractor.Row, error)
}

// MalformedImportError 导入结果为空、校验失败或写入被拒
//
// errors.Is(err, apperrors.ErrMalformedImport) 为 true。
type MalformedImportError struct {
	Reason string
	Fields map[string]string
	Err    error
}

func (e *MalformedImportError) Error() string {
	return fmt.Sprintf("%s: %s", apperrors.ErrMalformedImport.Message, e.Reason)
}

func (e *MalformedImportError) Unwrap() error { return e.Err }

func (e *MalformedImportError) Is(target error) bool {
	return target == apperrors.ErrMalformedImport
}

// ImportService 批量导入业务接口
//
// 流程：抽取 → 校验 → 整批写入远程 → 触发后台同步。dry_run 只返回抽取结果。
type ImportService interface {
	ImportText(ctx context.Context, req *dto.ImportRequest) (*dto.ImportResponse, error)
	ImportICS(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportResponse, error)
}

type importService struct {
	repo      *repository.Repository
	ctrl      SyncController
	extractor Extractor
	validate  *validator.Validate
	opts      RoutineOptions
	maxBytes  int
	logger    *zap.Logger
}

// NewImportService 创建 ImportService 实例；extractor 为 nil 时 ImportText 返回 ErrImportDisabled
func NewImportService(repo *repository.Repository, ctrl SyncController, ex Extractor, opts RoutineOptions, maxBytes int, logger *zap.Logger) ImportService {
	return &importService{
		repo:      repo,
		ctrl:      ctrl,
		extractor: ex,
		validate:  validate.New(),
		opts:      opts,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// ────────────────────── ImportText ──────────────────────

func (s *importService) ImportText(ctx context.Context, req *dto.ImportRequest) (*dto.ImportResponse, error) {
	if s.extractor == nil {
		return nil, ErrImportDisabled
	}
	if s.maxBytes > 0 && len(req.Text) > s.maxBytes {
		return nil, ErrImportTooLarge
	}

	rows, err := s.extractor.Extract(ctx, req.Text)
	if err != nil {
		if errors.Is(err, extractor.ErrUnparsableJSON) || errors.Is(err, extractor.ErrEmptyReply) || errors.Is(err, extractor.ErrEmptyInput) {
			return nil, &MalformedImportError{Reason: err.Error(), Err: err}
		}
		s.logger.Error("AI 抽取失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	return s.commit(ctx, "text", rows, req.DryRun)
}

// ────────────────────── ImportICS ──────────────────────

func (s *importService) ImportICS(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportResponse, error) {
	rows, err := DecodeICS(r, s.opts.Location)
	if err != nil {
		return nil, &MalformedImportError{Reason: err.Error(), Err: err}
	}
	return s.commit(ctx, "ics", rows, dryRun)
}

// commit 校验并整批写入；任何一行不合法则整体拒绝
func (s *importService) commit(ctx context.Context, source string, rows []extractor.Row, dryRun bool) (*dto.ImportResponse, error) {
	if len(rows) == 0 {
		return nil, &MalformedImportError{Reason: ErrNoClassesFound.Error(), Err: ErrNoClassesFound}
	}

	for i := range rows {
		normalizeRow(&rows[i])
	}
	if fields := s.validateRows(rows); len(fields) > 0 {
		return nil, &MalformedImportError{Reason: "存在缺失或非法字段", Fields: fields, Err: ErrImportRejected}
	}

	resp := &dto.ImportResponse{
		DryRun: dryRun,
		Source: source,
		Rows:   toImportRows(rows),
	}
	if dryRun {
		resp.Message = fmt.Sprintf("Parsed %d classes (dry run, nothing saved).", len(rows))
		return resp, nil
	}

	models := make([]model.Routine, 0, len(rows))
	for _, r := range rows {
		models = append(models, toRoutineModel(r))
	}
	if err := s.repo.Routine.BatchCreate(ctx, models); err != nil {
		s.logger.Error("导入写入失败", zap.String("source", source), zap.Int("rows", len(models)), zap.Error(err))
		return nil, &MalformedImportError{Reason: ErrImportRejected.Error(), Err: errors.Join(ErrImportRejected, err)}
	}

	s.logger.Info("导入成功", zap.String("source", source), zap.Int("rows", len(models)))
	s.ctrl.Trigger(false)

	resp.Inserted = len(models)
	resp.Message = fmt.Sprintf("Successfully parsed and saved %d classes!", len(models))
	return resp, nil
}

func (s *importService) validateRows(rows []extractor.Row) map[string]string {
	fields := make(map[string]string)
	for i, r := range rows {
		err := s.validate.Struct(r)
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				fields[fmt.Sprintf("rows[%d].%s", i, fe.Field())] = fe.Tag()
			}
		}
	}
	return fields
}

// normalizeRow 去除首尾空白，时间截断为 HH:MM，星期宽松匹配
func normalizeRow(r *extractor.Row) {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Code = strings.TrimSpace(r.Code)
	r.Teacher = strings.TrimSpace(r.Teacher)
	r.TeacherInitial = strings.TrimSpace(r.TeacherInitial)
	r.Room = strings.TrimSpace(r.Room)
	r.Section = strings.TrimSpace(r.Section)
	r.Type = strings.TrimSpace(r.Type)
	if r.StartTime != "" {
		r.StartTime = schedule.TruncateHHMM(r.StartTime)
	}
	if r.EndTime != "" {
		r.EndTime = schedule.TruncateHHMM(r.EndTime)
	}
	if d, ok := schedule.ParseDay(r.Day); ok {
		r.Day = string(d)
	}
	if r.SubSection != nil && strings.TrimSpace(*r.SubSection) == "" {
		r.SubSection = nil
	}
}

func toRoutineModel(r extractor.Row) model.Routine {
	m := model.Routine{
		Subject:        r.Subject,
		Code:           r.Code,
		Teacher:        r.Teacher,
		TeacherInitial: r.TeacherInitial,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Room:           r.Room,
		Day:            r.Day,
		Section:        r.Section,
		SubSection:     r.SubSection,
		Credits:        r.Credits,
	}
	if r.Type != "" {
		typ := r.Type
		m.Type = &typ
	}
	return m
}

func toImportRows(rows []extractor.Row) []dto.ImportRowResponse {
	out := make([]dto.ImportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ImportRowResponse{
			Subject:        r.Subject,
			Code:           r.Code,
			Teacher:        r.Teacher,
			TeacherInitial: r.TeacherInitial,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			Room:           r.Room,
			Day:            r.Day,
			Type:           r.Type,
			Section:        r.Section,
			SubSection:     r.SubSection,
			Credits:        r.Credits,
		})
	}
	return out
}
