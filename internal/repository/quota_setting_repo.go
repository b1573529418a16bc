package repository

import (
	"context"

	"gorm.io/gorm"

	"estron-track/backend/internal/model"
)

// QuotaSettingRepository 产品定额数据访问接口
type QuotaSettingRepository interface {
	GetByCode(ctx context.Context, productCode string) (*model.QuotaSetting, error)
	// ListByCodes 批量查询定额；不存在的编码静默跳过
	ListByCodes(ctx context.Context, productCodes []string) ([]model.QuotaSetting, error)
	List(ctx context.Context) ([]model.QuotaSetting, error)
}

type quotaSettingRepo struct {
	db *gorm.DB
}

// NewQuotaSettingRepo 创建 QuotaSettingRepository 实例
func NewQuotaSettingRepo(db *gorm.DB) QuotaSettingRepository {
	return &quotaSettingRepo{db: db}
}

func (r *quotaSettingRepo) GetByCode(ctx context.Context, productCode string) (*model.QuotaSetting, error) {
	var setting model.QuotaSetting
	err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *quotaSettingRepo) ListByCodes(ctx context.Context, productCodes []string) ([]model.QuotaSetting, error) {
	if len(productCodes) == 0 {
		return nil, nil
	}
	var settings []model.QuotaSetting
	err := r.db.WithContext(ctx).
		Where("product_code IN ?", productCodes).
		Find(&settings).Error
	return settings, err
}

func (r *quotaSettingRepo) List(ctx context.Context) ([]model.QuotaSetting, error) {
	var settings []model.QuotaSetting
	err := r.db.WithContext(ctx).
		Order("product_code ASC").
		Find(&settings).Error
	return settings, err
}
