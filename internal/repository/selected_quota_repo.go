package repository

import (
	"context"

	"gorm.io/gorm"

	"estron-track/backend/internal/model"
)

// SelectedQuotaRepository 用户快捷定额数据访问接口
type SelectedQuotaRepository interface {
	// ListByUser 查询用户全部快捷定额，按 z_index 升序，预载定额设置
	ListByUser(ctx context.Context, userID string) ([]model.UserSelectedQuota, error)
	Create(ctx context.Context, selection *model.UserSelectedQuota) error
	Delete(ctx context.Context, userID, productCode string) error
	// Reorder 按给定编码顺序重写 z_index（单事务内完成）
	Reorder(ctx context.Context, userID string, productCodes []string) error
}

type selectedQuotaRepo struct {
	db *gorm.DB
}

// NewSelectedQuotaRepo 创建 SelectedQuotaRepository 实例
func NewSelectedQuotaRepo(db *gorm.DB) SelectedQuotaRepository {
	return &selectedQuotaRepo{db: db}
}

func (r *selectedQuotaRepo) ListByUser(ctx context.Context, userID string) ([]model.UserSelectedQuota, error) {
	var selections []model.UserSelectedQuota
	err := r.db.WithContext(ctx).
		Preload("QuotaSetting").
		Where("user_id = ?", userID).
		Order("z_index ASC").
		Find(&selections).Error
	return selections, err
}

func (r *selectedQuotaRepo) Create(ctx context.Context, selection *model.UserSelectedQuota) error {
	return r.db.WithContext(ctx).Create(selection).Error
}

func (r *selectedQuotaRepo) Delete(ctx context.Context, userID, productCode string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_code = ?", userID, productCode).
		Delete(&model.UserSelectedQuota{}).Error
}

func (r *selectedQuotaRepo) Reorder(ctx context.Context, userID string, productCodes []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, code := range productCodes {
			err := tx.Model(&model.UserSelectedQuota{}).
				Where("user_id = ? AND product_code = ?", userID, code).
				Update("z_index", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
