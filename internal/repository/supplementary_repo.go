package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estron-track/backend/internal/model"
)

// SupplementaryRepository 每日补充数据访问接口
// 每个 (user_id, entry_date) 至多一行；Upsert 以该复合键冲突更新。
type SupplementaryRepository interface {
	Upsert(ctx context.Context, record *model.DailySupplementary) error
	GetByUserDate(ctx context.Context, userID string, date time.Time) (*model.DailySupplementary, error)
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.DailySupplementary, error)
	DeleteByUserDate(ctx context.Context, userID string, date time.Time) error
}

type supplementaryRepo struct {
	db *gorm.DB
}

// NewSupplementaryRepo 创建 SupplementaryRepository 实例
func NewSupplementaryRepo(db *gorm.DB) SupplementaryRepository {
	return &supplementaryRepo{db: db}
}

func (r *supplementaryRepo) Upsert(ctx context.Context, record *model.DailySupplementary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "entry_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"leave_hours", "overtime_hours", "meeting_minutes", "updated_at",
			}),
		}).
		Create(record).Error
}

func (r *supplementaryRepo) GetByUserDate(ctx context.Context, userID string, date time.Time) (*model.DailySupplementary, error) {
	var record model.DailySupplementary
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date = ?", userID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *supplementaryRepo) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.DailySupplementary, error) {
	var records []model.DailySupplementary
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date BETWEEN ? AND ?", userID, start, end).
		Order("entry_date ASC").
		Find(&records).Error
	return records, err
}

func (r *supplementaryRepo) DeleteByUserDate(ctx context.Context, userID string, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date = ?", userID, date).
		Delete(&model.DailySupplementary{}).Error
}
