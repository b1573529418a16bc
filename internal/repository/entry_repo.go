package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"estron-track/backend/internal/model"
	pkgerrors "estron-track/backend/pkg/errors"
)

// EntryRepository 产量记录数据访问接口
type EntryRepository interface {
	Create(ctx context.Context, entry *model.ProductionEntry) error
	GetByID(ctx context.Context, entryID string) (*model.ProductionEntry, error)
	// ListByDateRange 查询用户在 [start, end]（含两端）内的全部记录，按日期与创建时间升序
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.ProductionEntry, error)
	Update(ctx context.Context, entry *model.ProductionEntry) error
	Delete(ctx context.Context, entryID string) error
}

type entryRepo struct {
	db *gorm.DB
}

// NewEntryRepo 创建 EntryRepository 实例
func NewEntryRepo(db *gorm.DB) EntryRepository {
	return &entryRepo{db: db}
}

func (r *entryRepo) Create(ctx context.Context, entry *model.ProductionEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *entryRepo) GetByID(ctx context.Context, entryID string) (*model.ProductionEntry, error) {
	var entry model.ProductionEntry
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepo) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.ProductionEntry, error) {
	var entries []model.ProductionEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date BETWEEN ? AND ?", userID, start, end).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepo) Update(ctx context.Context, entry *model.ProductionEntry) error {
	result := r.db.WithContext(ctx).Save(entry)
	if result.Error != nil {
		return result.Error
	}
	// 读取后、写回前被并发删除
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleWrite
	}
	return nil
}

func (r *entryRepo) Delete(ctx context.Context, entryID string) error {
	result := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Delete(&model.ProductionEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleWrite
	}
	return nil
}
