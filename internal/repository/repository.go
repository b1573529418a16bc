package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Profile       ProfileRepository
	Entry         EntryRepository
	Supplementary SupplementaryRepository
	QuotaSetting  QuotaSettingRepository
	SelectedQuota SelectedQuotaRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:       NewProfileRepo(db),
		Entry:         NewEntryRepo(db),
		Supplementary: NewSupplementaryRepo(db),
		QuotaSetting:  NewQuotaSettingRepo(db),
		SelectedQuota: NewSelectedQuotaRepo(db),
	}
}
