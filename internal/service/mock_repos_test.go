package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"estron-track/backend/internal/model"
	"estron-track/backend/internal/repository"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.UserID == "" {
		profile.UserID = "user-" + profile.Username
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, userID string) (*model.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

// ── Mock EntryRepository ──

type mockEntryRepo struct {
	entries map[string]*model.ProductionEntry
	nextID  int
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[string]*model.ProductionEntry)}
}

func (m *mockEntryRepo) Create(_ context.Context, entry *model.ProductionEntry) error {
	if entry.EntryID == "" {
		m.nextID++
		entry.EntryID = fmt.Sprintf("entry-%d", m.nextID)
	}
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, entryID string) (*model.ProductionEntry, error) {
	if e, ok := m.entries[entryID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) ListByDateRange(_ context.Context, userID string, start, end time.Time) ([]model.ProductionEntry, error) {
	var result []model.ProductionEntry
	for _, e := range m.entries {
		if e.UserID == userID && !e.EntryDate.Before(start) && !e.EntryDate.After(end) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EntryDate.Before(result[j].EntryDate)
	})
	return result, nil
}

func (m *mockEntryRepo) Update(_ context.Context, entry *model.ProductionEntry) error {
	m.entries[entry.EntryID] = entry
	return nil
}

func (m *mockEntryRepo) Delete(_ context.Context, entryID string) error {
	delete(m.entries, entryID)
	return nil
}

// ── Mock SupplementaryRepository ──

type mockSupplementaryRepo struct {
	records map[string]*model.DailySupplementary // key: userID + "|" + 日期
	nextID  int
}

func newMockSupplementaryRepo() *mockSupplementaryRepo {
	return &mockSupplementaryRepo{records: make(map[string]*model.DailySupplementary)}
}

func suppKey(userID string, date time.Time) string {
	return userID + "|" + date.Format(model.DateLayout)
}

func (m *mockSupplementaryRepo) Upsert(_ context.Context, record *model.DailySupplementary) error {
	key := suppKey(record.UserID, record.EntryDate)
	if existing, ok := m.records[key]; ok {
		record.SupplementaryID = existing.SupplementaryID
		record.LeaveVerified = existing.LeaveVerified
		record.OvertimeVerified = existing.OvertimeVerified
		record.MeetingVerified = existing.MeetingVerified
	} else if record.SupplementaryID == "" {
		m.nextID++
		record.SupplementaryID = fmt.Sprintf("supp-%d", m.nextID)
	}
	m.records[key] = record
	return nil
}

func (m *mockSupplementaryRepo) GetByUserDate(_ context.Context, userID string, date time.Time) (*model.DailySupplementary, error) {
	if r, ok := m.records[suppKey(userID, date)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSupplementaryRepo) ListByDateRange(_ context.Context, userID string, start, end time.Time) ([]model.DailySupplementary, error) {
	var result []model.DailySupplementary
	for _, r := range m.records {
		if r.UserID == userID && !r.EntryDate.Before(start) && !r.EntryDate.After(end) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EntryDate.Before(result[j].EntryDate)
	})
	return result, nil
}

func (m *mockSupplementaryRepo) DeleteByUserDate(_ context.Context, userID string, date time.Time) error {
	delete(m.records, suppKey(userID, date))
	return nil
}

// ── Mock QuotaSettingRepository ──

type mockQuotaSettingRepo struct {
	settings map[string]*model.QuotaSetting
}

func newMockQuotaSettingRepo() *mockQuotaSettingRepo {
	return &mockQuotaSettingRepo{settings: make(map[string]*model.QuotaSetting)}
}

func (m *mockQuotaSettingRepo) GetByCode(_ context.Context, productCode string) (*model.QuotaSetting, error) {
	if s, ok := m.settings[productCode]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuotaSettingRepo) ListByCodes(_ context.Context, productCodes []string) ([]model.QuotaSetting, error) {
	var result []model.QuotaSetting
	for _, code := range productCodes {
		if s, ok := m.settings[code]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockQuotaSettingRepo) List(_ context.Context) ([]model.QuotaSetting, error) {
	var codes []string
	for code := range m.settings {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var result []model.QuotaSetting
	for _, code := range codes {
		result = append(result, *m.settings[code])
	}
	return result, nil
}

// ── Mock SelectedQuotaRepository ──

type mockSelectedQuotaRepo struct {
	selections map[string]*model.UserSelectedQuota // key: userID + "|" + productCode
	quotas     *mockQuotaSettingRepo               // 用于模拟 Preload("QuotaSetting")
	nextID     int
}

func newMockSelectedQuotaRepo(quotas *mockQuotaSettingRepo) *mockSelectedQuotaRepo {
	return &mockSelectedQuotaRepo{
		selections: make(map[string]*model.UserSelectedQuota),
		quotas:     quotas,
	}
}

func selKey(userID, productCode string) string {
	return userID + "|" + productCode
}

func (m *mockSelectedQuotaRepo) ListByUser(_ context.Context, userID string) ([]model.UserSelectedQuota, error) {
	var result []model.UserSelectedQuota
	for _, sel := range m.selections {
		if sel.UserID != userID {
			continue
		}
		item := *sel
		if m.quotas != nil {
			if setting, ok := m.quotas.settings[sel.ProductCode]; ok {
				item.QuotaSetting = setting
			}
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ZIndex < result[j].ZIndex
	})
	return result, nil
}

func (m *mockSelectedQuotaRepo) Create(_ context.Context, selection *model.UserSelectedQuota) error {
	if selection.SelectionID == "" {
		m.nextID++
		selection.SelectionID = fmt.Sprintf("sel-%d", m.nextID)
	}
	m.selections[selKey(selection.UserID, selection.ProductCode)] = selection
	return nil
}

func (m *mockSelectedQuotaRepo) Delete(_ context.Context, userID, productCode string) error {
	delete(m.selections, selKey(userID, productCode))
	return nil
}

func (m *mockSelectedQuotaRepo) Reorder(_ context.Context, userID string, productCodes []string) error {
	for i, code := range productCodes {
		if sel, ok := m.selections[selKey(userID, code)]; ok {
			sel.ZIndex = i
		}
	}
	return nil
}

// ── 测试装配 ──

// newTestRepository 把全部 mock 装进 Repository 聚合
func newTestRepository() (*repository.Repository, *mockProfileRepo, *mockEntryRepo, *mockSupplementaryRepo, *mockQuotaSettingRepo, *mockSelectedQuotaRepo) {
	profiles := newMockProfileRepo()
	entries := newMockEntryRepo()
	supp := newMockSupplementaryRepo()
	quotas := newMockQuotaSettingRepo()
	selected := newMockSelectedQuotaRepo(quotas)

	repo := &repository.Repository{
		Profile:       profiles,
		Entry:         entries,
		Supplementary: supp,
		QuotaSetting:  quotas,
		SelectedQuota: selected,
	}
	return repo, profiles, entries, supp, quotas, selected
}
