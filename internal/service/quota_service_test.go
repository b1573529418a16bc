package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/quota"
)

// ── 测试辅助 ──

func setupTestQuotaService() (QuotaService, *mockQuotaSettingRepo, *mockSelectedQuotaRepo) {
	repo, profiles, _, _, quotas, selected := newTestRepository()

	profiles.profiles["user-1"] = &model.Profile{
		UserID: "user-1", Username: "worker01", SalaryLevel: "2.0",
	}
	quotas.settings["P-A"] = &model.QuotaSetting{
		ProductCode: "P-A", ProductName: "产品A", Level10: 100, Level20: 150,
	}
	quotas.settings["P-B"] = &model.QuotaSetting{
		ProductCode: "P-B", ProductName: "产品B", Level10: 200, Level20: 250,
	}

	resolver := quota.NewResolver(zap.NewNop())
	svc := NewQuotaService(repo, resolver, zap.NewNop())
	return svc, quotas, selected
}

// ── 查询测试 ──

func TestQuotaService_GetSetting(t *testing.T) {
	svc, _, _ := setupTestQuotaService()

	setting, err := svc.GetSetting(context.Background(), "P-A")
	if err != nil {
		t.Fatalf("GetSetting 应成功: %v", err)
	}
	if setting.ProductName != "产品A" {
		t.Errorf("期望名称=产品A，实际=%s", setting.ProductName)
	}
	if setting.Levels["2.0"] != 150 {
		t.Errorf("期望 2.0 级定额=150，实际=%v", setting.Levels["2.0"])
	}

	_, err = svc.GetSetting(context.Background(), "P-NONE")
	if !errors.Is(err, ErrQuotaSettingNotFound) {
		t.Errorf("期望 ErrQuotaSettingNotFound，实际=%v", err)
	}
}

// ── 快捷定额测试 ──

func TestQuotaService_SelectAppendsToEnd(t *testing.T) {
	svc, _, _ := setupTestQuotaService()
	ctx := context.Background()

	first, err := svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-A"})
	if err != nil {
		t.Fatalf("Select 应成功: %v", err)
	}
	if first.ZIndex != 0 {
		t.Errorf("首个快捷定额期望 z_index=0，实际=%d", first.ZIndex)
	}
	// 日定额按用户薪级（2.0）解析
	if first.DailyQuota != 150 {
		t.Errorf("期望日定额=150，实际=%v", first.DailyQuota)
	}

	second, err := svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-B"})
	if err != nil {
		t.Fatalf("二次 Select 应成功: %v", err)
	}
	if second.ZIndex != 1 {
		t.Errorf("追加到末尾期望 z_index=1，实际=%d", second.ZIndex)
	}
}

func TestQuotaService_SelectDuplicateRejected(t *testing.T) {
	svc, _, _ := setupTestQuotaService()
	ctx := context.Background()

	if _, err := svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-A"}); err != nil {
		t.Fatalf("Select 应成功: %v", err)
	}
	_, err := svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-A"})
	if !errors.Is(err, ErrQuotaAlreadySelected) {
		t.Errorf("期望 ErrQuotaAlreadySelected，实际=%v", err)
	}
}

func TestQuotaService_SelectUnknownCode(t *testing.T) {
	svc, _, _ := setupTestQuotaService()

	_, err := svc.Select(context.Background(), "user-1", &dto.SelectQuotaRequest{ProductCode: "P-NONE"})
	if !errors.Is(err, ErrQuotaSettingNotFound) {
		t.Errorf("期望 ErrQuotaSettingNotFound，实际=%v", err)
	}
}

func TestQuotaService_Reorder(t *testing.T) {
	svc, _, _ := setupTestQuotaService()
	ctx := context.Background()

	_, _ = svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-A"})
	_, _ = svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-B"})

	err := svc.Reorder(ctx, "user-1", &dto.ReorderQuotasRequest{ProductCodes: []string{"P-B", "P-A"}})
	if err != nil {
		t.Fatalf("Reorder 应成功: %v", err)
	}

	list, err := svc.ListSelected(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSelected 应成功: %v", err)
	}
	if len(list) != 2 || list[0].ProductCode != "P-B" || list[1].ProductCode != "P-A" {
		t.Errorf("重排序后顺序错误: %+v", list)
	}
}

func TestQuotaService_ReorderMismatchRejected(t *testing.T) {
	svc, _, _ := setupTestQuotaService()
	ctx := context.Background()

	_, _ = svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-A"})
	_, _ = svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-B"})

	// 编码集合不一致
	err := svc.Reorder(ctx, "user-1", &dto.ReorderQuotasRequest{ProductCodes: []string{"P-B", "P-X"}})
	if !errors.Is(err, ErrQuotaReorderMismatch) {
		t.Errorf("期望 ErrQuotaReorderMismatch，实际=%v", err)
	}

	// 数量不一致
	err = svc.Reorder(ctx, "user-1", &dto.ReorderQuotasRequest{ProductCodes: []string{"P-A"}})
	if !errors.Is(err, ErrQuotaReorderMismatch) {
		t.Errorf("期望 ErrQuotaReorderMismatch，实际=%v", err)
	}
}

func TestQuotaService_ListSelected_ResolvesBySalaryLevel(t *testing.T) {
	svc, _, _ := setupTestQuotaService()
	ctx := context.Background()

	_, _ = svc.Select(ctx, "user-1", &dto.SelectQuotaRequest{ProductCode: "P-B"})

	list, err := svc.ListSelected(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSelected 应成功: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条，实际=%d", len(list))
	}
	if list[0].DailyQuota != 250 {
		t.Errorf("2.0 薪级期望日定额=250，实际=%v", list[0].DailyQuota)
	}
	if list[0].ProductName != "产品B" {
		t.Errorf("期望名称=产品B，实际=%s", list[0].ProductName)
	}
}
