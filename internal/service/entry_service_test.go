package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/realtime"
)

// ── 测试辅助 ──

func setupTestEntryService() (EntryService, *mockEntryRepo, realtime.Bus) {
	repo, profiles, entries, _, quotas, _ := newTestRepository()

	profiles.profiles["user-1"] = &model.Profile{
		UserID: "user-1", Username: "worker01", SalaryLevel: "1.0",
	}
	quotas.settings["P-270"] = &model.QuotaSetting{
		ProductCode: "P-270", ProductName: "测试产品", Level10: 270,
	}

	bus := realtime.NewMemoryBus()
	svc := NewEntryService(repo, bus, zap.NewNop())
	return svc, entries, bus
}

// ── Create 测试 ──

func TestEntryService_Create_Success(t *testing.T) {
	svc, _, bus := setupTestEntryService()

	events, cancel := bus.Subscribe(context.Background(), "user-1")
	defer cancel()

	req := &dto.CreateEntryRequest{
		ProductCode: "P-270",
		EntryDate:   "2024-03-21",
		Quantity:    floatPtr(270),
	}
	result, err := svc.Create(context.Background(), "user-1", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.EntryDate != "2024-03-21" {
		t.Errorf("期望日期=2024-03-21，实际=%s", result.EntryDate)
	}
	if result.QuotaPercentage != 100 {
		t.Errorf("未指定速率应默认 100，实际=%v", result.QuotaPercentage)
	}

	// 写入后应发布 INSERT 事件
	select {
	case ev := <-events:
		if ev.Type != realtime.EventInsert || ev.Table != realtime.TableEntries {
			t.Errorf("期望 INSERT/entries 事件，实际=%s/%s", ev.Type, ev.Table)
		}
	default:
		t.Error("Create 后应发布变更事件")
	}
}

func TestEntryService_Create_UnknownProductCode(t *testing.T) {
	svc, _, _ := setupTestEntryService()

	req := &dto.CreateEntryRequest{
		ProductCode: "P-NONE",
		EntryDate:   "2024-03-21",
	}
	_, err := svc.Create(context.Background(), "user-1", req)
	if !errors.Is(err, ErrEntryQuotaNotFound) {
		t.Errorf("期望 ErrEntryQuotaNotFound，实际=%v", err)
	}
}

func TestEntryService_Create_InvalidDate(t *testing.T) {
	svc, _, _ := setupTestEntryService()

	req := &dto.CreateEntryRequest{ProductCode: "P-270", EntryDate: "21-03-2024"}
	_, err := svc.Create(context.Background(), "user-1", req)
	if !errors.Is(err, ErrEntryDateInvalid) {
		t.Errorf("期望 ErrEntryDateInvalid，实际=%v", err)
	}
}

// ── Update / Delete 测试 ──

func TestEntryService_Update_VerifiedRejected(t *testing.T) {
	svc, entries, _ := setupTestEntryService()
	ctx := context.Background()

	_ = entries.Create(ctx, &model.ProductionEntry{
		EntryID: "entry-1", UserID: "user-1", ProductCode: "P-270",
		Quantity: floatPtr(100), QuotaPercentage: 100, Verified: true,
	})

	_, err := svc.Update(ctx, "user-1", "entry-1", &dto.UpdateEntryRequest{Quantity: floatPtr(200)})
	if !errors.Is(err, ErrEntryVerified) {
		t.Errorf("期望 ErrEntryVerified，实际=%v", err)
	}

	if err := svc.Delete(ctx, "user-1", "entry-1"); !errors.Is(err, ErrEntryVerified) {
		t.Errorf("删除已审核记录期望 ErrEntryVerified，实际=%v", err)
	}
}

func TestEntryService_Update_NotOwner(t *testing.T) {
	svc, entries, _ := setupTestEntryService()
	ctx := context.Background()

	_ = entries.Create(ctx, &model.ProductionEntry{
		EntryID: "entry-1", UserID: "user-2", ProductCode: "P-270",
	})

	_, err := svc.Update(ctx, "user-1", "entry-1", &dto.UpdateEntryRequest{Quantity: floatPtr(200)})
	if !errors.Is(err, ErrEntryNotOwner) {
		t.Errorf("期望 ErrEntryNotOwner，实际=%v", err)
	}
}

func TestEntryService_Update_PartialPatch(t *testing.T) {
	svc, entries, _ := setupTestEntryService()
	ctx := context.Background()

	po := "PO-001"
	_ = entries.Create(ctx, &model.ProductionEntry{
		EntryID: "entry-1", UserID: "user-1", ProductCode: "P-270",
		PONumber: &po, Quantity: floatPtr(100), QuotaPercentage: 100,
	})

	result, err := svc.Update(ctx, "user-1", "entry-1", &dto.UpdateEntryRequest{Quantity: floatPtr(200)})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Quantity == nil || *result.Quantity != 200 {
		t.Errorf("期望数量=200，实际=%v", result.Quantity)
	}
	// 未提交的字段保持原值
	if result.PONumber == nil || *result.PONumber != "PO-001" {
		t.Errorf("PO 号不应被改写，实际=%v", result.PONumber)
	}
}

func TestEntryService_Delete_PublishesDeleteEvent(t *testing.T) {
	svc, entries, bus := setupTestEntryService()
	ctx := context.Background()

	_ = entries.Create(ctx, &model.ProductionEntry{
		EntryID: "entry-1", UserID: "user-1", ProductCode: "P-270",
	})
	events, cancel := bus.Subscribe(ctx, "user-1")
	defer cancel()

	if err := svc.Delete(ctx, "user-1", "entry-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := entries.GetByID(ctx, "entry-1"); err == nil {
		t.Error("记录应已删除")
	}

	select {
	case ev := <-events:
		if ev.Type != realtime.EventDelete {
			t.Errorf("期望 DELETE 事件，实际=%s", ev.Type)
		}
		if len(ev.Old) == 0 {
			t.Error("DELETE 事件应携带旧行")
		}
	default:
		t.Error("Delete 后应发布变更事件")
	}
}

func TestEntryService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestEntryService()

	err := svc.Delete(context.Background(), "user-1", "entry-none")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际=%v", err)
	}
}

// ── List 测试 ──

func TestEntryService_List_DateRange(t *testing.T) {
	svc, entries, _ := setupTestEntryService()
	ctx := context.Background()

	for _, date := range []string{"2024-03-20", "2024-03-21", "2024-04-20", "2024-04-21"} {
		_ = entries.Create(ctx, &model.ProductionEntry{
			UserID: "user-1", ProductCode: "P-270",
			EntryDate: testDate(t, date), QuotaPercentage: 100,
		})
	}

	result, err := svc.List(ctx, "user-1", &dto.EntryListRequest{
		DateStart: "2024-03-21", DateEnd: "2024-04-20",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	// 含两端，区间外的两条排除
	if len(result) != 2 {
		t.Errorf("期望 2 条记录，实际=%d", len(result))
	}
}
