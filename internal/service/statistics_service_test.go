package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"estron-track/backend/internal/fiscal"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/quota"
	"estron-track/backend/internal/repository"
)

// ── 测试辅助 ──

func floatPtr(v float64) *float64 { return &v }

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("测试日期无效 %s: %v", s, err)
	}
	return fiscal.Normalize(d)
}

func setupTestStatisticsService() (StatisticsService, *repository.Repository, *mockEntryRepo, *mockSupplementaryRepo, *mockQuotaSettingRepo, *mockSelectedQuotaRepo) {
	repo, profiles, entries, supp, quotas, selected := newTestRepository()

	profiles.profiles["user-1"] = &model.Profile{
		UserID:      "user-1",
		Username:    "worker01",
		FullName:    "测试工人",
		SalaryLevel: "1.0",
	}
	quotas.settings["P-270"] = &model.QuotaSetting{
		ProductCode: "P-270",
		ProductName: "测试产品",
		Level10:     270,
	}

	resolver := quota.NewResolver(zap.NewNop())
	svc := NewStatisticsService(repo, resolver, zap.NewNop())
	return svc, repo, entries, supp, quotas, selected
}

// ── ComputeWorkAmount 测试 ──

func TestStatisticsService_ComputeWorkAmount_RoundTrip(t *testing.T) {
	svc, _, _, _, quotas, _ := setupTestStatisticsService()

	// 数量等于日定额、速率 100% 时工作量应恰为 1.00
	entry := &model.ProductionEntry{
		ProductCode:     "P-270",
		Quantity:        floatPtr(270),
		QuotaPercentage: 100,
	}
	got := svc.ComputeWorkAmount(entry, quotas.settings["P-270"], "1.0")
	if got != 1.00 {
		t.Errorf("期望工作量=1.00，实际=%v", got)
	}
}

func TestStatisticsService_ComputeWorkAmount_HalfSpeedLine(t *testing.T) {
	svc, _, _, _, quotas, _ := setupTestStatisticsService()

	// 产线速率 50%：单位产量折算的工作量翻倍
	// (135/270)/(50/100) = 0.5/0.5 = 1.00
	entry := &model.ProductionEntry{
		ProductCode:     "P-270",
		Quantity:        floatPtr(135),
		QuotaPercentage: 50,
	}
	got := svc.ComputeWorkAmount(entry, quotas.settings["P-270"], "1.0")
	if got != 1.00 {
		t.Errorf("期望工作量=1.00，实际=%v", got)
	}
}

func TestStatisticsService_ComputeWorkAmount_ZeroCases(t *testing.T) {
	svc, _, _, _, quotas, _ := setupTestStatisticsService()

	// 数量缺失 → 0
	entry := &model.ProductionEntry{ProductCode: "P-270", QuotaPercentage: 100}
	if got := svc.ComputeWorkAmount(entry, quotas.settings["P-270"], "1.0"); got != 0 {
		t.Errorf("数量缺失期望工作量=0，实际=%v", got)
	}

	// 定额设置不存在 → 0
	entry.Quantity = floatPtr(100)
	if got := svc.ComputeWorkAmount(entry, nil, "1.0"); got != 0 {
		t.Errorf("无定额设置期望工作量=0，实际=%v", got)
	}

	// 薪级空 → 0
	if got := svc.ComputeWorkAmount(entry, quotas.settings["P-270"], ""); got != 0 {
		t.Errorf("薪级为空期望工作量=0，实际=%v", got)
	}
}

func TestStatisticsService_ComputeWorkAmount_UnsetPercentageDefaults100(t *testing.T) {
	svc, _, _, _, quotas, _ := setupTestStatisticsService()

	entry := &model.ProductionEntry{
		ProductCode: "P-270",
		Quantity:    floatPtr(270),
		// QuotaPercentage 零值，按 100 处理
	}
	if got := svc.ComputeWorkAmount(entry, quotas.settings["P-270"], "1.0"); got != 1.00 {
		t.Errorf("期望工作量=1.00，实际=%v", got)
	}
}

// ── SnapshotMonth 测试 ──

// seedMarchData 构造 2024-03-21 月的标准测试数据
func seedMarchData(t *testing.T, entries *mockEntryRepo, supp *mockSupplementaryRepo) {
	t.Helper()
	ctx := context.Background()

	_ = entries.Create(ctx, &model.ProductionEntry{
		UserID: "user-1", ProductCode: "P-270",
		EntryDate: testDate(t, "2024-03-21"),
		Quantity:  floatPtr(270), QuotaPercentage: 100,
	})
	_ = entries.Create(ctx, &model.ProductionEntry{
		UserID: "user-1", ProductCode: "P-270",
		EntryDate: testDate(t, "2024-03-21"),
		Quantity:  floatPtr(135), QuotaPercentage: 50,
	})
	_ = entries.Create(ctx, &model.ProductionEntry{
		UserID: "user-1", ProductCode: "P-270",
		EntryDate: testDate(t, "2024-03-22"),
		Quantity:  floatPtr(135), QuotaPercentage: 100,
	})
	_ = supp.Upsert(ctx, &model.DailySupplementary{
		UserID: "user-1", EntryDate: testDate(t, "2024-03-21"),
		LeaveHours:     floatPtr(4),
		OvertimeHours:  floatPtr(2),
		MeetingMinutes: floatPtr(60),
	})
}

func TestStatisticsService_SnapshotMonth_Aggregation(t *testing.T) {
	svc, _, entries, supp, _, _ := setupTestStatisticsService()
	seedMarchData(t, entries, supp)

	snapshot, err := svc.SnapshotMonth(context.Background(), "user-1",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-27"))
	if err != nil {
		t.Fatalf("SnapshotMonth 应成功: %v", err)
	}
	stats := snapshot.Stats

	if stats.StartDate != "2024-03-21" || stats.EndDate != "2024-04-20" {
		t.Errorf("期望区间 2024-03-21~2024-04-20，实际=%s~%s", stats.StartDate, stats.EndDate)
	}
	if stats.MonthNumber != 4 {
		t.Errorf("期望月号=4，实际=%d", stats.MonthNumber)
	}
	if len(stats.Weeks) != 5 {
		t.Fatalf("期望 5 个周，实际=%d", len(stats.Weeks))
	}

	// 第 1 周：2024-03-21(周四) ~ 2024-03-24(周日)，全部不晚于今天
	week1 := stats.Weeks[0]
	if len(week1.Days) != 4 {
		t.Fatalf("第1周期望 4 天，实际=%d", len(week1.Days))
	}

	day1 := week1.Days[0]
	if day1.Date != "2024-03-21" || day1.DayOfWeek != "周四" || day1.FormattedDate != "21/03" {
		t.Errorf("首日视图错误: %+v", day1)
	}
	if len(day1.Entries) != 2 {
		t.Fatalf("首日期望 2 条记录，实际=%d", len(day1.Entries))
	}
	if day1.TotalWorkForDay != 2.00 {
		t.Errorf("首日期望工作量合计=2.00，实际=%v", day1.TotalWorkForDay)
	}
	if day1.Supplementary == nil || day1.Supplementary.LeaveHours == nil || *day1.Supplementary.LeaveHours != 4 {
		t.Error("首日应挂接补充数据（请假 4 小时）")
	}

	if week1.TotalWeeklyWork != 2.50 {
		t.Errorf("第1周期望合计=2.50，实际=%v", week1.TotalWeeklyWork)
	}
	if stats.TotalMonthlyWork != 2.50 {
		t.Errorf("期望月合计=2.50，实际=%v", stats.TotalMonthlyWork)
	}

	// 已过标准工作日 2024-03-21 ~ 2024-03-27：四五 1+1，六 0.5，日 0，一二三 1+1+1
	if stats.WorkdaysElapsed != 5.5 {
		t.Errorf("期望已过工作日=5.5，实际=%v", stats.WorkdaysElapsed)
	}
	// 应完成 = 5.5 + 2/8 - 4/8 - 60/60/8 = 5.125 → 5.13
	if stats.TargetProductWork != 5.13 {
		t.Errorf("期望应完成工作量=5.13，实际=%v", stats.TargetProductWork)
	}
	if stats.TotalLeaveHours != 4 || stats.TotalOvertime != 2 || stats.TotalMeetingMin != 60 {
		t.Errorf("补充数据合计错误: leave=%v ot=%v meeting=%v",
			stats.TotalLeaveHours, stats.TotalOvertime, stats.TotalMeetingMin)
	}
}

func TestStatisticsService_SnapshotMonth_FutureDaysHidden(t *testing.T) {
	svc, _, entries, supp, _, _ := setupTestStatisticsService()
	seedMarchData(t, entries, supp)

	snapshot, err := svc.SnapshotMonth(context.Background(), "user-1",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-27"))
	if err != nil {
		t.Fatalf("SnapshotMonth 应成功: %v", err)
	}

	// 第 2 周 2024-03-25 ~ 2024-03-31，今天是 03-27：只呈现 3 天
	week2 := snapshot.Stats.Weeks[1]
	if len(week2.Days) != 3 {
		t.Errorf("第2周期望 3 个可见天，实际=%d", len(week2.Days))
	}
	// 未来周不含任何天
	if len(snapshot.Stats.Weeks[4].Days) != 0 {
		t.Errorf("未来周不应包含天，实际=%d", len(snapshot.Stats.Weeks[4].Days))
	}
}

func TestStatisticsService_SnapshotMonth_HistoricalCodeStillResolves(t *testing.T) {
	svc, _, entries, _, quotas, selected := setupTestStatisticsService()
	ctx := context.Background()

	// 历史记录用过 P-270 但快捷定额里只剩 P-500
	quotas.settings["P-500"] = &model.QuotaSetting{
		ProductCode: "P-500", ProductName: "另一产品", Level10: 500,
	}
	_ = selected.Create(ctx, &model.UserSelectedQuota{
		UserID: "user-1", ProductCode: "P-500", ZIndex: 0,
	})
	_ = entries.Create(ctx, &model.ProductionEntry{
		UserID: "user-1", ProductCode: "P-270",
		EntryDate: testDate(t, "2024-03-21"),
		Quantity:  floatPtr(270), QuotaPercentage: 100,
	})

	snapshot, err := svc.SnapshotMonth(ctx, "user-1",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-27"))
	if err != nil {
		t.Fatalf("SnapshotMonth 应成功: %v", err)
	}

	// 两个编码都应在解析结果中
	if _, ok := snapshot.Quotas["P-270"]; !ok {
		t.Error("历史编码 P-270 应被解析")
	}
	if _, ok := snapshot.Quotas["P-500"]; !ok {
		t.Error("快捷定额编码 P-500 应被解析")
	}
	if got := snapshot.Stats.Weeks[0].Days[0].TotalWorkForDay; got != 1.00 {
		t.Errorf("历史编码折算错误，期望=1.00，实际=%v", got)
	}
}

func TestStatisticsService_SnapshotMonth_TargetFlooredAtZero(t *testing.T) {
	svc, _, _, supp, _, _ := setupTestStatisticsService()
	ctx := context.Background()

	// 请假远超已过工作日
	_ = supp.Upsert(ctx, &model.DailySupplementary{
		UserID: "user-1", EntryDate: testDate(t, "2024-03-21"),
		LeaveHours: floatPtr(200),
	})

	snapshot, err := svc.SnapshotMonth(ctx, "user-1",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-22"))
	if err != nil {
		t.Fatalf("SnapshotMonth 应成功: %v", err)
	}
	if snapshot.Stats.TargetProductWork != 0 {
		t.Errorf("应完成工作量下限为 0，实际=%v", snapshot.Stats.TargetProductWork)
	}
}

func TestStatisticsService_SnapshotMonth_UnknownCodeZeroWork(t *testing.T) {
	svc, _, entries, _, _, _ := setupTestStatisticsService()
	ctx := context.Background()

	// 没有定额设置的编码折算为 0，不报错
	_ = entries.Create(ctx, &model.ProductionEntry{
		UserID: "user-1", ProductCode: "P-MISSING",
		EntryDate: testDate(t, "2024-03-21"),
		Quantity:  floatPtr(100), QuotaPercentage: 100,
	})

	snapshot, err := svc.SnapshotMonth(ctx, "user-1",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-27"))
	if err != nil {
		t.Fatalf("SnapshotMonth 应成功: %v", err)
	}
	day := snapshot.Stats.Weeks[0].Days[0]
	if len(day.Entries) != 1 || day.Entries[0].WorkAmount != 0 {
		t.Errorf("未知编码期望工作量=0，实际=%+v", day.Entries)
	}
}

func TestStatisticsService_SnapshotMonth_ProfileMissing(t *testing.T) {
	svc, _, _, _, _, _ := setupTestStatisticsService()

	_, err := svc.SnapshotMonth(context.Background(), "user-none",
		testDate(t, "2024-03-21"), testDate(t, "2024-03-27"))
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("期望 ErrProfileNotFound，实际=%v", err)
	}
}

// ── Month / Week / Daily 入口测试 ──

func TestStatisticsService_Month_InvalidDate(t *testing.T) {
	svc, _, _, _, _, _ := setupTestStatisticsService()

	_, err := svc.Month(context.Background(), "user-1", "21/03/2024")
	if !errors.Is(err, ErrStatsDateInvalid) {
		t.Errorf("期望 ErrStatsDateInvalid，实际=%v", err)
	}
}

func TestStatisticsService_Week(t *testing.T) {
	svc, _, entries, supp, _, _ := setupTestStatisticsService()
	seedMarchData(t, entries, supp)

	week, err := svc.Week(context.Background(), "user-1", "2024-03-22")
	if err != nil {
		t.Fatalf("Week 应成功: %v", err)
	}
	if week.WeekNumber != 1 || week.Name != "第1周" {
		t.Errorf("期望第1周，实际=%+v", week)
	}
	// 测试日期在过去，整周可见
	if len(week.Days) != 4 {
		t.Errorf("期望 4 天，实际=%d", len(week.Days))
	}
	if week.TotalWeeklyWork != 2.50 {
		t.Errorf("期望周合计=2.50，实际=%v", week.TotalWeeklyWork)
	}
}

func TestStatisticsService_Daily(t *testing.T) {
	svc, _, entries, supp, _, _ := setupTestStatisticsService()
	seedMarchData(t, entries, supp)

	day, err := svc.Daily(context.Background(), "user-1", "2024-03-21")
	if err != nil {
		t.Fatalf("Daily 应成功: %v", err)
	}
	if day.TotalWorkForDay != 2.00 {
		t.Errorf("期望日合计=2.00，实际=%v", day.TotalWorkForDay)
	}
	if day.Supplementary == nil {
		t.Error("应挂接补充数据")
	}
}

// [自证通过] internal/service/statistics_service_test.go
