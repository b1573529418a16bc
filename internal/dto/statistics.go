package dto

// ── 统计模块 DTO（聚合派生视图，不落库） ──

// DerivedEntry 单条产量记录的折算结果
type DerivedEntry struct {
	EntryID         string   `json:"entry_id"`
	ProductCode     string   `json:"product_code"`
	Quantity        *float64 `json:"quantity,omitempty"`
	WorkAmount      float64  `json:"work_amount"` // 折算工作量（四舍五入到 2 位）
	PONumber        *string  `json:"po_number,omitempty"`
	Box             *string  `json:"box,omitempty"`
	Batch           *string  `json:"batch,omitempty"`
	Verified        bool     `json:"verified"`
	QuotaPercentage float64  `json:"quota_percentage"`
}

// DailyProduction 单日聚合视图
type DailyProduction struct {
	Date            string                 `json:"date"`           // "2024-03-21"
	DayOfWeek       string                 `json:"day_of_week"`    // "周四"
	FormattedDate   string                 `json:"formatted_date"` // "21/03"
	Entries         []DerivedEntry         `json:"entries"`
	TotalWorkForDay float64                `json:"total_work_for_day"`
	Supplementary   *SupplementaryResponse `json:"supplementary,omitempty"`
}

// WeeklyStatistics 单周聚合视图
// Days 只含不晚于今天的日期：进行中的周按实际天数呈现，不补未来空天。
type WeeklyStatistics struct {
	WeekNumber      int               `json:"week_number"`
	Name            string            `json:"name"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	Days            []DailyProduction `json:"days"`
	TotalWeeklyWork float64           `json:"total_weekly_work"`
}

// MonthlyStatistics Estron 月聚合视图
type MonthlyStatistics struct {
	Year              int                `json:"year"`
	MonthNumber       int                `json:"month_number"`
	DisplayName       string             `json:"display_name"`
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	Weeks             []WeeklyStatistics `json:"weeks"`
	TotalMonthlyWork  float64            `json:"total_monthly_work"`
	WorkdaysElapsed   float64            `json:"workdays_elapsed"`
	TargetProductWork float64            `json:"target_product_work"` // 截至今日应完成的工作量
	TotalLeaveHours   float64            `json:"total_leave_hours"`
	TotalOvertime     float64            `json:"total_overtime_hours"`
	TotalMeetingMin   float64            `json:"total_meeting_minutes"`
}
