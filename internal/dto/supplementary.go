package dto

// ── 每日补充数据模块 DTO ──

// UpsertSupplementaryRequest 写入每日补充数据请求
// 三个数值字段全部为空表示清空当天记录（行将被删除）。
type UpsertSupplementaryRequest struct {
	EntryDate      string   `json:"entry_date"      binding:"required"`
	LeaveHours     *float64 `json:"leave_hours"     binding:"omitempty,gte=0,lte=24"`
	OvertimeHours  *float64 `json:"overtime_hours"  binding:"omitempty,gte=0,lte=24"`
	MeetingMinutes *float64 `json:"meeting_minutes" binding:"omitempty,gte=0,lte=1440"`
}

// SupplementaryResponse 每日补充数据响应
type SupplementaryResponse struct {
	SupplementaryID  string   `json:"supplementary_id"`
	EntryDate        string   `json:"entry_date"`
	LeaveHours       *float64 `json:"leave_hours,omitempty"`
	OvertimeHours    *float64 `json:"overtime_hours,omitempty"`
	MeetingMinutes   *float64 `json:"meeting_minutes,omitempty"`
	LeaveVerified    bool     `json:"leave_verified"`
	OvertimeVerified bool     `json:"overtime_verified"`
	MeetingVerified  bool     `json:"meeting_verified"`
}

// UpsertSupplementaryResponse 写入结果
// Deleted=true 表示请求导致当天记录被删除（内容为空）。
type UpsertSupplementaryResponse struct {
	Deleted bool                   `json:"deleted"`
	Record  *SupplementaryResponse `json:"record,omitempty"`
}
