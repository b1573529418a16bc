package model

import "time"

// DailySupplementary 每日补充数据表 — 对应 daily_supplementary
// 记录非生产时间：请假、加班、会议。每个 (user_id, entry_date) 至多一行；
// 三个数值字段全部为空时该行应被删除而不是保留空行（由 Service 层决定）。
type DailySupplementary struct {
	SupplementaryID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"supplementary_id"`
	UserID           string    `gorm:"type:uuid;not null;uniqueIndex:uniq_supp_user_date"  json:"user_id"`
	EntryDate        time.Time `gorm:"type:date;not null;uniqueIndex:uniq_supp_user_date"  json:"entry_date"`
	LeaveHours       *float64  `gorm:"type:numeric(5,2)"                                   json:"leave_hours,omitempty"`
	OvertimeHours    *float64  `gorm:"type:numeric(5,2)"                                   json:"overtime_hours,omitempty"`
	MeetingMinutes   *float64  `gorm:"type:numeric(7,2)"                                   json:"meeting_minutes,omitempty"`
	LeaveVerified    bool      `gorm:"not null;default:false"                              json:"leave_verified"`
	OvertimeVerified bool      `gorm:"not null;default:false"                              json:"overtime_verified"`
	MeetingVerified  bool      `gorm:"not null;default:false"                              json:"meeting_verified"`
	BaseModel
}

// TableName 指定表名
func (DailySupplementary) TableName() string { return "daily_supplementary" }

// IsEmpty 三个数值字段是否全部为空（为空则该行不应存在）
func (d *DailySupplementary) IsEmpty() bool {
	return d.LeaveHours == nil && d.OvertimeHours == nil && d.MeetingMinutes == nil
}
