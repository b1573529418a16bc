package model

import "time"

// ProductionEntry 产量记录表 — 对应 production_entries
// 每条记录是一次产量填报：某日、某产品编码、数量与生产线速率百分比。
// verified=true 的记录已由线长审核，业务层拒绝修改与删除。
type ProductionEntry struct {
	EntryID         string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	UserID          string   `gorm:"type:uuid;not null;index:idx_entry_user_date"   json:"user_id"`
	ProductCode     string   `gorm:"type:varchar(50);not null"                      json:"product_code"`
	EntryDate       time.Time `gorm:"type:date;not null;index:idx_entry_user_date"  json:"entry_date"`
	PONumber        *string  `gorm:"type:varchar(50)"                               json:"po_number,omitempty"`
	Quantity        *float64 `gorm:"type:numeric(12,2)"                             json:"quantity,omitempty"`
	QuotaPercentage float64  `gorm:"type:numeric(6,2);not null;default:100"         json:"quota_percentage"` // 生产线速率（%），影响单位产量折算
	Box             *string  `gorm:"type:varchar(50)"                               json:"box,omitempty"`
	Batch           *string  `gorm:"type:varchar(50)"                               json:"batch,omitempty"`
	Verified        bool     `gorm:"not null;default:false"                         json:"verified"`
	BaseModel
}

// TableName 指定表名
func (ProductionEntry) TableName() string { return "production_entries" }
