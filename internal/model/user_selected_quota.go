package model

// UserSelectedQuota 用户快捷定额表 — 对应 user_selected_quotas
// 用户自选的产品编码子集，供快速填报；z_index 为用户拖拽排序位，持久化保存。
// (user_id, product_code) 复合唯一。
type UserSelectedQuota struct {
	SelectionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"selection_id"`
	UserID      string `gorm:"type:uuid;not null;uniqueIndex:uniq_sel_user_code"   json:"user_id"`
	ProductCode string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_sel_user_code" json:"product_code"`
	ZIndex      int    `gorm:"column:z_index;not null;default:0"                   json:"z_index"`
	BaseModel

	// 关联
	QuotaSetting *QuotaSetting `gorm:"foreignKey:ProductCode;references:ProductCode" json:"quota_setting,omitempty"`
}

// TableName 指定表名
func (UserSelectedQuota) TableName() string { return "user_selected_quotas" }
