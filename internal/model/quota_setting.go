package model

// QuotaSetting 产品定额表 — 对应 quota_settings
// 每个产品编码在每个薪级下有一个日定额（单位产量）。
// 薪级列是固定枚举，不做动态列名拼接（见 internal/quota）。
type QuotaSetting struct {
	ProductCode string  `gorm:"type:varchar(50);primaryKey"         json:"product_code"`
	ProductName string  `gorm:"type:varchar(200);not null"          json:"product_name"`
	Level09     float64 `gorm:"column:level_0_9;not null;default:0" json:"level_0_9"`
	Level10     float64 `gorm:"column:level_1_0;not null;default:0" json:"level_1_0"`
	Level11     float64 `gorm:"column:level_1_1;not null;default:0" json:"level_1_1"`
	Level20     float64 `gorm:"column:level_2_0;not null;default:0" json:"level_2_0"`
	Level21     float64 `gorm:"column:level_2_1;not null;default:0" json:"level_2_1"`
	Level22     float64 `gorm:"column:level_2_2;not null;default:0" json:"level_2_2"`
	Level25     float64 `gorm:"column:level_2_5;not null;default:0" json:"level_2_5"`
	BaseModel
}

// TableName 指定表名
func (QuotaSetting) TableName() string { return "quota_settings" }
