package model

// Profile 用户档案表 — 对应 profiles
type Profile struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	PasswordHash string `gorm:"type:varchar(100);not null"                     json:"-"`
	FullName     string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	SalaryLevel  string `gorm:"type:varchar(8);not null;default:'1.0'"         json:"salary_level"` // 0.9 | 1.0 | 1.1 | 2.0 | 2.1 | 2.2 | 2.5
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }
