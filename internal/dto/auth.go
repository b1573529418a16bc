package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username    string `json:"username"     binding:"required,min=3,max=50"`
	Password    string `json:"password"     binding:"required,min=6,max=72"`
	FullName    string `json:"full_name"    binding:"required,min=2,max=100"`
	SalaryLevel string `json:"salary_level" binding:"required"` // 0.9 | 1.0 | 1.1 | 2.0 | 2.1 | 2.2 | 2.5
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新响应
type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	Profile      *ProfileResponse `json:"profile,omitempty"`
}

// ProfileResponse 用户档案响应
type ProfileResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	SalaryLevel string `json:"salary_level"`
	CreatedAt   string `json:"created_at"`
}

// UpdateProfileRequest 更新档案请求
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name"    binding:"omitempty,min=2,max=100"`
	SalaryLevel *string `json:"salary_level"`
}
