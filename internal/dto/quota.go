package dto

// ── 定额模块 DTO ──

// QuotaSettingResponse 产品定额响应
type QuotaSettingResponse struct {
	ProductCode string             `json:"product_code"`
	ProductName string             `json:"product_name"`
	Levels      map[string]float64 `json:"levels"` // 薪级 → 日定额
}

// SelectQuotaRequest 添加快捷定额请求
type SelectQuotaRequest struct {
	ProductCode string `json:"product_code" binding:"required,min=1,max=50"`
}

// ReorderQuotasRequest 快捷定额重排序请求
// ProductCodes 为用户期望的完整新顺序（z_index 按下标回写）。
type ReorderQuotasRequest struct {
	ProductCodes []string `json:"product_codes" binding:"required,min=1"`
}

// SelectedQuotaResponse 快捷定额响应
type SelectedQuotaResponse struct {
	SelectionID string  `json:"selection_id"`
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	ZIndex      int     `json:"z_index"`
	DailyQuota  float64 `json:"daily_quota"` // 按当前用户薪级解析
}
