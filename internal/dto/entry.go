package dto

// ── 产量记录模块 DTO ──

// CreateEntryRequest 创建产量记录请求
type CreateEntryRequest struct {
	ProductCode     string   `json:"product_code"     binding:"required,min=1,max=50"`
	EntryDate       string   `json:"entry_date"       binding:"required"` // "2024-03-21"
	PONumber        *string  `json:"po_number"        binding:"omitempty,max=50"`
	Quantity        *float64 `json:"quantity"         binding:"omitempty,gte=0"`
	QuotaPercentage *float64 `json:"quota_percentage" binding:"omitempty,gt=0,lte=200"` // 缺省按 100 处理
	Box             *string  `json:"box"              binding:"omitempty,max=50"`
	Batch           *string  `json:"batch"            binding:"omitempty,max=50"`
}

// UpdateEntryRequest 更新产量记录请求
type UpdateEntryRequest struct {
	ProductCode     *string  `json:"product_code"     binding:"omitempty,min=1,max=50"`
	PONumber        *string  `json:"po_number"        binding:"omitempty,max=50"`
	Quantity        *float64 `json:"quantity"         binding:"omitempty,gte=0"`
	QuotaPercentage *float64 `json:"quota_percentage" binding:"omitempty,gt=0,lte=200"`
	Box             *string  `json:"box"              binding:"omitempty,max=50"`
	Batch           *string  `json:"batch"            binding:"omitempty,max=50"`
}

// EntryListRequest 产量记录列表查询参数
type EntryListRequest struct {
	DateStart string `form:"date_start" binding:"required"`
	DateEnd   string `form:"date_end"   binding:"required"`
}

// EntryResponse 产量记录响应
type EntryResponse struct {
	EntryID         string   `json:"entry_id"`
	ProductCode     string   `json:"product_code"`
	EntryDate       string   `json:"entry_date"`
	PONumber        *string  `json:"po_number,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	QuotaPercentage float64  `json:"quota_percentage"`
	Box             *string  `json:"box,omitempty"`
	Batch           *string  `json:"batch,omitempty"`
	Verified        bool     `json:"verified"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}
