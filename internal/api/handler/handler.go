package handler

import "estron-track/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	Entry         *EntryHandler
	Supplementary *SupplementaryHandler
	Quota         *QuotaHandler
	Statistics    *StatisticsHandler
	Calendar      *CalendarHandler
	Stream        *StreamHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		Entry:         NewEntryHandler(svc.Entry),
		Supplementary: NewSupplementaryHandler(svc.Supplementary),
		Quota:         NewQuotaHandler(svc.Quota),
		Statistics:    NewStatisticsHandler(svc.Statistics),
		Calendar:      NewCalendarHandler(),
		Stream:        NewStreamHandler(svc.Sessions),
		Export:        NewExportHandler(svc.Export),
	}
}
