package config

import "time"

const (
	DefaultTimeZone     = "America/Sao_Paulo"
	DefaultSalesChannel = "iFood"

	// MaxUploadBytes bounds the multipart form parsed for an upload.
	MaxUploadBytes = 32 << 20

	DefaultServicePort = 4143
	DefaultGatewayPort = 8081

	DefaultHistoryRetentionDays = 30
	DefaultHistorySchedule      = "0 3 * * *" // daily at 03:00
	DefaultExportSweepSchedule  = "*/10 * * * *"
	DefaultExportTTL            = 30 * time.Minute
	DefaultPingInterval         = 30 * time.Second

	ExportFilePrefix = "dados_exportados"
	ExportSheetName  = "Cancelamentos"
	SummarySheetName = "Resumo"
)

// AllowedExtensions are the upload formats the sheet parser understands.
var AllowedExtensions = []string{".xlsx", ".xls", ".csv"}
