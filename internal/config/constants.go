package config

// Application constants shared across the pipeline
const (
	// Application Info
	AppName    = "fraudcli"
	AppVersion = "1.2.0"

	// Environment variable namespace
	EnvPrefix = "FRAUDCLI"

	// Default file locations (relative to the working directory)
	DefaultInputFile   = "data/df_fraud_credit.csv"
	DefaultCleanedFile = "data/df_fraud_credit_cleaned.csv"
	DefaultReportsDir  = "data/reports"
	DefaultLogsDir     = "logs"

	// Well-known report files written under the reports directory
	RegionRiskReportFile = "region_risk_stats.csv"
	TopSalesReportFile   = "top_sale_addresses.csv"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stderr"
	DefaultLogFile   = "logs/fraudcli.log"

	// Telemetry Settings
	DefaultTraceExporter = "none"
	DefaultEnvironment   = "development"
)
