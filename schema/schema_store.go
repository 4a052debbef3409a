package schema

import "time"

// AuditRunRecord represents a row from the bootup_audit_runs table.
type AuditRunRecord struct {
	RunID             int64
	Source            string
	PageURL           string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	Multiplier        float64
	TotalBootupTimeMs float64
	TBTImpactMs       float64
	Score             float64
	NotApplicable     bool
	ExtensionOverhead bool
	ConfigParams      *string
}

// URLResultRecord represents a row from the bootup_url_results table.
type URLResultRecord struct {
	RunID              int64     `parquet:"run_id"`
	Rank               int32     `parquet:"rank"`
	URL                string    `parquet:"url,snappy"`
	AnalysisTime       time.Time `parquet:"analysis_time,timestamp"`
	Total              float64   `parquet:"total_ms"`
	Scripting          float64   `parquet:"scripting_ms"`
	ScriptParseCompile float64   `parquet:"script_parse_compile_ms"`
}

// FaultRecord represents a row from the bootup_faults table.
type FaultRecord struct {
	FaultID  string
	Audit    string
	Level    string
	Source   string
	Message  string
	Occurred time.Time
}
