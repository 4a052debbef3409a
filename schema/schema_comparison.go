package schema

// ComparisonDetail holds the change of one URL between two audits.
type ComparisonDetail struct {
	URL             string  `json:"url"`
	BeforeTotal     float64 `json:"before_total"`
	AfterTotal      float64 `json:"after_total"`
	DeltaTotal      float64 `json:"delta_total"`
	BeforeScripting float64 `json:"before_scripting"`
	AfterScripting  float64 `json:"after_scripting"`
	DeltaScripting  float64 `json:"delta_scripting"`
	Status          Status  `json:"status"`
}

// ComparisonSummary holds the audit-level deltas.
type ComparisonSummary struct {
	BaseSource       string  `json:"base_source"`
	TargetSource     string  `json:"target_source"`
	BaseBootupMs     float64 `json:"base_bootup_ms"`
	TargetBootupMs   float64 `json:"target_bootup_ms"`
	DeltaBootupMs    float64 `json:"delta_bootup_ms"`
	BaseScore        float64 `json:"base_score"`
	TargetScore      float64 `json:"target_score"`
	DeltaScore       float64 `json:"delta_score"`
	DeltaTBTImpact   float64 `json:"delta_tbt_impact_ms"`
	NewURLCount      int     `json:"new_url_count"`
	InactiveURLCount int     `json:"inactive_url_count"`
}

// ComparisonResult is the full comparison of two audits.
type ComparisonResult struct {
	Details []ComparisonDetail `json:"details"`
	Summary ComparisonSummary  `json:"summary"`
}
