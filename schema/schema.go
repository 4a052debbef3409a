// Package schema holds the data types shared by the bootup-time audit.
package schema

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	// ErrNoTasks means the bundle carries no main-thread task list for the pass.
	ErrNoTasks = errors.New("no main-thread tasks")

	// ErrNoNetworkRecords means the bundle carries no network log for the pass.
	ErrNoNetworkRecords = errors.New("no network records")

	// ErrPassNotFound means the requested pass id is absent from the bundle.
	ErrPassNotFound = errors.New("pass not found")

	// ErrTBTUnavailable means the blocking-impact tasks could not be produced.
	ErrTBTUnavailable = errors.New("tbt impact unavailable")

	// ErrUnknownTaskGroup means a task group id outside the closed set.
	ErrUnknownTaskGroup = errors.New("unknown task group")

	// ErrNegativeDuration means a task carried a negative self time.
	ErrNegativeDuration = errors.New("negative duration")

	// ErrBundleTooLarge means a bundle decompressed past the size cap.
	ErrBundleTooLarge = errors.New("bundle too large")

	// ErrInvalidCurve means the log-normal control points are unusable.
	ErrInvalidCurve = errors.New("invalid scoring curve")
)

// MainThreadTask is one classified unit of main-thread work.
type MainThreadTask struct {
	AttributableURLs []string  `json:"attributable_urls"`
	Group            TaskGroup `json:"group"`
	SelfTime         float64   `json:"self_time"` // ms, excluding children
}

// NetworkRecord is one fetched resource in the page's network log.
type NetworkRecord struct {
	RequestID    string `json:"request_id"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
}

// TBTImpactTask is a task annotated with its own blocking-time contribution.
type TBTImpactTask struct {
	Group         TaskGroup `json:"group"`
	SelfTBTImpact float64   `json:"self_tbt_impact"` // ms
}

// Settings are the run settings recorded with a trace.
type Settings struct {
	ThrottlingMethod      ThrottlingMethod `json:"throttling_method"`
	CPUSlowdownMultiplier float64          `json:"cpu_slowdown_multiplier"`
}

// Multiplier returns the factor raw durations are scaled by.
func (s Settings) Multiplier() float64 {
	if s.ThrottlingMethod == SimulateThrottling && s.CPUSlowdownMultiplier > 0 {
		return s.CPUSlowdownMultiplier
	}
	return 1
}

// MetricContext is what a blocking-impact computation needs to locate its inputs.
type MetricContext struct {
	Pass     string   `json:"pass"`
	Settings Settings `json:"settings"`
	PageURL  string   `json:"page_url"`
	AuditID  string   `json:"audit_id"`
}

// URLTimings is the raw per-group time attributed to one URL.
type URLTimings struct {
	URL    string       `json:"url"`
	Groups GroupTimings `json:"groups"`
}

// URLResult is one row of the ranked bootup table. All values are scaled.
type URLResult struct {
	URL                string       `json:"url"`
	Total              float64      `json:"total"`
	Scripting          float64      `json:"scripting"`
	ScriptParseCompile float64      `json:"script_parse_compile"`
	Groups             GroupTimings `json:"groups"`
}

// BootupOptions are the scoring and filtering options of the audit.
type BootupOptions struct {
	P10         float64 `json:"p10"`
	Median      float64 `json:"median"`
	ThresholdMs float64 `json:"threshold_ms"`
}

// DefaultBootupOptions returns the stock scoring options.
func DefaultBootupOptions() BootupOptions {
	return BootupOptions{P10: DefaultP10, Median: DefaultMedian, ThresholdMs: DefaultThresholdMs}
}

// BootupComputation is the pure result of folding URL timings.
type BootupComputation struct {
	RankedResults                 []URLResult
	TotalBootupTimeMs             float64
	HadExcessiveExtensionOverhead bool
	Score                         float64
	NotApplicable                 bool
}

// AggregateOutcome is the full result of auditing one bundle.
type AggregateOutcome struct {
	Source                        string        `json:"source"`
	PageURL                       string        `json:"page_url"`
	AnalysisTime                  time.Time     `json:"analysis_time"`
	Options                       BootupOptions `json:"options"`
	Multiplier                    float64       `json:"multiplier"`
	RankedResults                 []URLResult   `json:"ranked_results"`
	TotalBootupTimeMs             float64       `json:"total_bootup_time_ms"`
	HadExcessiveExtensionOverhead bool          `json:"had_excessive_extension_overhead"`
	TBTImpactMs                   float64       `json:"tbt_impact_ms"`
	Score                         float64       `json:"score"`
	NotApplicable                 bool          `json:"not_applicable"`
	DisplayValue                  string        `json:"display_value"`
	Warnings                      []string      `json:"warnings,omitempty"`
}

// WastedMs is the summary savings figure of the audit.
func (o *AggregateOutcome) WastedMs() float64 {
	return o.TotalBootupTimeMs
}

// MetricSavings maps the metrics the audit could improve to their savings.
func (o *AggregateOutcome) MetricSavings() map[string]float64 {
	return map[string]float64{"TBT": o.TBTImpactMs}
}

// Fault describes a recoverable failure inside an audit.
type Fault struct {
	ID       string    `json:"id"`
	Audit    string    `json:"audit"`
	Level    string    `json:"level"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
	Occurred time.Time `json:"occurred"`
}
