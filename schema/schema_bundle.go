package schema

import "time"

// Bundle is the on-disk trace bundle written by an external collector.
type Bundle struct {
	URL       string                   `json:"url"`
	FetchTime time.Time                `json:"fetch_time"`
	Settings  Settings                 `json:"settings"`
	Passes    map[string]PassArtifacts `json:"passes"`
}

// PassArtifacts are the decomposed artifacts of one page-load pass.
// A nil slice means the artifact was never gathered.
type PassArtifacts struct {
	NetworkRecords  []NetworkRecord  `json:"network_records"`
	MainThreadTasks []MainThreadTask `json:"main_thread_tasks"`
	TBTImpactTasks  []TBTImpactTask  `json:"tbt_impact_tasks"`
	TBTImpactError  string           `json:"tbt_impact_error,omitempty"`
}
