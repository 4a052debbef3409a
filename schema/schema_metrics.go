package schema

// CurveSample is the score of one sample bootup time.
type CurveSample struct {
	ValueMs float64 `json:"value_ms"`
	Score   float64 `json:"score"`
	Rating  Rating  `json:"rating"`
}

// MetricsRenderModel contains everything needed to display the scoring curve.
type MetricsRenderModel struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Formula      string        `json:"formula"`
	Options      BootupOptions `json:"options"`
	ScoredGroups []string      `json:"scored_groups"`
	Samples      []CurveSample `json:"samples"`
}
