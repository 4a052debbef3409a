package schema

// CheckResult holds the results of a budget check across bundles.
type CheckResult struct {
	Passed      bool
	MinScore    float64
	MaxBootupMs float64
	Checked     []CheckedBundle
	Failed      []CheckFailure
}

// CheckedBundle is the score and bootup time of one checked bundle.
type CheckedBundle struct {
	Source        string
	Score         float64
	BootupMs      float64
	NotApplicable bool
}

// CheckFailure represents a bundle that broke one of the budgets.
type CheckFailure struct {
	Source    string
	Reason    string
	Value     float64
	Threshold float64
}
