package schema

import "fmt"

// EnrichedURLResult adds presentation data to a URLResult.
type EnrichedURLResult struct {
	Rank int `json:"rank"`
	URLResult
}

// GetRating returns the qualitative bucket of a 0-1 score.
func GetRating(score float64) Rating {
	switch {
	case score >= 0.9:
		return GoodRating
	case score >= 0.5:
		return NeedsImprovementRating
	default:
		return PoorRating
	}
}

// EnrichResults adds rank to a list of URL results.
func EnrichResults(results []URLResult) []EnrichedURLResult {
	output := make([]EnrichedURLResult, len(results))
	for i, r := range results {
		output[i] = EnrichedURLResult{
			Rank:      i + 1,
			URLResult: r,
		}
	}
	return output
}

// FormatDisplayValue renders milliseconds as seconds with one decimal, e.g. "1.2 s".
func FormatDisplayValue(ms float64) string {
	return fmt.Sprintf("%.1f s", ms/1000)
}
