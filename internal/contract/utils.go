package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/bootup/schema"
)

// Color variables for console output.
var (
	GoodColor             = color.New(color.FgGreen, color.Bold) // GoodColor represents a passing score.
	NeedsImprovementColor = color.New(color.FgYellow)            // NeedsImprovementColor represents standard caution.
	PoorColor             = color.New(color.FgRed, color.Bold)   // PoorColor represents standard danger.
)

var ratingColors = map[schema.Rating]*color.Color{
	schema.GoodRating:             GoodColor,
	schema.NeedsImprovementRating: NeedsImprovementColor,
	schema.PoorRating:             PoorColor,
}

// GetColorLabel returns the rating of score colored for a terminal table.
func GetColorLabel(score float64) string {
	rating := schema.GetRating(score)
	if c, ok := ratingColors[rating]; ok {
		return c.Sprint(rating)
	}
	return PoorColor.Sprint(rating)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// logOutput receives every Log* line.
var logOutput io.Writer = os.Stderr

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(logOutput, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogError logs a failure the program recovers from.
func LogError(msg string, err error) {
	_, _ = fmt.Fprintf(logOutput, "Error %s: %v\n", msg, err)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(logOutput, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath is the default SQLite file of the timings cache.
func GetCacheDBFilePath() string { return homeFile(".bootup_cache.db") }

// GetHistoryDBFilePath is the default SQLite file of the audit history.
func GetHistoryDBFilePath() string { return homeFile(".bootup_history.db") }

// homeFile places name in the home directory, or the working directory
// when there is no home.
func homeFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// TruncateURL cuts url to maxWidth runes, ending in "...". The head of a url
// carries its origin, so the tail is what gets dropped. Widths of 3 or less
// leave url untouched.
func TruncateURL(url string, maxWidth int) string {
	runes := []rune(url)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return url
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
