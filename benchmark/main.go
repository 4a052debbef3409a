// Package main provides a performance benchmarking tool for the bootup CLI.
// It times audit and compare runs over a directory of trace bundles,
// once without the cache and once with it, treating the first cached run as cold
// and averaging the rest as warm, then writes the figures to CSV.
//
// Prerequisites:
// - bootup binary installed and available in PATH
// - A directory holding at least two trace bundles (*.json, *.json.gz, *.json.zst or *.json.xz)
//
// Usage: go run benchmark/main.go [bundle-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one command over one bundle set.
type BenchmarkResult struct {
	Target      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	BundleDir   string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
}

// benchCase is one bootup invocation to time.
type benchCase struct {
	command string
	target  string
	args    []string
}

var bundlePatterns = []string{"*.json", "*.json.gz", "*.json.zst", "*.json.xz"}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [bundle-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		BundleDir:   os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   5,
	}

	bundles, err := checkPrerequisites(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("bootup", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config, buildCases(config, bundles))

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the bootup binary and returns the bundles to time.
func checkPrerequisites(config BenchmarkConfig) ([]string, error) {
	if _, err := exec.LookPath("bootup"); err != nil {
		return nil, fmt.Errorf("bootup binary not found in PATH")
	}

	var bundles []string
	for _, pattern := range bundlePatterns {
		matches, err := filepath.Glob(filepath.Join(config.BundleDir, pattern))
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, matches...)
	}
	if len(bundles) < 2 {
		return nil, fmt.Errorf("need at least 2 bundles in %s, found %d", config.BundleDir, len(bundles))
	}
	slices.Sort(bundles)
	return bundles, nil
}

// buildCases times every bundle alone, all bundles together and the first two compared.
func buildCases(config BenchmarkConfig, bundles []string) []benchCase {
	cases := make([]benchCase, 0, len(bundles)+2)
	for _, b := range bundles {
		cases = append(cases, benchCase{command: "audit", target: filepath.Base(b), args: []string{b}})
	}
	cases = append(cases,
		benchCase{command: "audit", target: fmt.Sprintf("all (%d)", len(bundles)), args: bundles},
		benchCase{
			command: "compare",
			target:  fmt.Sprintf("%s -> %s", filepath.Base(bundles[0]), filepath.Base(bundles[1])),
			args:    bundles[:2],
		},
	)
	for i := range cases {
		cases[i].args = append([]string{"--workers", fmt.Sprint(config.Workers)}, cases[i].args...)
	}
	return cases
}

// runBenchmarks executes every case with and without the cache.
func runBenchmarks(config BenchmarkConfig, cases []benchCase) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d cases, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(cases), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(cases))
	for _, c := range cases {
		results = append(results, runBenchmarkSuite(config, c))
	}
	return results
}

func runBenchmarkSuite(config BenchmarkConfig, c benchCase) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.command, c.target)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, c, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Target:      c.target,
		Command:     c.command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark runs c numRuns times and splits the successful timings into cold and warm.
func runBenchmark(config BenchmarkConfig, c benchCase, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{c.command, "--cache-backend", cacheBackend}, c.args...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "bootup", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, c.command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks the trailer bootup prints after a finished run.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	completionPhrase := "Audit completed in"
	if command == "compare" {
		completionPhrase = "Comparison completed in"
	}

	return strings.Contains(outputStr, completionPhrase) && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("bootup_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"target", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Target, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	printCommandSummary(results, "audit", "Audit:")
	printCommandSummary(results, "compare", "Compare:")
}

func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Target, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
