package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"gopkg.in/yaml.v3"
)

// toDestination runs render against stdout, or against outputFile when set.
// Writing to a file is confirmed on stderr so piped stdout stays clean.
func toDestination(outputFile string, mode schema.OutputMode, render func(io.Writer) error) error {
	dest, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if dest == os.Stdout {
		return render(dest)
	}
	defer func() { _ = dest.Close() }()

	if err := render(dest); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMessage(mode), outputFile)
	return nil
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// writeCSV writes header then whatever rows emits, flushing once at the end.
func writeCSV(w io.Writer, header []string, rows func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := rows(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// floatFormatter renders milliseconds and scores at the configured precision.
func floatFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}
