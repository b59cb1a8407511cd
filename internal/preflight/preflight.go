package preflight

import (
	"errors"
	"fmt"
	"strings"

	"abb/internal/config"
	"abb/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the input, the output directory and the external tools a
// build needs.
func RunAll(cfg *config.Config, input, output string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadable("Input", input),
		CheckOutputDirectory(output),
	}
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: status.Detail})
	}
	return results
}

// Err joins failed results into a single error tagged by cause, or returns nil.
func Err(results []Result) error {
	var failed []string
	marker := services.ErrValidation
	for _, r := range results {
		if r.Passed {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		if r.Name == "FFmpeg" || r.Name == "FFprobe" {
			marker = services.ErrExternalTool
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: preflight failed: %w", marker, errors.New(strings.Join(failed, "; ")))
}
