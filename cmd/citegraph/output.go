package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Styles for --human output. fatih/color disables them when stdout is not a terminal.
var (
	styleBrand  = color.New(color.FgHiGreen, color.Bold)
	styleCenter = color.New(color.FgBlue, color.Bold)
	styleSubtle = color.New(color.FgHiBlack)
	styleWarn   = color.New(color.FgYellow)
	styleInfo   = color.New(color.FgCyan)
)

// Title truncation lengths by context
const (
	SearchTitleMaxLen = 70 // search results
	GraphTitleMaxLen  = 70 // graph tree output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONCompact writes a value as compact JSON to stdout.
func outputJSONCompact(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", styleWarn.Sprint("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error    string          `json:"error"`
	Failures []FailureDetail `json:"failures,omitempty"`
}

// FailureDetail describes one document that failed to load.
type FailureDetail struct {
	Document string `json:"document"`
	Location string `json:"location"`
	Error    string `json:"error"`
}
