package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some MCP clients serialize array arguments as a JSON string
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				if len(arr) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				for i, str := range arr {
					if str == "" {
						return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
					}
				}
				return arr, nil
			}
			// Not valid JSON, treat as a literal string
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// SummaryLine returns a one-line success/failure summary for the results
func SummaryLine(results []Result) string {
	successCount := 0
	failureCount := 0
	for _, r := range results {
		if r.Status == "success" {
			successCount++
		} else {
			failureCount++
		}
	}
	return fmt.Sprintf("Summary: %d succeeded, %d failed", successCount, failureCount)
}

// TextLines renders results as indented bullet lines for human-readable output.
// Successful results show their message, failures show the item id and error.
// Results without an id (items skipped before processing) show only the error.
func TextLines(results []Result) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.Status == "success":
			lines = append(lines, "  - "+r.Result)
		case r.ID == "":
			lines = append(lines, "  - "+r.Error)
		default:
			lines = append(lines, fmt.Sprintf("  - %s: Failed - %s", r.ID, r.Error))
		}
	}
	return lines
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: "success",
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: "error",
		Error:  err.Error(),
	}
}
