// file: services/testcases.go
package services

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoTestCases is returned when a question yields an empty normalized list.
var ErrNoTestCases = errors.New("no valid test cases found")

// TestCase is the normalized {input, output} pair every historical storage
// shape reduces to.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// rawTestCase accepts the field aliases found across question revisions.
type rawTestCase struct {
	Input    string `json:"input"`
	Stdin    string `json:"stdin"`
	Output   string `json:"output"`
	Expected string `json:"expected_output"`
	Stdout   string `json:"stdout"`
}

func (r rawTestCase) normalize() TestCase {
	tc := TestCase{Input: r.Input, Output: r.Output}
	if tc.Input == "" {
		tc.Input = r.Stdin
	}
	if tc.Output == "" {
		if r.Expected != "" {
			tc.Output = r.Expected
		} else {
			tc.Output = r.Stdout
		}
	}
	return tc
}

// testCaseWrapper covers the two object shapes: {testCases:[...]} and
// {public:[...], hidden:[...]}.
type testCaseWrapper struct {
	TestCases []rawTestCase `json:"testCases"`
	Public    []rawTestCase `json:"public"`
	Hidden    []rawTestCase `json:"hidden"`
}

// NormalizeTestCases reduces any of the three historical test-case shapes to
// a flat []TestCase, public cases before hidden ones. Running it over an
// already-normalized list returns the same list. An empty result is an error:
// a question with no runnable cases cannot judge a submission.
func NormalizeTestCases(raw []byte) ([]TestCase, error) {
	if len(raw) == 0 {
		return nil, ErrNoTestCases
	}

	var flat []rawTestCase
	if err := json.Unmarshal(raw, &flat); err == nil {
		return collect(flat)
	}

	var wrapper testCaseWrapper
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, ErrNoTestCases
	}
	if len(wrapper.TestCases) > 0 {
		return collect(wrapper.TestCases)
	}
	combined := append(append([]rawTestCase(nil), wrapper.Public...), wrapper.Hidden...)
	return collect(combined)
}

func collect(raw []rawTestCase) ([]TestCase, error) {
	if len(raw) == 0 {
		return nil, ErrNoTestCases
	}
	out := make([]TestCase, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.normalize())
	}
	return out, nil
}

// SanitizeCode strips carriage returns and surrounding blank space before the
// source is shipped to the execution collaborator.
func SanitizeCode(code string) string {
	return strings.TrimSpace(strings.ReplaceAll(code, "\r", ""))
}
