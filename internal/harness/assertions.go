package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Type     string // expectation kind, e.g. "count" or "ordered"
	Target   string // counter or output path
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Target)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpectations checks expect against result and returns one message
// per failure, in a deterministic order.
func EvaluateExpectations(result *Result, expect Expect) []string {
	var errs []error

	if r := result.Report; r != nil {
		errs = appendErr(errs, checkCount("built", expect.Built, r.Built))
		errs = appendErr(errs, checkCount("skipped", expect.Skipped, r.Skipped))
		errs = appendErr(errs, checkCount("failed", expect.Failed, r.Failed))
	}

	for _, p := range sortedKeys(expect.Outputs) {
		content, ok := result.Outputs[p]
		if !ok {
			errs = append(errs, &AssertionError{Type: "output", Target: p, Expected: "file exists", Actual: "not generated"})
			continue
		}
		exp := expect.Outputs[p]
		errs = appendErr(errs, assertOrdered(p, content, exp.Ordered))
		for _, s := range exp.Contains {
			if !strings.Contains(content, s) {
				errs = append(errs, &AssertionError{Type: "contains", Target: p, Expected: fmt.Sprintf("%q", s), Actual: "not found"})
			}
		}
		for _, s := range exp.Absent {
			if strings.Contains(content, s) {
				errs = append(errs, &AssertionError{Type: "absent", Target: p, Expected: fmt.Sprintf("no %q", s), Actual: "found"})
			}
		}
	}

	for _, p := range expect.Missing {
		if _, ok := result.Outputs[p]; ok {
			errs = append(errs, &AssertionError{Type: "missing", Target: p, Expected: "no file", Actual: "file generated"})
		}
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}

func appendErr(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	return append(errs, err)
}

func checkCount(name string, want *int, got int) error {
	if want == nil || *want == got {
		return nil
	}
	return &AssertionError{Type: "count", Target: name, Expected: fmt.Sprint(*want), Actual: fmt.Sprint(got)}
}

// assertOrdered checks that each line occurs, trimmed, after the previous.
// Intervening lines are allowed.
func assertOrdered(target, content string, want []string) error {
	if len(want) == 0 {
		return nil
	}
	lines := strings.Split(content, "\n")
	next := 0
	for _, w := range want {
		found := -1
		for i := next; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == w {
				found = i
				break
			}
		}
		if found < 0 {
			return &AssertionError{
				Type:     "ordered",
				Target:   target,
				Expected: fmt.Sprintf("%q after line %d", w, next),
				Actual:   "not found in order",
			}
		}
		next = found + 1
	}
	return nil
}
