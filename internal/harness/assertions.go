package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/entregas/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", ev.Step, ev.Op)
		if ev.Number != 0 {
			fmt.Fprintf(&buf, " #%d", ev.Number)
		}
		if ev.Field != "" {
			fmt.Fprintf(&buf, " %s=%s", ev.Field, ev.Value)
		}
		if ev.Error != "" {
			fmt.Fprintf(&buf, " error=%s", ev.Error)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// EvaluateAssertions checks all assertions against the result and returns
// one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertCount:
		return assertCount(result, a)
	case AssertNumbers:
		return assertNumbers(result, a)
	case AssertRecord:
		return assertRecord(result, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

func assertCount(result *Result, a Assertion) error {
	if len(result.Records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d records", a.Count),
		Actual:   fmt.Sprintf("%d records", len(result.Records)),
		Trace:    result.Trace,
	}
}

func assertNumbers(result *Result, a Assertion) error {
	actual := make([]int64, len(result.Records))
	for i, r := range result.Records {
		actual[i] = r.Number
	}

	expected := a.Numbers
	if expected == nil {
		expected = []int64{}
	}
	if reflect.DeepEqual(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNumbers,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    result.Trace,
	}
}

func assertRecord(result *Result, a Assertion) error {
	var found *record.Record
	for i := range result.Records {
		if result.Records[i].Number == a.Number {
			found = &result.Records[i]
			break
		}
	}
	if found == nil {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record number %d", a.Number),
			Actual:   "no such record",
			Trace:    result.Trace,
		}
	}

	var mismatches []string
	for _, name := range sortedKeys(a.Expect) {
		actual, err := recordValue(*found, name)
		if err != nil {
			return err
		}
		if !valuesEqual(a.Expect[name], actual) {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected %v, got %v", name, a.Expect[name], display(actual)))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecord,
		Expected: fmt.Sprintf("record number %d to match %v", a.Number, a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    result.Trace,
	}
}

// recordValue reads a field, including the read-only id and number.
func recordValue(r record.Record, name string) (any, error) {
	switch name {
	case "id":
		return r.ID, nil
	case "number":
		return r.Number, nil
	}
	f, err := record.ParseField(name)
	if err != nil {
		return nil, err
	}
	return r.Value(f)
}

// valuesEqual compares a YAML-decoded expectation with a typed record value.
// YAML numbers decode as int or float64; null matches a missing delivered_at.
func valuesEqual(expected, actual any) bool {
	switch v := actual.(type) {
	case *string:
		if v == nil {
			return expected == nil
		}
		s, ok := expected.(string)
		return ok && s == *v
	case float64:
		f, ok := toFloat(expected)
		return ok && f == v
	case int64:
		f, ok := toFloat(expected)
		return ok && f == float64(v)
	case string:
		s, ok := expected.(string)
		return ok && record.NormalizeText(s) == v
	case bool:
		b, ok := expected.(bool)
		return ok && b == v
	}
	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func display(v any) any {
	if s, ok := v.(*string); ok {
		if s == nil {
			return nil
		}
		return *s
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
