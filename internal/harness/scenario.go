package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/entregas/internal/record"
)

// Scenario defines a sequence of store operations and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario (and its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock configures the wall clock used for delivered_at stamps.
	Clock ClockSpec `yaml:"clock,omitempty"`

	// PaymentMethods restricts the add step. Empty uses the defaults.
	PaymentMethods []string `yaml:"payment_methods,omitempty"`

	// Steps run in order against a fresh store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final record set.
	Assertions []Assertion `yaml:"assertions"`
}

// ClockSpec sets the deterministic clock's start time of day and step.
type ClockSpec struct {
	// Start is a time of day in "15:04:05" form. Empty uses testutil.DefaultStart.
	Start string `yaml:"start,omitempty"`

	// Step is how far the clock advances per reading. Empty means one second.
	Step string `yaml:"step,omitempty"`
}

// Step is exactly one of add, edit or reset.
type Step struct {
	Add   *record.Draft `yaml:"add,omitempty"`
	Edit  *EditStep     `yaml:"edit,omitempty"`
	Reset bool          `yaml:"reset,omitempty"`

	// ExpectError names the error kind the step must fail with
	// (see ErrorKinds). Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// EditStep edits one field of the record with a display number.
type EditStep struct {
	Number int64  `yaml:"number"`
	Field  string `yaml:"field"`
	Value  string `yaml:"value"`
}

// Op returns the step's operation name.
func (s Step) Op() string {
	switch {
	case s.Add != nil:
		return OpAdd
	case s.Edit != nil:
		return OpEdit
	case s.Reset:
		return OpReset
	}
	return ""
}

// Operation names used in steps and traces.
const (
	OpAdd   = "add"
	OpEdit  = "edit"
	OpReset = "reset"
)

// Assertion validates the final record set.
type Assertion struct {
	// Type specifies the assertion type: count, numbers or record.
	Type string `yaml:"type"`

	// Count is the expected number of records (used by count).
	Count int `yaml:"count,omitempty"`

	// Numbers are the expected display numbers in order (used by numbers).
	Numbers []int64 `yaml:"numbers,omitempty"`

	// Number selects the record by display number (used by record).
	Number int64 `yaml:"number,omitempty"`

	// Expect contains expected field values (used by record).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertCount   = "count"
	AssertNumbers = "numbers"
	AssertRecord  = "record"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// parse returns the configured start time and step.
func (c ClockSpec) parse() (time.Time, time.Duration, error) {
	var start time.Time
	if c.Start != "" {
		t, err := time.Parse(record.TimeLayout, c.Start)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("clock.start: %w", err)
		}
		start = t
	}

	step := time.Second
	if c.Step != "" {
		d, err := time.ParseDuration(c.Step)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("clock.step: %w", err)
		}
		if d < 0 {
			return time.Time{}, 0, fmt.Errorf("clock.step must be non-negative")
		}
		step = d
	}
	return start, step, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, _, err := s.Clock.parse(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	ops := 0
	if s.Add != nil {
		ops++
	}
	if s.Edit != nil {
		ops++
	}
	if s.Reset {
		ops++
	}
	if ops != 1 {
		return fmt.Errorf("steps[%d]: exactly one of add, edit or reset is required", index)
	}

	if s.Edit != nil {
		if s.Edit.Number <= 0 {
			return fmt.Errorf("steps[%d].edit: number must be positive", index)
		}
		if s.Edit.Field == "" {
			return fmt.Errorf("steps[%d].edit: field is required", index)
		}
	}

	if s.ExpectError != "" && !knownErrorKind(s.ExpectError) {
		return fmt.Errorf("steps[%d]: unknown expect_error %q", index, s.ExpectError)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertNumbers:
		if a.Numbers == nil {
			a.Numbers = []int64{}
		}
	case AssertRecord:
		if a.Number <= 0 {
			return fmt.Errorf("assertions[%d]: number is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
		for name := range a.Expect {
			if name == "id" || name == "number" {
				continue
			}
			if _, err := record.ParseField(name); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
