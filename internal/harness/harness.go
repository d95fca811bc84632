package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/entregas/internal/engine"
	"github.com/roach88/entregas/internal/record"
	"github.com/roach88/entregas/internal/store"
	"github.com/roach88/entregas/internal/testutil"
)

// Error kinds a step may declare in expect_error.
const (
	KindInvalidField         = "invalid_field"
	KindValueType            = "value_type"
	KindNotFound             = "not_found"
	KindCustomerRequired     = "customer_required"
	KindUnknownPaymentMethod = "unknown_payment_method"
	KindStorage              = "storage"
)

// ErrorKinds lists the kinds accepted by expect_error.
func ErrorKinds() []string {
	return []string{
		KindInvalidField,
		KindValueType,
		KindNotFound,
		KindCustomerRequired,
		KindUnknownPaymentMethod,
		KindStorage,
	}
}

func knownErrorKind(kind string) bool {
	for _, k := range ErrorKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// errorKind classifies err into one of the step error kinds.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, record.ErrInvalidField):
		return KindInvalidField
	case errors.Is(err, record.ErrValueType):
		return KindValueType
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, record.ErrCustomerRequired):
		return KindCustomerRequired
	case errors.Is(err, record.ErrUnknownPaymentMethod):
		return KindUnknownPaymentMethod
	}
	return KindStorage
}

// Harness executes scenario steps against one store and engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// A FixedClock makes delivered_at stamps reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Execute steps in order, checking expect_error
// 3. Read the final record set
// 4. Evaluate assertions
//
// A returned error means the scenario could not run at all; step and
// assertion failures are reported through Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	start, step, err := scenario.Clock.parse()
	if err != nil {
		return nil, err
	}
	if !start.IsZero() {
		start = onDay(testutil.DefaultStart, start)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	opts := []engine.Option{
		engine.WithClock(testutil.NewFixedClock(start, step)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	}
	if len(scenario.PaymentMethods) > 0 {
		opts = append(opts, engine.WithPaymentMethods(scenario.PaymentMethods))
	}

	h := &Harness{
		store:  st,
		engine: engine.New(st, opts...),
	}

	result := NewResult()
	for i, s := range scenario.Steps {
		ev := h.executeStep(ctx, i+1, s)
		result.AddTrace(ev)

		switch {
		case s.ExpectError == "" && ev.Error != "":
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %s", i+1, ev.Op, ev.Error))
		case s.ExpectError != "" && ev.Error == "":
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, step succeeded", i+1, ev.Op, s.ExpectError))
		case s.ExpectError != ev.Error:
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s", i+1, ev.Op, s.ExpectError, ev.Error))
		}
	}

	records, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final records: %w", err)
	}
	result.Records = records

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// onDay moves the time of day of t onto the date of day.
func onDay(day, t time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, day.Location())
}

// executeStep runs one step and returns its trace event.
// Errors are recorded as their kind so traces stay stable across drivers.
func (h *Harness) executeStep(ctx context.Context, index int, s Step) TraceEvent {
	ev := TraceEvent{Step: index, Op: s.Op()}

	switch {
	case s.Add != nil:
		r, err := h.engine.Add(ctx, *s.Add)
		ev.Value = record.NormalizeText(s.Add.Customer)
		if err != nil {
			ev.Error = errorKind(err)
			return ev
		}
		ev.Number = r.Number

	case s.Edit != nil:
		ev.Number = s.Edit.Number
		ev.Field = s.Edit.Field
		ev.Value = s.Edit.Value
		ev.Error = errorKind(h.edit(ctx, *s.Edit))

	case s.Reset:
		n, err := h.engine.Reset(ctx)
		if err != nil {
			ev.Error = errorKind(err)
			return ev
		}
		ev.Removed = n
	}

	return ev
}

// edit resolves a display number to its record and applies one field edit.
func (h *Harness) edit(ctx context.Context, e EditStep) error {
	edit, err := record.ParseEdit(e.Field, e.Value)
	if err != nil {
		return err
	}

	id, err := h.resolve(ctx, e.Number)
	if err != nil {
		return err
	}

	return h.engine.ApplyEdit(ctx, id, edit)
}

// resolve returns the id of the first record carrying display number n.
func (h *Harness) resolve(ctx context.Context, n int64) (int64, error) {
	records, err := h.engine.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if r.Number == n {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("record number %d: %w", n, store.ErrNotFound)
}
