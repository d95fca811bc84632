package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/entregas/internal/record"
)

// Store is the record persistence the engine writes through to.
// Implemented by *store.Store.
type Store interface {
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, id int64) (record.Record, error)
	Insert(ctx context.Context, d record.Draft) (int64, error)
	UpdateField(ctx context.Context, id int64, e record.Edit) error
	Modify(ctx context.Context, id int64, fn func(current record.Record) ([]record.Edit, error)) error
	ClearAll(ctx context.Context) (int64, error)
}

// Engine applies edits, creations and resets to a record store.
//
// Thread-safety: Engine holds no mutable state of its own; concurrent calls
// are serialized by the store. Concurrent Add calls from separate processes
// may share a display number (see package store).
type Engine struct {
	store   Store
	clock   Clock
	logger  *slog.Logger
	methods []string
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock sets the clock used to stamp delivered_at.
//
// Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger for state-change messages.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPaymentMethods sets the payment methods Add accepts.
// A nil slice accepts any method.
//
// Default: record.DefaultPaymentMethods.
func WithPaymentMethods(methods []string) Option {
	return func(e *Engine) {
		e.methods = methods
	}
}

// New creates an Engine writing through to s.
func New(s Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		clock:   SystemClock{},
		logger:  slog.Default(),
		methods: record.DefaultPaymentMethods,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// List returns every record in insertion order.
func (e *Engine) List(ctx context.Context) ([]record.Record, error) {
	return e.store.List(ctx)
}

// Get returns the record with the given id.
func (e *Engine) Get(ctx context.Context, id int64) (record.Record, error) {
	return e.store.Get(ctx, id)
}

// Add validates the draft against the creation-path rules, inserts it and
// returns the stored record with its assigned id and display number.
func (e *Engine) Add(ctx context.Context, d record.Draft) (record.Record, error) {
	d = d.Normalize()
	if err := d.Validate(e.methods); err != nil {
		return record.Record{}, fmt.Errorf("add record: %w", err)
	}

	id, err := e.store.Insert(ctx, d)
	if err != nil {
		return record.Record{}, err
	}

	r, err := e.store.Get(ctx, id)
	if err != nil {
		return record.Record{}, err
	}

	e.logger.Info("record added",
		"id", r.ID,
		"number", r.Number,
		"customer", r.Customer,
	)
	return r, nil
}

// ApplyEdit writes one field of one record.
//
// Ordinary fields are written unconditionally. The delivered field goes
// through the completion transition: false→true also stamps delivered_at
// with the current time of day, true→false leaves delivered_at unchanged.
func (e *Engine) ApplyEdit(ctx context.Context, id int64, edit record.Edit) error {
	if err := edit.Validate(); err != nil {
		return &EditError{ID: id, Field: edit.Field, Err: err}
	}

	if edit.Field == record.FieldDelivered {
		return e.setDelivered(ctx, id, edit.Value.(bool))
	}

	if err := e.store.UpdateField(ctx, id, edit); err != nil {
		return &EditError{ID: id, Field: edit.Field, Err: err}
	}

	e.logger.Info("field updated", "id", id, "field", edit.Field)
	return nil
}

// setDelivered writes the delivered flag and, on a false→true transition,
// the delivered_at stamp, in one store transaction.
func (e *Engine) setDelivered(ctx context.Context, id int64, delivered bool) error {
	var (
		previous bool
		stamp    string
	)

	err := e.store.Modify(ctx, id, func(current record.Record) ([]record.Edit, error) {
		previous = current.Delivered
		edits := []record.Edit{record.SetDelivered(delivered)}
		if delivered && !current.Delivered {
			stamp = e.clock.Now().Format(record.TimeLayout)
			edits = append(edits, record.SetDeliveredAt(stamp))
		}
		return edits, nil
	})
	if err != nil {
		return &EditError{ID: id, Field: record.FieldDelivered, Err: err}
	}

	switch {
	case stamp != "":
		e.logger.Info("record delivered", "id", id, "delivered_at", stamp)
	case previous && !delivered:
		e.logger.Info("record marked pending", "id", id)
	default:
		e.logger.Debug("delivered unchanged, no stamp written",
			"id", id,
			"delivered", delivered,
		)
	}
	return nil
}

// Reset deletes every record and returns how many were removed.
// Numbering restarts at 1. Confirmation is the caller's concern.
func (e *Engine) Reset(ctx context.Context) (int64, error) {
	n, err := e.store.ClearAll(ctx)
	if err != nil {
		return 0, err
	}

	e.logger.Info("records cleared", "removed", n)
	return n, nil
}
