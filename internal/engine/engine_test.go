package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entregas/internal/record"
	"github.com/roach88/entregas/internal/store"
	"github.com/roach88/entregas/internal/testutil"
)

var timeOfDay = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func setupTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Store, *testutil.FixedClock) {
	t.Helper()
	s := setupTestStore(t)
	clock := testutil.NewFixedClock(time.Time{}, time.Second)
	opts = append([]Option{
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(s, opts...), s, clock
}

func anaDraft() record.Draft {
	return record.Draft{
		Customer:       "Ana",
		PurchaseAmount: 100.0,
		PaidAmount:     100.0,
		PaymentMethod:  "Pix",
		Deliverer:      "Joao",
	}
}

func TestEngine_New_Defaults(t *testing.T) {
	s := setupTestStore(t)
	e := New(s)

	assert.NotNil(t, e.logger)
	assert.IsType(t, SystemClock{}, e.clock)
	assert.Equal(t, record.DefaultPaymentMethods, e.methods)
}

func TestEngine_Add_AssignsNumberAndDefaults(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	assert.Positive(t, r.ID)
	assert.Equal(t, int64(1), r.Number)
	assert.Equal(t, "Ana", r.Customer)
	assert.False(t, r.Delivered)
	assert.Nil(t, r.DeliveredAt)
}

func TestEngine_Add_ValidatesDraft(t *testing.T) {
	e, s, _ := setupTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, record.Draft{Customer: "   "})
	assert.ErrorIs(t, err, record.ErrCustomerRequired)

	_, err = e.Add(ctx, record.Draft{Customer: "Ana", PaymentMethod: "Boleto"})
	assert.ErrorIs(t, err, record.ErrUnknownPaymentMethod)
	assert.True(t, IsCallerError(err))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected drafts must not be stored")
}

func TestEngine_Add_AnyMethodWhenUnrestricted(t *testing.T) {
	e, _, _ := setupTestEngine(t, WithPaymentMethods(nil))

	r, err := e.Add(context.Background(), record.Draft{Customer: "Ana", PaymentMethod: "Boleto"})
	require.NoError(t, err)
	assert.Equal(t, "Boleto", r.PaymentMethod)
}

func TestEngine_Add_SequentialNumbers(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		r, err := e.Add(ctx, anaDraft())
		require.NoError(t, err)
		assert.Equal(t, int64(i), r.Number)
	}
}

func TestEngine_ApplyEdit_OrdinaryFieldLeavesOthersUnchanged(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	before, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, before.ID, record.SetCustomer("Beatriz")))

	after, err := e.Get(ctx, before.ID)
	require.NoError(t, err)

	want := before
	want.Customer = "Beatriz"
	assert.Equal(t, want, after)
}

func TestEngine_ApplyEdit_UnconditionalWrite(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	// Writing the stored value again is not an error.
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetCustomer("Ana")))
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetPaidAmount(100.0)))
}

func TestEngine_ApplyEdit_DeliveredTransition(t *testing.T) {
	e, _, clock := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)
	require.Nil(t, r.DeliveredAt)

	want := clock.Peek().Format(record.TimeLayout)
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))

	delivered, err := e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, delivered.Delivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, want, *delivered.DeliveredAt)
	assert.Regexp(t, timeOfDay, *delivered.DeliveredAt)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(false)))

	pending, err := e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, pending.Delivered)
	require.NotNil(t, pending.DeliveredAt, "true→false must not clear delivered_at")
	assert.Equal(t, want, *pending.DeliveredAt)
}

func TestEngine_ApplyEdit_DeliveredTwiceDoesNotRestamp(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	first, err := e.Get(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	second, err := e.Get(ctx, r.ID)
	require.NoError(t, err)

	assert.Equal(t, first.DeliveredAtString(), second.DeliveredAtString())
}

func TestEngine_ApplyEdit_RedeliveryStampsNewTime(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	first, err := e.Get(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(false)))
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	again, err := e.Get(ctx, r.ID)
	require.NoError(t, err)

	assert.True(t, again.Delivered)
	assert.NotEqual(t, first.DeliveredAtString(), again.DeliveredAtString())
}

func TestEngine_ApplyEdit_PendingToPendingWritesNoStamp(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(false)))
	got, err := e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeliveredAt)
}

func TestEngine_ApplyEdit_FieldsMutableWhileDelivered(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetPaidAmount(80)))
	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDeliverer("Maria")))

	got, err := e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.PaidAmount)
	assert.Equal(t, "Maria", got.Deliverer)
	assert.True(t, got.Delivered)
}

func TestEngine_ApplyEdit_InvalidField(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	err = e.ApplyEdit(ctx, r.ID, record.Edit{Field: "number", Value: "7"})
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrInvalidField)
	assert.True(t, IsCallerError(err))

	var editErr *EditError
	require.True(t, errors.As(err, &editErr))
	assert.Equal(t, r.ID, editErr.ID)
}

func TestEngine_ApplyEdit_ValueTypeMismatch(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)

	err = e.ApplyEdit(ctx, r.ID, record.Edit{Field: record.FieldDelivered, Value: "yes"})
	assert.ErrorIs(t, err, record.ErrValueType)
}

func TestEngine_ApplyEdit_UnknownRecord(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	err := e.ApplyEdit(ctx, 404, record.SetCustomer("x"))
	assert.True(t, IsNotFound(err))

	err = e.ApplyEdit(ctx, 404, record.SetDelivered(true))
	assert.True(t, IsNotFound(err))
}

func TestEngine_StorageFailurePropagates(t *testing.T) {
	e, s, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, e.ApplyEdit(ctx, r.ID, record.SetCustomer("x")))
	assert.Error(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	_, err = e.Add(ctx, anaDraft())
	assert.Error(t, err)
	_, err = e.Reset(ctx)
	assert.Error(t, err)
	_, err = e.List(ctx)
	assert.Error(t, err)
}

func TestEngine_Reset_RestartsNumbering(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.Add(ctx, anaDraft())
		require.NoError(t, err)
	}

	removed, err := e.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Number)

	all, err := e.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEngine_List_Empty(t *testing.T) {
	e, _, _ := setupTestEngine(t)

	all, err := e.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

// TestEngine_Scenario walks the add → deliver → undeliver sequence end to end.
func TestEngine_Scenario(t *testing.T) {
	e, _, _ := setupTestEngine(t)
	ctx := context.Background()

	r, err := e.Add(ctx, anaDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Number)
	assert.False(t, r.Delivered)
	assert.Nil(t, r.DeliveredAt)

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(true)))
	r, err = e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, r.Delivered)
	assert.Equal(t, "14:35:02", r.DeliveredAtString())

	require.NoError(t, e.ApplyEdit(ctx, r.ID, record.SetDelivered(false)))
	r, err = e.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, r.Delivered)
	assert.Equal(t, "14:35:02", r.DeliveredAtString())
}
