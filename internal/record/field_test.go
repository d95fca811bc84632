package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		want    Field
		wantErr bool
	}{
		{"customer", FieldCustomer, false},
		{" Paid_Amount ", FieldPaidAmount, false},
		{"payment-method", FieldPaymentMethod, false},
		{"delivered_at", FieldDeliveredAt, false},
		{"id", "", true},
		{"number", "", true},
		{"numero", "", true},
		{"customer; DROP TABLE deliveries", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseField(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFields(t *testing.T) {
	assert.Len(t, Fields(), 7)
	assert.NotContains(t, EditableFields(), FieldDeliveredAt)
	assert.Len(t, EditableFields(), 6)

	for _, f := range Fields() {
		assert.True(t, f.Valid(), f)
		assert.Equal(t, string(f), f.Column())
	}
	assert.False(t, Field("number").Valid())
	assert.Equal(t, "", Field("number").Column())
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindText, FieldCustomer.Kind())
	assert.Equal(t, KindAmount, FieldPurchaseAmount.Kind())
	assert.Equal(t, KindFlag, FieldDelivered.Kind())
	assert.Equal(t, KindTime, FieldDeliveredAt.Kind())
	assert.Equal(t, "amount", KindAmount.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestEditValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    Edit
		wantErr error
	}{
		{"text", SetCustomer("Ana"), nil},
		{"amount", SetPaidAmount(10), nil},
		{"flag", SetDelivered(true), nil},
		{"time", SetDeliveredAt("09:05:00"), nil},
		{"bad time", SetDeliveredAt("9h05"), ErrValueType},
		{"text with number", Edit{Field: FieldCustomer, Value: 3}, ErrValueType},
		{"amount with string", Edit{Field: FieldPaidAmount, Value: "10"}, ErrValueType},
		{"amount with int", Edit{Field: FieldPaidAmount, Value: 10}, ErrValueType},
		{"flag with int", Edit{Field: FieldDelivered, Value: 1}, ErrValueType},
		{"number field", Edit{Field: "number", Value: int64(9)}, ErrInvalidField},
		{"id field", Edit{Field: "id", Value: int64(9)}, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edit.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEditSQLValue(t *testing.T) {
	assert.Equal(t, 1, SetDelivered(true).SQLValue())
	assert.Equal(t, 0, SetDelivered(false).SQLValue())
	assert.Equal(t, 12.5, SetPurchaseAmount(12.5).SQLValue())
	assert.Equal(t, " Ana ", SetCustomer(" Ana ").SQLValue(), "text is kept as given")
	assert.Equal(t, "paid_amount=12.5", SetPaidAmount(12.5).String())
}

func TestParseEdit(t *testing.T) {
	tests := []struct {
		field, raw string
		want       Edit
	}{
		{"paid_amount", "45,50", SetPaidAmount(45.5)},
		{"purchase_amount", "12.5", SetPurchaseAmount(12.5)},
		{"purchase_amount", "", SetPurchaseAmount(0)},
		{"delivered", "sim", SetDelivered(true)},
		{"delivered", "Não", SetDelivered(false)},
		{"delivered", "1", SetDelivered(true)},
		{"delivered_at", " 10:00:00 ", SetDeliveredAt("10:00:00")},
		{"customer", "  Ana  ", SetCustomer("Ana")},
		{"deliverer", "", SetDeliverer("")},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.raw, func(t *testing.T) {
			got, err := ParseEdit(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEdit_Errors(t *testing.T) {
	_, err := ParseEdit("number", "3")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = ParseEdit("paid_amount", "dez")
	assert.ErrorIs(t, err, ErrValueType)

	_, err = ParseEdit("delivered", "talvez")
	assert.ErrorIs(t, err, ErrValueType)

	_, err = ParseEdit("delivered_at", "tomorrow")
	assert.ErrorIs(t, err, ErrValueType)
}

func TestParseAmount_RejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity", "1e400"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrValueType, raw)
	}

	_, err := ParseEdit("paid_amount", "NaN")
	assert.ErrorIs(t, err, ErrValueType)
}

func TestParseAmount_CommaAndDotTogether(t *testing.T) {
	_, err := ParseAmount("1,234.50")
	assert.Error(t, err)

	v, err := ParseAmount("1234,5")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrInvalidField, ErrValueType))
	assert.False(t, errors.Is(ErrCustomerRequired, ErrUnknownPaymentMethod))
}
