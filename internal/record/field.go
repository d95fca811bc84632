package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field identifies one updatable attribute of a Record.
// The set is closed: ParseField rejects everything else, including id and number.
type Field string

const (
	FieldCustomer       Field = "customer"
	FieldPurchaseAmount Field = "purchase_amount"
	FieldPaidAmount     Field = "paid_amount"
	FieldPaymentMethod  Field = "payment_method"
	FieldDeliverer      Field = "deliverer"
	FieldDelivered      Field = "delivered"
	FieldDeliveredAt    Field = "delivered_at"
)

// Kind is the storage class of a field's value.
type Kind int

const (
	KindText Kind = iota
	KindAmount
	KindFlag
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAmount:
		return "amount"
	case KindFlag:
		return "flag"
	case KindTime:
		return "time"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TimeLayout is the format of delivered_at values.
const TimeLayout = "15:04:05"

var fieldKinds = map[Field]Kind{
	FieldCustomer:       KindText,
	FieldPurchaseAmount: KindAmount,
	FieldPaidAmount:     KindAmount,
	FieldPaymentMethod:  KindText,
	FieldDeliverer:      KindText,
	FieldDelivered:      KindFlag,
	FieldDeliveredAt:    KindTime,
}

// Fields returns every updatable field in column order.
func Fields() []Field {
	return []Field{
		FieldCustomer,
		FieldPurchaseAmount,
		FieldPaidAmount,
		FieldPaymentMethod,
		FieldDeliverer,
		FieldDelivered,
		FieldDeliveredAt,
	}
}

// EditableFields returns the fields a presentation row lets the user change.
// delivered_at is displayed but only written by the completion transition.
func EditableFields() []Field {
	return Fields()[:6]
}

// ParseField resolves a field name. Names are matched case-insensitively
// after trimming; hyphens are accepted in place of underscores.
func ParseField(name string) (Field, error) {
	f := Field(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if _, ok := fieldKinds[f]; !ok {
		return "", invalidField(name)
	}
	return f, nil
}

// Valid reports whether f belongs to the updatable set.
func (f Field) Valid() bool {
	_, ok := fieldKinds[f]
	return ok
}

// Kind returns the storage class of f. Invalid fields report KindText;
// check Valid first.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// Column returns the table column backing f.
// Columns are constants of the enumeration and safe to embed in SQL.
func (f Field) Column() string {
	if !f.Valid() {
		return ""
	}
	return string(f)
}

// Edit is a typed single-field mutation.
type Edit struct {
	Field Field
	Value any
}

// Text constructors keep v exactly as given; callers that want trimmed NFC
// text pass it through NormalizeText first.

// SetCustomer returns an edit of the customer name.
func SetCustomer(v string) Edit { return Edit{Field: FieldCustomer, Value: v} }

// SetPurchaseAmount returns an edit of the purchase amount.
func SetPurchaseAmount(v float64) Edit { return Edit{Field: FieldPurchaseAmount, Value: v} }

// SetPaidAmount returns an edit of the amount paid.
func SetPaidAmount(v float64) Edit { return Edit{Field: FieldPaidAmount, Value: v} }

// SetPaymentMethod returns an edit of the payment method. Any text is accepted.
func SetPaymentMethod(v string) Edit { return Edit{Field: FieldPaymentMethod, Value: v} }

// SetDeliverer returns an edit of the assigned deliverer.
func SetDeliverer(v string) Edit { return Edit{Field: FieldDeliverer, Value: v} }

// SetDelivered returns an edit of the completion flag.
func SetDelivered(v bool) Edit { return Edit{Field: FieldDelivered, Value: v} }

// SetDeliveredAt returns an edit of the completion time, formatted as TimeLayout.
func SetDeliveredAt(v string) Edit { return Edit{Field: FieldDeliveredAt, Value: v} }

// Validate checks that the field is updatable and the value matches its kind.
func (e Edit) Validate() error {
	kind, ok := fieldKinds[e.Field]
	if !ok {
		return invalidField(string(e.Field))
	}
	var matches bool
	switch kind {
	case KindText, KindTime:
		_, matches = e.Value.(string)
	case KindAmount:
		_, matches = e.Value.(float64)
	case KindFlag:
		_, matches = e.Value.(bool)
	}
	if !matches {
		return fmt.Errorf("%w: %s expects %s, got %T", ErrValueType, e.Field, kind, e.Value)
	}
	if kind == KindTime {
		if _, err := time.Parse(TimeLayout, e.Value.(string)); err != nil {
			return fmt.Errorf("%w: %s expects HH:MM:SS, got %q", ErrValueType, e.Field, e.Value)
		}
	}
	return nil
}

// SQLValue returns the value in its column representation.
// delivered is stored as INTEGER 0/1.
func (e Edit) SQLValue() any {
	if b, ok := e.Value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return e.Value
}

func (e Edit) String() string {
	return fmt.Sprintf("%s=%v", e.Field, e.Value)
}

// ParseEdit converts adapter text into a typed edit for field name.
// Amounts accept a comma decimal separator; flags accept
// true/false, 1/0, yes/no and sim/não.
func ParseEdit(name, raw string) (Edit, error) {
	f, err := ParseField(name)
	if err != nil {
		return Edit{}, err
	}

	switch f.Kind() {
	case KindAmount:
		v, err := ParseAmount(raw)
		if err != nil {
			return Edit{}, fmt.Errorf("%s: %w", f, err)
		}
		return Edit{Field: f, Value: v}, nil
	case KindFlag:
		v, err := ParseFlag(raw)
		if err != nil {
			return Edit{}, fmt.Errorf("%w: %s: %v", ErrValueType, f, err)
		}
		return Edit{Field: f, Value: v}, nil
	case KindTime:
		e := SetDeliveredAt(strings.TrimSpace(raw))
		if err := e.Validate(); err != nil {
			return Edit{}, err
		}
		return e, nil
	}
	return Edit{Field: f, Value: NormalizeText(raw)}, nil
}

// ParseAmount parses a decimal number, accepting "," as decimal separator.
// NaN and infinities are rejected with ErrValueType.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValueType, raw)
	}
	return v, nil
}

// ParseFlag parses a boolean in English or Portuguese.
func ParseFlag(raw string) (bool, error) {
	switch strings.ToLower(NormalizeText(raw)) {
	case "true", "1", "yes", "y", "sim", "s":
		return true, nil
	case "false", "0", "no", "n", "não", "nao":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", raw)
}
