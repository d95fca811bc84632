package record

import (
	"slices"
	"strings"
)

// DefaultPaymentMethods are the choices offered by the creation path.
// Updates accept free text.
var DefaultPaymentMethods = []string{"Dinheiro", "Pix", "Cartão"}

// Record is one sale/delivery entry.
type Record struct {
	ID             int64   `json:"id"`
	Number         int64   `json:"number"`
	Customer       string  `json:"customer"`
	PurchaseAmount float64 `json:"purchase_amount"`
	PaidAmount     float64 `json:"paid_amount"`
	PaymentMethod  string  `json:"payment_method"`
	Deliverer      string  `json:"deliverer"`
	Delivered      bool    `json:"delivered"`
	DeliveredAt    *string `json:"delivered_at"`
}

// DeliveredAtString returns the completion time or "" when never delivered.
func (r Record) DeliveredAtString() string {
	if r.DeliveredAt == nil {
		return ""
	}
	return *r.DeliveredAt
}

// Value returns the typed value held by the record for field f.
// Returns ErrInvalidField for fields outside the enumeration.
func (r Record) Value(f Field) (any, error) {
	switch f {
	case FieldCustomer:
		return r.Customer, nil
	case FieldPurchaseAmount:
		return r.PurchaseAmount, nil
	case FieldPaidAmount:
		return r.PaidAmount, nil
	case FieldPaymentMethod:
		return r.PaymentMethod, nil
	case FieldDeliverer:
		return r.Deliverer, nil
	case FieldDelivered:
		return r.Delivered, nil
	case FieldDeliveredAt:
		return r.DeliveredAt, nil
	}
	return nil, invalidField(string(f))
}

// With returns a copy of r with the edit applied.
// The edit must already be valid (see Edit.Validate).
func (r Record) With(e Edit) Record {
	switch e.Field {
	case FieldCustomer:
		r.Customer = e.Value.(string)
	case FieldPurchaseAmount:
		r.PurchaseAmount = e.Value.(float64)
	case FieldPaidAmount:
		r.PaidAmount = e.Value.(float64)
	case FieldPaymentMethod:
		r.PaymentMethod = e.Value.(string)
	case FieldDeliverer:
		r.Deliverer = e.Value.(string)
	case FieldDelivered:
		r.Delivered = e.Value.(bool)
	case FieldDeliveredAt:
		s := e.Value.(string)
		r.DeliveredAt = &s
	}
	return r
}

// Draft holds the inputs of the creation path.
type Draft struct {
	Customer       string  `json:"customer" yaml:"customer"`
	PurchaseAmount float64 `json:"purchase_amount" yaml:"purchase_amount"`
	PaidAmount     float64 `json:"paid_amount" yaml:"paid_amount"`
	PaymentMethod  string  `json:"payment_method" yaml:"payment_method"`
	Deliverer      string  `json:"deliverer" yaml:"deliverer"`
}

// Normalize returns a copy of the draft with text fields in NFC form.
func (d Draft) Normalize() Draft {
	d.Customer = NormalizeText(d.Customer)
	d.PaymentMethod = NormalizeText(d.PaymentMethod)
	d.Deliverer = NormalizeText(d.Deliverer)
	return d
}

// Validate applies the creation-path rules: a customer is required and the
// payment method must be empty or one of methods (case-insensitive).
// A nil methods slice accepts any payment method.
func (d Draft) Validate(methods []string) error {
	if strings.TrimSpace(d.Customer) == "" {
		return ErrCustomerRequired
	}
	if d.PaymentMethod == "" || methods == nil {
		return nil
	}
	method := NormalizeText(d.PaymentMethod)
	ok := slices.ContainsFunc(methods, func(m string) bool {
		return strings.EqualFold(NormalizeText(m), method)
	})
	if !ok {
		return &PaymentMethodError{Method: d.PaymentMethod, Allowed: methods}
	}
	return nil
}
