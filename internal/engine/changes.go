package engine

import (
	"context"

	"github.com/roach88/entregas/internal/record"
)

// ApplyChanges compares an edited row against the stored record and applies
// an edit for every editable field whose value differs, in column order.
// The edited row's id and number are ignored; stored.ID is the target.
//
// Returns the fields that were written. Stops at the first failing edit and
// returns the fields written before it together with the error.
func (e *Engine) ApplyChanges(ctx context.Context, stored, edited record.Record) ([]record.Field, error) {
	written := []record.Field{}

	for _, f := range record.EditableFields() {
		edit, changed := diffField(f, stored, edited)
		if !changed {
			continue
		}
		if err := e.ApplyEdit(ctx, stored.ID, edit); err != nil {
			return written, err
		}
		written = append(written, f)
	}

	if len(written) == 0 {
		e.logger.Debug("no changes", "id", stored.ID)
	}
	return written, nil
}

// diffField returns the edit that turns stored's value of f into edited's,
// and whether the two differ. Edited text is normalized before comparing
// and writing.
func diffField(f record.Field, stored, edited record.Record) (record.Edit, bool) {
	switch f {
	case record.FieldCustomer:
		return textEdit(record.SetCustomer, edited.Customer, stored.Customer)
	case record.FieldPurchaseAmount:
		return record.SetPurchaseAmount(edited.PurchaseAmount), edited.PurchaseAmount != stored.PurchaseAmount
	case record.FieldPaidAmount:
		return record.SetPaidAmount(edited.PaidAmount), edited.PaidAmount != stored.PaidAmount
	case record.FieldPaymentMethod:
		return textEdit(record.SetPaymentMethod, edited.PaymentMethod, stored.PaymentMethod)
	case record.FieldDeliverer:
		return textEdit(record.SetDeliverer, edited.Deliverer, stored.Deliverer)
	case record.FieldDelivered:
		return record.SetDelivered(edited.Delivered), edited.Delivered != stored.Delivered
	}
	return record.Edit{}, false
}

func textEdit(set func(string) record.Edit, edited, stored string) (record.Edit, bool) {
	v := record.NormalizeText(edited)
	return set(v), v != stored
}
