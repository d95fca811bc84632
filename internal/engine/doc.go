// Package engine implements the update layer for delivery records.
//
// The engine sits between a presentation adapter and the record store. It
// applies single-field edits, owns the completion transition, and exposes
// creation and bulk reset.
//
// ARCHITECTURE:
//
// Synchronous Write-Through:
// Every call blocks until the store has committed. There is no queue, no
// background goroutine and no retry. Errors from the store are returned to
// the caller wrapped with the record id and field.
//
// Completion Transition:
// Setting delivered from false to true writes delivered=1 and stamps
// delivered_at with the wall-clock time of day ("15:04:05") in one store
// transaction. Setting it back to false writes only the flag; the previous
// stamp remains. Setting it to its current value never restamps.
//
// Change Detection:
// ApplyEdit writes unconditionally. ApplyChanges is the adapter-side diff:
// it compares an edited row against the stored row and calls ApplyEdit only
// for fields that differ.
//
// Wall Clock:
// The engine never calls time.Now directly; it reads an injected Clock so
// tests and scenarios can produce deterministic stamps.
package engine
