// Package harness runs delivery scenarios against a fresh record store.
//
// A scenario is a YAML file describing a sequence of adds, edits and resets,
// followed by assertions on the final record set. Scenarios double as
// executable documentation of the numbering and completion-stamp rules.
//
// # Scenario Format
//
//	name: deliver-cycle
//	description: "What this scenario validates"
//	clock:
//	  start: "14:35:02"
//	  step: 1s
//	payment_methods: [Dinheiro, Pix, Cartão]
//	steps:
//	  - add: { customer: Ana, purchase_amount: 100, payment_method: Pix }
//	  - edit: { number: 1, field: delivered, value: true }
//	  - edit: { number: 1, field: number, value: 9 }
//	    expect_error: invalid_field
//	  - reset: true
//	assertions:
//	  - type: count
//	    count: 0
//	  - type: numbers
//	    numbers: []
//	  - type: record
//	    number: 1
//	    expect: { delivered: true, delivered_at: "14:35:02" }
//
// # Assertion Types
//
//   - count: Verifies the number of stored records
//   - numbers: Verifies the display numbers in insertion order
//   - record: Verifies field values of the record with a display number
//
// # Deterministic Testing
//
// Every scenario runs against its own in-memory SQLite database with a
// testutil.FixedClock, so delivered_at stamps and ids are identical across
// runs. RunWithGolden compares the trace and final records against
// testdata/golden/{name}.golden.
package harness
