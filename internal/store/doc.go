// Package store provides SQLite-backed durable storage for delivery records.
//
// The store owns a single table, deliveries, keyed by an auto-assigned id.
// Each record also carries a display number derived at insert time as
// MAX(number)+1, so numbering restarts at 1 after ClearAll and never reuses
// a value while older records remain.
//
// # Critical Patterns
//
// Closed column set:
//   - UpdateField only writes columns named by record.Field
//   - Column names are constants of the enumeration, never caller text
//
// Scoped transactions:
//   - Insert computes the next number and inserts in one transaction
//   - Modify reads a record and applies its edits in one transaction
//   - Every other operation is a single statement on the pooled connection
//
// Insertion order:
//   - List returns records ORDER BY id ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Concurrent inserts from separate processes can still observe the same
// maximum and share a number; the index on number is not unique.
package store
