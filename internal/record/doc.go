// Package record defines the delivery record model for entregas.
//
// This package contains the record type, the creation draft, and the closed
// enumeration of updatable fields. All other internal packages import record;
// record imports nothing internal.
//
// Key design constraints:
//   - id and number are never part of the updatable field set
//   - Column names come from the Field enumeration, never from caller input
//   - Text values are stored in Unicode NFC form
//   - delivered_at is a wall-clock time of day ("15:04:05"), nil until the
//     first completion transition
package record
