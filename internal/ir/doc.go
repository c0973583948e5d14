// Package ir provides the canonical data types and encodings for verifylog.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Storage keys are derived, never stored: a bucket key is always
//     recomputed from its addressing tuple
//   - Key material is serialized as RFC 8785 canonical JSON
//   - Sequence numbers are 1-based; bucket and slot arithmetic lives here
//   - All JSON tags use snake_case
package ir
