// Package domain implements the sprint and escrow value-release state machines.
//
// The package is pure: every operation takes the caller-supplied current time
// and mutates in-memory records, leaving persistence and token transfers to
// the app and storage layers. All fund accounting is integer-exact and
// overflow-safe; withdrawn amounts are monotonic and never exceed totals.
package domain
