// Package source determines which remote archives, and which members within them, hold
// the estimate and margin records for a table. File pairs are produced in a deterministic
// order: jurisdictions in the order given, and for each, the small-area archive before
// the large-area archive.
package source
