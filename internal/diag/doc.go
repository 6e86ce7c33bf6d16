// Package diag defines the diagnostic model shared by every phase:
// severities, stable codes, the Diagnostic value, the bounded Bag
// accumulator, and the Reporter contract phases emit through.
package diag
