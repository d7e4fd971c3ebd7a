// Package pairing builds longitudinal image pairs from a dataset manifest.
//
// Rows are grouped by a subject key, ordered by the acquisition timestamp
// recovered from image path and image uid, and emitted as two consecutive
// manifest rows per pair, earlier scan first. Rows without a recoverable
// timestamp never pair. Timestamps steer ordering only; they are not written
// to the output.
package pairing
