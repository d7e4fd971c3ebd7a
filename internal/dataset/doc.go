// Package dataset assembles manifest rows from study sheets and the
// preprocessed image tree.
//
// Two builders exist. The match builder walks a source sheet and picks the
// most plausible warped artifact per row via heuristic path scoring. The
// merge builder joins a download manifest against a study sheet by image uid
// (falling back to subject plus nearest exam date) and resolves artifact
// paths through a uid-keyed tree scan. Both produce the same fixed
// 10-column row schema and report matched/skipped counts.
package dataset
