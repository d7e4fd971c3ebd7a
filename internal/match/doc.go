// Package match selects the most plausible imaging artifact for a manifest
// row.
//
// Matching is a pure function over the immutable preprocessed-tree index:
// assemble a candidate pool from the row's identifiers, score each candidate
// path against subject id, image id, series id and visit token, and keep the
// best-scoring path. When several candidates exist and none of them matched
// any criterion the row is treated as too ambiguous and left unmatched; a
// lone unscored candidate is still accepted.
package match
