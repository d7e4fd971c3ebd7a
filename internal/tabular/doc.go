// Package tabular reads heterogeneous study sheets and normalizes their
// identifiers.
//
// Source CSVs come from different archives and spreadsheet exports: column
// names vary, encodings vary, and demographic values are spelled a dozen
// ways. This package canonicalizes headers for regex-driven column lookup,
// decodes BOM-prefixed or Latin-1 sheets, and maps sex, diagnosis, age, and
// image UID spellings onto the canonical codes the manifest schema uses.
// Unknown values normalize to the empty string, never to a guess.
package tabular
