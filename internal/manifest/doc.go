// Package manifest defines the canonical dataset row schema and its CSV
// persistence.
//
// Every persisted file (dataset.csv, A.csv, B.csv) carries exactly the same
// ten columns in fixed order; the empty string is the explicit unknown
// sentinel, never an absent field.
package manifest
