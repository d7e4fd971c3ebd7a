// Package timestamp extracts best-effort acquisition times from free-form
// identifier and path strings.
//
// Imaging archives rarely agree on where the acquisition time lives: it may
// be a 14-digit DICOM-style stamp inside a directory name, an 8-digit date in
// an image UID, or nothing more than a year. Extraction tries those shapes in
// strict priority order and refuses digit runs embedded in longer numbers so
// vendor IDs are never misread as dates.
package timestamp
