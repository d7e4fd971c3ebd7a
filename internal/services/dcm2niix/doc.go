// Package dcm2niix wraps the dcm2niix command-line converter that turns
// DICOM series folders into NIfTI volumes. The converter is an external
// dependency; this package shells out per series and surfaces the tool's
// output for logging.
package dcm2niix
