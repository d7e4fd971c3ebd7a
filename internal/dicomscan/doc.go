// Package dicomscan locates DICOM series folders under a download tree.
//
// A series folder is any directory that directly contains slice files,
// detected by the .dcm extension or the DICM preamble. Identifying tags are
// read from the first parseable slice; unparseable series still convert,
// they just go untagged.
package dicomscan
