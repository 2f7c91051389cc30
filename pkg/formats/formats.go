// Package formats provides parsers for Wavefront OBJ and MTL model files.
//
// Parsing is strict: the first malformed statement aborts the file and is
// reported as a *ParseError carrying its line number. Unknown keywords are
// skipped and listed in OBJ.Warnings.
package formats
