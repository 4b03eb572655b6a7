// Package installer runs the external package installer and inspects the
// process table for other installer runs.
//
// The child inherits the terminal: its stdout and stderr are streamed as-is so
// the user sees pip's own diagnostics.
package installer
