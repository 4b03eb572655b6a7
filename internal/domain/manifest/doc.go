// Package manifest gives a read-only view of a pip requirements file.
//
// The loader classifies lines for logging and pre-flight checks. It never
// rejects content it does not understand: the requirement syntax belongs to
// pip.
package manifest
