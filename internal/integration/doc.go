// Package integration exercises the bootstrap flow end to end with the real
// process runner and a scripted stand-in for the Python interpreter.
package integration
