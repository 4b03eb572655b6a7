// Package logger wraps zap with a process-wide sugared logger and context
// helpers (ToContext/FromContext/WithName/WithKV).
//
// Bootstrap steps receive a context and log through it, so every line carries
// the step name and the installer command it belongs to.
package logger
