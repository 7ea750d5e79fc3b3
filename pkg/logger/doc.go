// Package logger provides structured logging for the timeline archiver.
//
// It wraps zerolog behind a small Logger interface so components can log
// through an injected dependency and tests can substitute a capturing
// implementation (TestLogger) or a silent one (NewNopLogger).
//
// A process-wide instance is configured once via Initialize and retrieved
// with GetLogger. Console output goes to stderr in a human-readable format;
// an optional log file receives the same events as JSON.
package logger
