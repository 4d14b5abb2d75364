// Package logger builds the slog loggers used across the coordinator.
//
// It produces JSON output by default for log aggregation and text output
// for local development, supports static attributes shared by every
// record, and can inject request-scoped attributes from context through
// extractor functions. Helper attribute constructors keep key names
// consistent between components.
package logger
