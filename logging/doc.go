// Package logging builds the log/slog.Logger instances used across
// the worker binaries: date-stamped per-component log files, an
// optional console sink, and a switch between human-readable text and
// JSON formatting.
//
// A component's log file is stamped with the date the logger was
// built (component.YYYY-MM-DD); lumberjack handles size-based
// rotation within that file.
package logging
