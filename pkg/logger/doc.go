// Package logger builds structured slog loggers with context-extracted
// attributes and optional Sentry forwarding.
//
// A ContextExtractor pulls request-scoped values (request ID, user
// identity) out of a context.Context on every log call. Extraction is
// implemented as a slog.Handler wrapper, so it composes with any
// destination handler.
//
// Sentry forwarding is opt-in: with an empty DSN the logger writes to
// stdout only, which keeps development and production on the same code
// path.
package logger
