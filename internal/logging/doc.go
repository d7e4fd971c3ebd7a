// Package logging assembles the structured slog loggers used across
// neuroprep commands.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// provides component-tagged child loggers plus a no-op logger for tests and
// wiring code that cannot fail. Prefer these constructors over hand-rolled
// slog setup so every command emits log lines with the same shape.
package logging
