// Package output formats change-detection reports for display or machine
// consumption.
//
// Three formats are supported:
//   - text     human-readable terminal output (default)
//   - json     the full structured report, identical to the saved report file
//   - markdown suitable for chat messages, tickets or CI job summaries
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*analysis.Report]. [WriteReport]
// handles destination selection.
package output
