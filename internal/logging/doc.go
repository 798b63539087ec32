// Package logging provides slog setup and attribute helpers shared
// across the Donetick MCP server.
//
// The helpers enforce consistent attribute naming (operation, tool,
// method, path, attempt, status, error) so log lines from the request
// pipeline and the tool layer can be correlated. SanitizeToken masks
// credentials before they reach a log sink.
package logging
