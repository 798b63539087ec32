// Package config loads and validates the Donetick MCP server
// configuration from environment variables.
//
// Configuration is read once at startup and validated eagerly: a
// missing base URL or API token aborts the process before any server
// component is constructed. A .env file in the working directory is
// loaded when present, mirroring typical local development setups.
//
// Recognized variables:
//
//	DONETICK_BASE_URL        Donetick instance URL (required)
//	DONETICK_API_TOKEN       eAPI access token (required)
//	LOG_LEVEL                debug, info, warn or error (default: info)
//	RATE_LIMIT_PER_SECOND    outbound request rate (default: 10.0)
//	RATE_LIMIT_BURST         outbound burst size (default: 10)
package config
