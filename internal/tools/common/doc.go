// Package common provides shared helpers for MCP tool packages.
package common
