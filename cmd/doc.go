// Package cmd implements the donetick-mcp command line interface.
package cmd
