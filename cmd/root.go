package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the donetick-mcp application
var rootCmd = &cobra.Command{
	Use:   "donetick-mcp",
	Short: "MCP server for Donetick task tracking",
	Long: `donetick-mcp exposes a Donetick instance's chores and circle members
as MCP (Model Context Protocol) tools for AI assistants.

All Donetick API calls go through a rate-limited, retrying request
pipeline so a chatty assistant cannot overwhelm the instance.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "donetick-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
