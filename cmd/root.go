package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the drivemcp application
var rootCmd = &cobra.Command{
	Use:   "drivemcp",
	Short: "MCP server for Google Drive",
	Long: `drivemcp is a Model Context Protocol (MCP) server that gives AI
assistants structured access to Google Drive: searching and listing files,
reading and exporting content, uploading, updating metadata, and managing
sharing permissions.

The server runs over stdio for local MCP clients or over streamable HTTP
for deployed instances.`,
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
	rootCmd.SetVersionTemplate(`{{printf "drivemcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
