package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath   string
	storeBackend string
	regFilePath  string
	programName  string
	verbosity    int
	quiet        bool
	jsonOut      bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "assocctl",
	Short: "Associate file extensions with a program in the per-user registry",
	Long: `assocctl registers a program as the handler for file extensions in the
current user's registry classes, keeping a backup of any previous owner and
restoring it when the association is removed.

The registry is reached through a store backend: the live Windows registry
(native), a .reg export file (regfile), or a throwaway in-memory store (memory).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/regassoc/config.toml)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: native, regfile or memory")
	rootCmd.PersistentFlags().StringVar(&regFilePath, "reg-file", "", "Path of the .reg file used by the regfile backend")
	rootCmd.PersistentFlags().StringVarP(&programName, "program", "p", "", "Program name used in ProgIDs and backup slots")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbosity > 0 && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
