package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newAssociateCmd())
}

func newAssociateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "associate <ext> <exe>",
		Short: "Make a program the handler for a file extension",
		Long: `The associate command registers a ProgID for the extension, points its open
verb at the executable, and claims the extension. A previous owner is kept in
a backup slot and comes back on unassociate.

Example:
  assocctl associate plt "C:\Program Files\Plotter\plotter.exe" --program Plotter
  assocctl associate .csv ./plotter.exe --store regfile --reg-file user.reg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssociate(args)
		},
	}
	return cmd
}

// normalizeExt accepts the extension with or without its leading dot.
func normalizeExt(ext string) string {
	return strings.TrimPrefix(ext, ".")
}

func runAssociate(args []string) error {
	ext := normalizeExt(args[0])
	exe, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	runErr := s.mgr.Associate(ext, exe)
	if err := s.finish(true, runErr); err != nil {
		return err
	}

	if jsonOut {
		rec, _, err := s.mgr.Record(ext)
		if err != nil {
			return err
		}
		return printJSON(rec)
	}
	printInfo("Associated .%s with %s (%s)\n", ext, s.cfg.Program, s.mgr.ProgID(ext))
	return nil
}
