package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newUnassociateCmd())
}

func newUnassociateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassociate <ext>",
		Short: "Release a file extension and restore its previous owner",
		Long: `The unassociate command removes the program's ProgID keys (only while they
are empty), releases the extension, and restores the owner kept in the backup
slot, if any.

Example:
  assocctl unassociate plt --program Plotter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnassociate(args)
		},
	}
	return cmd
}

type unassociateResult struct {
	Extension string `json:"extension"`
	ProgID    string `json:"prog_id"`
	Restored  string `json:"restored,omitempty"`
}

func runUnassociate(args []string) error {
	ext := normalizeExt(args[0])

	s, err := openSession()
	if err != nil {
		return err
	}

	// The backup slot is gone once restored; read it first.
	rec, _, err := s.mgr.Record(ext)
	if err != nil {
		return s.finish(false, err)
	}

	runErr := s.mgr.Unassociate(ext)
	if err := s.finish(true, runErr); err != nil {
		return err
	}

	res := unassociateResult{Extension: ext, ProgID: s.mgr.ProgID(ext), Restored: rec.Backup}
	if jsonOut {
		return printJSON(res)
	}
	printInfo("Unassociated .%s\n", ext)
	if res.Restored != "" {
		printInfo("Restored previous owner: %s\n", res.Restored)
	}
	return nil
}
