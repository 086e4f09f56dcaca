package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regassoc/pkg/assoc"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <ext> [exe]",
		Short: "Show who owns a file extension",
		Long: `The status command reports the association state of an extension. With an
executable it also checks that the open verb points at that executable.

Example:
  assocctl status plt
  assocctl status plt "C:\Program Files\Plotter\plotter.exe" --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args)
		},
	}
	return cmd
}

type statusResult struct {
	Extension  string        `json:"extension"`
	ProgID     string        `json:"prog_id"`
	State      string        `json:"state"`
	Associated *bool         `json:"associated,omitempty"`
	Record     *assoc.Record `json:"record,omitempty"`
}

func runStatus(args []string) error {
	ext := normalizeExt(args[0])

	s, err := openSession()
	if err != nil {
		return err
	}

	res, err := statusOf(s, ext, args[1:])
	if err := s.finish(false, err); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo(".%s: %s\n", ext, res.State)
	if res.Record != nil {
		printVerbose("  ProgID:  %s\n", res.Record.ProgID)
		printVerbose("  Command: %s\n", res.Record.CommandLine)
		if res.Record.IconPath != "" {
			printVerbose("  Icon:    %s\n", res.Record.IconPath)
		}
		if res.Record.Backup != "" {
			printInfo("  Backup:  %s\n", res.Record.Backup)
		}
	}
	if res.Associated != nil {
		printInfo("  Associated with executable: %t\n", *res.Associated)
	}
	return nil
}

func statusOf(s *session, ext string, exe []string) (statusResult, error) {
	state, err := s.mgr.Status(ext)
	if err != nil {
		return statusResult{}, err
	}
	res := statusResult{Extension: ext, ProgID: s.mgr.ProgID(ext), State: state.String()}

	rec, found, err := s.mgr.Record(ext)
	if err != nil {
		return statusResult{}, err
	}
	if found {
		res.Record = &rec
	}

	if len(exe) > 0 {
		path, err := filepath.Abs(exe[0])
		if err != nil {
			return statusResult{}, err
		}
		ok := s.mgr.IsAssociated(ext, path)
		res.Associated = &ok
	}
	return res, nil
}
