package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var applyRemove bool

func init() {
	cmd := newApplyCmd()
	cmd.Flags().BoolVar(&applyRemove, "remove", false, "Unassociate the configured extensions instead")
	rootCmd.AddCommand(cmd)
}

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Associate every configured extension with the configured executable",
		Long: `The apply command reads program, executable and extensions from the
configuration and associates each extension. Every extension is attempted;
failures are reported together at the end.

Example:
  assocctl apply
  assocctl apply --remove
  REGASSOC_EXTENSIONS=plt,csv assocctl apply --program Plotter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply()
		},
	}
	return cmd
}

type applyResult struct {
	Extension string `json:"extension"`
	Action    string `json:"action"`
	Error     string `json:"error,omitempty"`
}

func runApply() error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if len(s.cfg.Extensions) == 0 {
		return s.finish(false, errors.New("no extensions configured"))
	}
	if !applyRemove && s.cfg.Executable == "" {
		return s.finish(false, errors.New("no executable configured"))
	}

	action := "associate"
	if applyRemove {
		action = "unassociate"
	}

	var (
		results []applyResult
		errs    []error
	)
	for _, ext := range s.cfg.Extensions {
		var err error
		if applyRemove {
			err = s.mgr.Unassociate(ext)
		} else {
			err = s.mgr.Associate(ext, s.cfg.Executable)
		}
		res := applyResult{Extension: ext, Action: action}
		if err != nil {
			res.Error = err.Error()
			errs = append(errs, err)
		}
		results = append(results, res)
	}

	if err := s.finish(true, nil); err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Error != "" {
				printInfo("%s .%s: FAILED: %s\n", r.Action, r.Extension, r.Error)
				continue
			}
			printInfo("%s .%s: ok\n", r.Action, r.Extension)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d extensions failed: %w", len(errs), len(results), errors.Join(errs...))
	}
	return nil
}
