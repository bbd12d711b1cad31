package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podhmo/cslit/internal/driver"
	"github.com/podhmo/cslit/internal/metadata"
	"github.com/podhmo/cslit/internal/render"
)

var errDiagnostics = errors.New("diagnostics reported (--strict)")

func newScanCmd(a *app) *cobra.Command {
	var (
		format string
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "scan [flags] <file.cs|dir>...",
		Short: "Resolve every declaration and print a report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && a.cfg.Format != "" {
				format = a.cfg.Format
			}
			files, err := a.scan(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				render.Text(out, files, render.Options{Color: a.useColor(out), Quiet: quiet})
			case "json":
				err = metadata.WriteJSON(out, metadata.NewReport(files))
			case "msgpack":
				err = metadata.WriteMsgpack(out, metadata.NewReport(files))
			default:
				err = fmt.Errorf("invalid --format %q (want text, json or msgpack)", format)
			}
			if err != nil {
				return err
			}
			return a.exitStatus(files)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|msgpack)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide diagnostics in text output")
	return cmd
}

// scan loads every file named by args (directories are walked) and converts
// the results to reports, in argument order.
func (a *app) scan(ctx context.Context, args []string) ([]*metadata.FileReport, error) {
	paths, err := driver.ListFiles(args)
	if err != nil {
		return nil, err
	}
	l, err := a.newLoader()
	if err != nil {
		return nil, err
	}
	results, err := driver.New(l, a.jobs, a.logger).LoadFiles(ctx, paths, a.bootstrap)
	if err != nil {
		return nil, err
	}
	files := make([]*metadata.FileReport, 0, len(results))
	for _, res := range results {
		files = append(files, metadata.FromFileScope(res.Path, res.Scope, res.Err))
	}
	return files, nil
}

// exitStatus turns hard failures, and any diagnostic under --strict, into an error.
func (a *app) exitStatus(files []*metadata.FileReport) error {
	failed := 0
	diagnostics := 0
	for _, f := range files {
		if f.Error != "" {
			failed++
		}
		diagnostics += len(f.Diagnostics)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	if a.strict && diagnostics > 0 {
		return errDiagnostics
	}
	return nil
}
