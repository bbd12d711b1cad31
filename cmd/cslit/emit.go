package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podhmo/cslit/internal/codegen"
)

func newEmitCmd(a *app) *cobra.Command {
	var (
		output            string
		pkg               string
		includeUnresolved bool
	)
	cmd := &cobra.Command{
		Use:   "emit [flags] -o out.go <file.cs|dir>...",
		Short: "Generate Go constants for every resolved class value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("package") && a.cfg.Package != "" {
				pkg = a.cfg.Package
			}
			files, err := a.scan(cmd.Context(), args)
			if err != nil {
				return err
			}
			src, err := codegen.GenerateConstants(files, codegen.Options{Package: pkg, IncludeUnresolved: includeUnresolved})
			if err != nil {
				return err
			}

			if output == "-" {
				formatted, err := codegen.Format("constants.go", src)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(formatted); err != nil {
					return err
				}
			} else {
				if err := codegen.WriteFile(output, src); err != nil {
					return err
				}
				a.logger.InfoContext(cmd.Context(), "constants written", "path", output, "files", len(files))
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			}
			return a.exitStatus(files)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output Go file, - for stdout")
	cmd.Flags().StringVar(&pkg, "package", "constants", "package name of the generated file")
	cmd.Flags().BoolVar(&includeUnresolved, "include-unresolved", false, "list unresolved values as comments")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
