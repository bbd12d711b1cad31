package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVarsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "Print the bootstrap variables in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := a.bootstrap.Bindings()
			width := 0
			for _, b := range bindings {
				width = max(width, len(b.Name))
			}
			for _, b := range bindings {
				fmt.Fprintf(cmd.OutOrStdout(), "%-*s = %s\n", width, b.Name, b.Value)
			}
			return nil
		},
	}
}
