package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/evaluator"
	"github.com/podhmo/cslit/internal/object"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		file  string
		class string
	)
	cmd := &cobra.Command{
		Use:   "eval [flags] <expr>",
		Short: "Evaluate an expression against the bootstrap variables",
		Long: `Evaluate an expression against the bootstrap variables.
With --file the expression sees the file-level declarations of that file,
and with --class also the members of that class.`,
		Example: `  cslit eval --set Host=example.com '$"https://{Host}/api"'
  cslit eval --file Admin.cs --class Admin 'EndpointWithShareLink("abc")'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env := a.bootstrap
			if file != "" {
				l, err := a.newLoader()
				if err != nil {
					return err
				}
				scope, err := l.LoadPath(ctx, file, a.bootstrap)
				if err != nil {
					return err
				}
				env = scope.Env()
				if class != "" {
					c, ok := scope.Class(class)
					if !ok {
						return fmt.Errorf("class %q not found in %s", class, file)
					}
					env = c.Env
				}
			} else if class != "" {
				return fmt.Errorf("--class requires --file")
			}

			bag := diag.NewBag()
			ev := evaluator.New(evaluator.WithLogger(a.logger), evaluator.WithReporter(bag), evaluator.WithMaxDepth(a.maxDepth))
			v := ev.Eval(ctx, strings.Join(args, " "), object.NewEnclosedEnvironment(env))

			fmt.Fprintln(cmd.OutOrStdout(), v)
			for _, d := range bag.Items() {
				fmt.Fprintln(cmd.ErrOrStderr(), d)
			}
			if a.strict && bag.Len() > 0 {
				return errDiagnostics
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "C# file whose declarations are in scope")
	cmd.Flags().StringVar(&class, "class", "", "class of --file whose members are in scope")
	return cmd
}
