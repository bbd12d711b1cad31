package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/podhmo/cslit/internal/bootstrap"
	"github.com/podhmo/cslit/internal/config"
	"github.com/podhmo/cslit/internal/loader"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax/csharp"
)

// app is the state shared by every subcommand, built before any of them runs.
type app struct {
	cfg       *config.Config
	bootstrap *object.Environment
	logger    *slog.Logger
	stdout    io.Writer
	stderr    io.Writer

	maxDepth int
	jobs     int
	color    string
	strict   bool
}

type rootFlags struct {
	configPath string
	vars       []string
	set        []string
	maxDepth   int
	jobs       int
	color      string
	debug      bool
	strict     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "cslit",
		Short: "Recover literal values from C# sources without running them",
		Long: `cslit statically resolves fields, properties and locals of C# source files:
string, number and boolean literals, concatenation, interpolation and calls
to single-expression methods, against a table of bootstrap variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, &flags)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultFileName+" if present)")
	pf.StringArrayVar(&flags.vars, "vars", nil, "bootstrap file (key=value, .toml or .yaml); repeatable")
	pf.StringArrayVar(&flags.set, "set", nil, "bootstrap variable as name=value; repeatable, wins over files")
	pf.IntVar(&flags.maxDepth, "max-depth", 0, "call depth ceiling (0 means the configured default)")
	pf.IntVar(&flags.jobs, "jobs", 0, "files loaded concurrently (0 means GOMAXPROCS)")
	pf.StringVar(&flags.color, "color", "auto", "colorize output (auto|on|off)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging (also enabled by the DEBUG environment variable)")
	pf.BoolVar(&flags.strict, "strict", false, "exit with status 1 when any diagnostic is reported")

	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newEmitCmd(a))
	rootCmd.AddCommand(newEvalCmd(a))
	rootCmd.AddCommand(newVarsCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, flags *rootFlags) error {
	level := slog.LevelWarn
	if _, ok := os.LookupEnv("DEBUG"); ok || flags.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	switch flags.color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid --color %q (want auto, on or off)", flags.color)
	}
	a.color = flags.color
	a.strict = flags.strict

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.Path != "" {
		a.logger.DebugContext(cmd.Context(), "config loaded", "path", cfg.Path)
	}

	a.maxDepth = cfg.MaxDepth
	if cmd.Flags().Changed("max-depth") {
		a.maxDepth = flags.maxDepth
	}
	a.jobs = cfg.Jobs
	if cmd.Flags().Changed("jobs") {
		a.jobs = flags.jobs
	}

	files := append(cfg.VarPaths(), flags.vars...)
	env, err := bootstrap.LoadAll(files)
	if err != nil {
		return err
	}
	pairs := map[string]string{}
	for _, s := range flags.set {
		name, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid --set %q (want name=value)", s)
		}
		pairs[strings.TrimSpace(name)] = value
	}
	a.bootstrap = bootstrap.With(env, pairs)
	a.logger.DebugContext(cmd.Context(), "bootstrap ready", "files", len(files), "names", a.bootstrap.Len())
	return nil
}

func (a *app) newLoader() (*loader.Loader, error) {
	kinds, err := a.cfg.KindMap()
	if err != nil {
		return nil, err
	}
	opts := []loader.Option{loader.WithLogger(a.logger), loader.WithKindMap(kinds)}
	if a.maxDepth > 0 {
		opts = append(opts, loader.WithMaxDepth(a.maxDepth))
	}
	return loader.New(csharp.NewProvider(), opts...), nil
}

// useColor decides --color auto by checking whether w is a terminal.
func (a *app) useColor(w io.Writer) bool {
	switch a.color {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// main builds the command tree and runs it.
// If command execution returns an error, the process exits with status code 1.
func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
