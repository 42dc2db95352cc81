// Package cli implements the epicboard command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riordanpawley/epicboard/internal/config"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/logging"
	"github.com/riordanpawley/epicboard/internal/mcptools"
)

// rootOptions holds the global flags
type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string
	json       bool

	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
}

// NewRootCmd builds the epicboard command tree writing to out and errOut
func NewRootCmd(version string, out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}
	mcptools.Version = version

	root := &cobra.Command{
		Use:   "epicboard",
		Short: "Plan epics in dependency phases",
		Long: `epicboard groups epics into execution phases from their dependencies.

An epic with no known dependencies is in phase 1; every other epic is one
phase after the latest epic it depends on. Epics sharing a phase can be
worked on in parallel. Dependency edits that would create a cycle are refused.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: .epicboard.json in the project root)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides store.path)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.json, "json", false, "print JSON output")

	root.AddCommand(
		newPhasesCmd(opts),
		newPhaseCmd(opts),
		newCycleCheckCmd(opts),
		newPreviewCmd(opts),
		newEpicCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newBoardCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, version string, args []string) int {
	root := NewRootCmd(version, os.Stdout, os.Stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}

func (o *rootOptions) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg
	return nil
}

// logger builds the stderr logger for one-shot commands
func (o *rootOptions) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, o.errOut), nil
}

// open wires the dependencies for a command. file selects a snapshot file
// instead of the database.
func (o *rootOptions) open(file string, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		var err error
		if logger, err = o.logger(); err != nil {
			return nil, err
		}
	}
	deps, err := NewDependencies(o.cfg, logger, o.out, file)
	if err != nil {
		return nil, err
	}
	deps.JSON = o.json
	return deps, nil
}

// run opens the dependencies, runs fn and closes them again
func (o *rootOptions) run(file string, fn func(deps *Dependencies) error) error {
	deps, err := o.open(file, nil)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

// splitDeps accepts ids as separate args, comma-separated lists or a mix
func splitDeps(args []string) ([]string, error) {
	return domain.ParseDependsOn(strings.Join(args, ","))
}

// ─── Phase queries ───────────────────────────────────────────────────────────

func newPhasesCmd(o *rootOptions) *cobra.Command {
	var (
		file        string
		allowCycles bool
	)
	cmd := &cobra.Command{
		Use:   "phases",
		Short: "Show epics grouped by phase",
		Long: `Show every epic grouped by phase with each phase's status.

Examples:
  # Phases from the database
  epicboard phases

  # Phases from a snapshot file, listing epics stuck on a cycle
  epicboard phases --file epics.yaml --allow-cycles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(file, func(deps *Dependencies) error {
				return PhasesCommand(cmd.Context(), deps, allowCycles)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read epics from a snapshot file (.json, .yaml)")
	cmd.Flags().BoolVar(&allowCycles, "allow-cycles", false, "list epics on a cycle instead of failing")
	return cmd
}

func newPhaseCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "phase <epic-id>",
		Short: "Print the phase of one epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(file, func(deps *Dependencies) error {
				return PhaseCommand(cmd.Context(), deps, args[0])
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read epics from a snapshot file")
	return cmd
}

func newCycleCheckCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "cycle-check <epic-id> [dep-id...]",
		Short: "Check whether a dependency list would create a cycle",
		Long: `Check whether giving an epic the listed dependencies would create a
dependency cycle. Nothing is written. Exits with status 2 on a cycle.

Examples:
  epicboard cycle-check ep-auth ep-db ep-api
  epicboard cycle-check ep-auth ep-db,ep-api`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := splitDeps(args[1:])
			if err != nil {
				return err
			}
			return o.run(file, func(deps *Dependencies) error {
				return CycleCheckCommand(cmd.Context(), deps, args[0], candidates)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read epics from a snapshot file")
	return cmd
}

func newPreviewCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "preview <epic-id> [dep-id...]",
		Short: "Show the phase an epic would get with a dependency list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := splitDeps(args[1:])
			if err != nil {
				return err
			}
			return o.run(file, func(deps *Dependencies) error {
				return PreviewCommand(cmd.Context(), deps, args[0], candidates)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read epics from a snapshot file")
	return cmd
}

// ─── Epic editing ────────────────────────────────────────────────────────────

func newEpicCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Create, list and edit epics",
	}
	cmd.AddCommand(
		newEpicAddCmd(o),
		newEpicListCmd(o),
		newEpicStatusCmd(o),
		newEpicDepsCmd(o),
		newEpicRemoveCmd(o),
	)
	return cmd
}

func newEpicAddCmd(o *rootOptions) *cobra.Command {
	var (
		id        string
		status    string
		dependsOn []string
		file      string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an epic",
		Long: `Create an epic. Without --id a random "ep-" id is assigned.

Examples:
  epicboard epic add "Billing API" --id ep-billing --depends-on ep-db,ep-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := domain.Epic{ID: id, Title: args[0]}
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				e.Status = s
			}
			parsed, err := splitDeps(dependsOn)
			if err != nil {
				return err
			}
			e.DependsOn = parsed

			return o.run(file, func(deps *Dependencies) error {
				return EpicAddCommand(cmd.Context(), deps, e)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "append to a snapshot file instead of the database")
	cmd.Flags().StringVar(&id, "id", "", "epic id")
	cmd.Flags().StringVar(&status, "status", "", "planning, active, in_progress or completed")
	cmd.Flags().StringSliceVarP(&dependsOn, "depends-on", "d", nil, "ids this epic depends on")
	return cmd
}

func newEpicListCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List epics with their phase",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(file, func(deps *Dependencies) error {
				return EpicListCommand(cmd.Context(), deps)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read epics from a snapshot file")
	return cmd
}

func newEpicStatusCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "status <epic-id> <status|next>",
		Short: "Set an epic's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(file, func(deps *Dependencies) error {
				return EpicStatusCommand(cmd.Context(), deps, args[0], args[1])
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "edit a snapshot file instead of the database")
	return cmd
}

func newEpicDepsCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "deps <epic-id> [dep-id...]",
		Short: "Replace an epic's dependencies",
		Long: `Replace an epic's dependency list. Giving no ids clears it.
The edit is refused if it would create a cycle.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dependsOn, err := splitDeps(args[1:])
			if err != nil {
				return err
			}
			return o.run(file, func(deps *Dependencies) error {
				return EpicDepsCommand(cmd.Context(), deps, args[0], dependsOn)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "edit a snapshot file instead of the database")
	return cmd
}

func newEpicRemoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <epic-id>",
		Aliases: []string{"remove"},
		Short:   "Delete an epic",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run("", func(deps *Dependencies) error {
				return EpicRemoveCommand(cmd.Context(), deps, args[0])
			})
		},
	}
}

// ─── Import / export ─────────────────────────────────────────────────────────

func newImportCmd(o *rootOptions) *cobra.Command {
	var (
		replace   bool
		fromBeads bool
		allTypes  bool
	)
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import epics from a snapshot file or beads",
		Long: `Import epics into the database. Existing epics are updated by id;
--replace empties the database first. A batch that contains a dependency
cycle is refused as a whole.

Examples:
  epicboard import epics.yaml
  epicboard import --from-beads`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return o.run("", func(deps *Dependencies) error {
				return ImportCommand(cmd.Context(), deps, path, fromBeads, allTypes, replace)
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete all epics before importing")
	cmd.Flags().BoolVar(&fromBeads, "from-beads", false, "import epics from the bd CLI")
	cmd.Flags().BoolVar(&allTypes, "all-types", false, "with --from-beads, import every issue type")
	return cmd
}

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export epics to a snapshot file (stdout when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return o.run("", func(deps *Dependencies) error {
				return ExportCommand(cmd.Context(), deps, path)
			})
		},
	}
}

// ─── Long-running ────────────────────────────────────────────────────────────

func newBoardCmd(o *rootOptions) *cobra.Command {
	var (
		file  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the terminal phase board",
		Long: `Open an interactive board with one column per phase.

With --file and --watch the board reloads whenever the snapshot file
changes on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && file == "" {
				return fmt.Errorf("%w: --watch needs --file", domain.ErrInvalid)
			}

			// The board owns the terminal, so logs go to a file
			logFile, err := logging.OpenFile(o.cfg.Log.File)
			if err != nil {
				return err
			}
			defer logFile.Close()
			level, err := logging.ParseLevel(o.cfg.Log.Level)
			if err != nil {
				return err
			}

			deps, err := o.open(file, logging.New(level, logFile))
			if err != nil {
				return err
			}
			defer deps.Close()
			return BoardCommand(cmd.Context(), deps, watch)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "show a snapshot file instead of the database")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the snapshot file changes")
	return cmd
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				o.cfg.Server.Host, o.cfg.Server.Port = host, port
			}
			return o.run("", func(deps *Dependencies) error {
				return ServeCommand(cmd.Context(), deps)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (overrides server config)")
	return cmd
}

func newMCPCmd(o *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve phase tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(file, MCPCommand)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "serve a snapshot file instead of the database")
	return cmd
}
