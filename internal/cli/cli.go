// Package cli provides riverql's command-line interface: a thin cobra
// wrapper that registers tables from a sources file and runs SQL
// against the in-process engine, built around a cobra root-command
// and global-flag structure — there is no remote service to talk to
// here, so there's no client indirection in front of the engine.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/riverql/riverql/internal/config"
	"github.com/riverql/riverql/internal/engine"
	"github.com/riverql/riverql/internal/observability"
)

// Exit codes, following the convention of a small
// closed set rather than raw 0/1.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitEngine     = 2
	ExitInternal   = 3
)

// Version information (set at build time via SetVersionInfo).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	engine  *engine.Engine
	logger  observability.Logger

	configPath  string
	sourcesPath string
	jsonOutput  bool
	quiet       bool
	debug       bool
}

// New creates a new CLI instance.
func New() *CLI {
	c := &CLI{}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI and returns an exit code.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		return ExitInternal
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riverql",
		Short: "riverql - a streaming SQL execution engine",
		Long: `riverql plans and runs a small SQL subset (SELECT, WHERE, INNER/LEFT
JOIN) over tables registered from a sources file, choosing a join
strategy (LOOKUP, SORT_MERGE, COLUMNAR, MMAP) per join independently.

Tables are bound once via --sources before a query or explain command
runs; there is no persistent catalog between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.riverql/config.yaml)")
	cmd.PersistentFlags().StringVar(&c.sourcesPath, "sources", "sources.yaml", "sources file binding table names to producers")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "engine debug mode: ordering-violation warnings")

	cmd.AddCommand(c.newQueryCmd())
	cmd.AddCommand(c.newVersionCmd())

	return cmd
}

func (c *CLI) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.debug {
		c.cfg.Engine.Debug = true
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(c.cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	c.logger = observability.NewLogrusLogger(log)

	c.engine = engine.New(
		engine.UsePolars(c.cfg.Engine.UsePolars),
		engine.Debug(c.cfg.Engine.Debug),
		engine.WithLogger(c.logger),
	)

	if _, err := os.Stat(c.sourcesPath); err == nil {
		if err := loadSources(c.sourcesPath, c.engine); err != nil {
			return fmt.Errorf("cli: loading sources file %q: %w", c.sourcesPath, err)
		}
	} else if c.sourcesPath != "sources.yaml" {
		// An explicitly named sources file that doesn't exist is an
		// error; the default name is allowed to be absent.
		return fmt.Errorf("cli: sources file %q: %w", c.sourcesPath, err)
	}

	return nil
}

func (c *CLI) printf(format string, args ...interface{}) {
	if !c.quiet {
		fmt.Printf(format, args...)
	}
}

func (c *CLI) println(args ...interface{}) {
	if !c.quiet {
		fmt.Println(args...)
	}
}

func (c *CLI) errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
