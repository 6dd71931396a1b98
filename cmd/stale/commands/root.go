// Package commands implements the CLI commands for stale.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/build"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
)

// Application is the part of the app layer the commands drive.
type Application interface {
	Depend(ctx context.Context, target string, opts app.DependOptions) error
	Plan(ctx context.Context, target string, opts app.PlanOptions) ([]*domain.ProjectPlan, error)
	Stamp(ctx context.Context, target, configPath string) error
	Tree(ctx context.Context, target, configPath string) error
}

// verboser is implemented by loggers whose level can be lowered to debug.
type verboser interface {
	SetVerbose(verbose bool)
}

// CLI represents the command line interface for stale.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "stale",
		Short:         "Header dependency analysis and rebuild decisions for C and C++ projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	// Defined before the default so -v stays free for --verbose.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every decision and scanned header")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Workspace file, or directory to search upwards from")

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if v, ok := c.logger.(verboser); ok {
			v.SetVerbose(verbose)
		}
	}

	rootCmd.AddCommand(c.newDependCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newStampCmd())
	rootCmd.AddCommand(c.newTreeCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the writers for command output and errors.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// targetArg returns the optional target argument, defaulting to every project.
func targetArg(args []string) string {
	if len(args) == 0 {
		return domain.AllProjects
	}
	return args[0]
}

// runOptions reads the flags shared by the commands that walk the graph.
func runOptions(cmd *cobra.Command) app.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	jobs, _ := cmd.Flags().GetInt("jobs")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")
	return app.RunOptions{ConfigPath: configPath, Jobs: jobs, KeepGoing: keepGoing}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 1, "Number of projects processed in parallel")
	cmd.Flags().BoolP("keep-going", "k", false, "Keep processing independent projects after a failure")
}
