package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath string
	dryRun     bool
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "groupdate",
	Short: "Grouped dependency update engine",
	Long: `A tool that keeps grouped dependency-update Pull Requests in sync with
a project's actual dependency state.

Dependencies are partitioned into named groups; for each group the engine
computes the minimal file changes to bring its members up to date across one
or more project directories, compares that change-set against the group's
currently open Pull Request, and creates, updates, replaces or closes the PR
accordingly, while preventing two groups from claiming the same dependency
in a single run.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
}
