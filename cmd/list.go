package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured dependency groups",
	Long: `Print every dependency group of the configuration, its update kind,
and its membership patterns.`,
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	kindColor := color.New(color.FgYellow)

	for _, group := range cfg.Groups {
		appliesTo := group.AppliesTo
		if appliesTo == "" {
			appliesTo = "version-updates"
		}

		fmt.Printf("%s  (%s)\n", nameColor.Sprint(group.Name), kindColor.Sprint(appliesTo))

		if len(group.Rules.Patterns) > 0 {
			fmt.Printf("  patterns: %s\n", strings.Join(group.Rules.Patterns, ", "))
		} else {
			fmt.Println("  patterns: * (catch-all)")
		}
		if len(group.Rules.ExcludePatterns) > 0 {
			fmt.Printf("  excludes: %s\n", strings.Join(group.Rules.ExcludePatterns, ", "))
		}
	}

	return nil
}
