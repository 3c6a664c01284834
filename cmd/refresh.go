package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/groupdate/application"
	"github.com/rios0rios0/groupdate/config"
	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/checker"
	"github.com/rios0rios0/groupdate/infrastructure/ecosystem"
	"github.com/rios0rios0/groupdate/infrastructure/ecosystem/gomod"
	"github.com/rios0rios0/groupdate/infrastructure/ecosystem/terraform"
	"github.com/rios0rios0/groupdate/infrastructure/fetcher"
	"github.com/rios0rios0/groupdate/infrastructure/gateway"
	ghGateway "github.com/rios0rios0/groupdate/infrastructure/gateway/github"
	glGateway "github.com/rios0rios0/groupdate/infrastructure/gateway/gitlab"
	"github.com/rios0rios0/groupdate/infrastructure/reporter"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	groupOverride string
	repoPath      string
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reconcile one dependency group against its open Pull Request",
	Long: `Build a snapshot of the project's dependencies, compute the group's
change-set across all configured directories, compare it against the group's
currently open Pull Request, and execute the resulting lifecycle action
(create, update in place, replace, supersede, or close).

This is the main command intended to be driven per group, e.g. from a
cronjob iterating all configured groups.`,
	RunE: runRefresh,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	refreshCmd.Flags().StringVar(
		&groupOverride, "group", "",
		"Refresh this group instead of the one named in the config",
	)
	refreshCmd.Flags().StringVar(
		&repoPath, "path", ".",
		"Path to the local repository checkout",
	)
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groupName := cfg.Job.Group
	if groupOverride != "" {
		groupName = groupOverride
	}
	if groupName == "" {
		return fmt.Errorf("no group to refresh: set job.group or pass --group")
	}

	container, err := buildContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}

	return container.Invoke(func(
		gw domain.ServiceGateway,
		eco ecosystem.Ecosystem,
		files domain.FileFetcher,
		checkers domain.CheckerFactory,
		rep domain.Reporter,
	) error {
		snapshot, buildErr := application.BuildSnapshot(
			ctx, cfg.Job.Directories, cfg.DependencyGroups(), files, eco.Parser(),
		)
		if buildErr != nil {
			return buildErr
		}

		compiler := application.NewChangeCompiler(snapshot, checkers, eco.Updater())
		refresher := application.NewGroupRefresher(snapshot, compiler, gw, rep)

		decision, refreshErr := refresher.Refresh(
			ctx, groupName, application.RefreshOptions{DryRun: dryRun},
		)
		if refreshErr != nil {
			return refreshErr
		}

		logger.Infof("Refresh of group %q complete: %s", groupName, decision.Action)
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create groupdate.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildContainer wires the refresh object graph.
func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		buildGatewayRegistry,
		buildEcosystemRegistry,
		func() domain.Reporter { return reporter.New() },
		func() domain.FileFetcher { return fetcher.NewLocalFetcher(repoPath) },

		func(c *config.Config, reg *gateway.Registry) (domain.ServiceGateway, error) {
			return reg.Get(c.Gateway.Type, gateway.Config{
				Token:        c.Gateway.Token,
				Owner:        c.Gateway.Owner,
				Repository:   c.Gateway.Repository,
				TargetBranch: c.Gateway.TargetBranch,
			})
		},

		func(c *config.Config, reg *ecosystem.Registry) (ecosystem.Ecosystem, error) {
			eco := reg.Get(c.Job.Ecosystem)
			if eco == nil {
				return nil, fmt.Errorf("unknown ecosystem: %q", c.Job.Ecosystem)
			}
			return eco, nil
		},

		func(c *config.Config) (domain.CheckerFactory, error) {
			source, err := buildVersionSource(c)
			if err != nil {
				return nil, err
			}
			return checker.Factory(source), nil
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}
	return container, nil
}

func buildGatewayRegistry() *gateway.Registry {
	reg := gateway.NewRegistry()
	reg.Register("github", ghGateway.New)
	reg.Register("gitlab", glGateway.New)
	return reg
}

func buildEcosystemRegistry() *ecosystem.Registry {
	reg := ecosystem.NewRegistry()
	reg.Register(gomod.New())
	reg.Register(terraform.New())
	return reg
}

// buildVersionSource picks the candidate-version source for the job's
// ecosystem: the module proxy for Go modules, repository tags for
// git-pinned Terraform modules.
func buildVersionSource(cfg *config.Config) (checker.VersionSource, error) {
	switch cfg.Job.Ecosystem {
	case "gomod":
		return checker.NewGoProxySource(), nil

	case "terraform":
		switch cfg.Gateway.Type {
		case "github":
			return ghGateway.NewTagSource(cfg.Gateway.Token, cfg.Gateway.Owner), nil
		case "gitlab":
			return glGateway.NewTagSource(cfg.Gateway.Token, cfg.Gateway.Owner), nil
		default:
			return nil, fmt.Errorf(
				"no tag source for gateway type %q", cfg.Gateway.Type,
			)
		}

	default:
		return nil, fmt.Errorf("unknown ecosystem: %q", cfg.Job.Ecosystem)
	}
}
