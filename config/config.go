package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/groupdate/domain"
)

// Config is the top-level configuration for groupdate.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Job     JobConfig     `yaml:"job"`
	Groups  []GroupConfig `yaml:"groups"`
}

// GatewayConfig describes the hosting provider the job talks to.
type GatewayConfig struct {
	Type         string `yaml:"type"`          // "github", "gitlab"
	Token        string `yaml:"token"`         // Inline, ${ENV_VAR}, or file path
	Owner        string `yaml:"owner"`         // Organization or group
	Repository   string `yaml:"repository"`    // Repository / project name
	TargetBranch string `yaml:"target-branch"` // Defaults to the provider's default branch
}

// JobConfig is the read-only input of a single refresh job.
type JobConfig struct {
	Group        string          `yaml:"group"`       // Name of the group to refresh
	Ecosystem    string          `yaml:"ecosystem"`   // "gomod", "terraform"
	Directories  []string        `yaml:"directories"` // Defaults to ["/"]
	SecurityOnly bool            `yaml:"security-only"`
	Experiments  map[string]bool `yaml:"experiments"`
}

// GroupConfig declares one dependency group.
type GroupConfig struct {
	Name      string           `yaml:"name"`
	AppliesTo string           `yaml:"applies-to"` // Defaults to version-updates
	Rules     GroupRulesConfig `yaml:"rules"`
}

// GroupRulesConfig is the group's membership predicate.
type GroupRulesConfig struct {
	Patterns        []string `yaml:"patterns"`
	ExcludePatterns []string `yaml:"exclude-patterns"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables
// and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Gateway.Token = ResolveToken(cfg.Gateway.Token)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".groupdate.yaml",
		".groupdate.yml",
		"groupdate.yaml",
		"groupdate.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// DependencyGroups converts the configured groups into domain groups, in
// declared order. When the job is security-only, only security-update groups
// are returned; otherwise only version-update groups are.
func (c *Config) DependencyGroups() []domain.DependencyGroup {
	wanted := domain.AppliesToVersionUpdates
	if c.Job.SecurityOnly {
		wanted = domain.AppliesToSecurityUpdates
	}

	var groups []domain.DependencyGroup
	for _, gc := range c.Groups {
		appliesTo := domain.GroupAppliesTo(gc.AppliesTo)
		if gc.AppliesTo == "" {
			appliesTo = domain.AppliesToVersionUpdates
		}
		if appliesTo != wanted {
			continue
		}
		groups = append(groups, domain.DependencyGroup{
			Name:      gc.Name,
			AppliesTo: appliesTo,
			Rules: domain.GroupRules{
				Patterns:        gc.Rules.Patterns,
				ExcludePatterns: gc.Rules.ExcludePatterns,
			},
		})
	}
	return groups
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if cfg.Gateway.Type == "" {
		return errors.New("gateway.type is required")
	}
	if cfg.Gateway.Token == "" {
		return errors.New(
			"gateway.token is required (set inline, via ${ENV_VAR}, or as file path)",
		)
	}
	if cfg.Gateway.Owner == "" {
		return errors.New("gateway.owner is required")
	}
	if cfg.Gateway.Repository == "" {
		return errors.New("gateway.repository is required")
	}

	if len(cfg.Groups) == 0 {
		return errors.New("at least one group must be configured")
	}

	seen := make(map[string]struct{}, len(cfg.Groups))
	for i, g := range cfg.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d].name is required", i)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("group %q is declared more than once", g.Name)
		}
		seen[g.Name] = struct{}{}

		switch g.AppliesTo {
		case "", string(domain.AppliesToVersionUpdates), string(domain.AppliesToSecurityUpdates):
		default:
			return fmt.Errorf(
				"groups[%d].applies-to must be %q or %q",
				i, domain.AppliesToVersionUpdates, domain.AppliesToSecurityUpdates,
			)
		}
	}

	return nil
}
