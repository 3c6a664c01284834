// Package terraform implements dependency parsing and file editing for
// git-sourced Terraform modules pinned with ?ref= version refs.
package terraform

import (
	"context"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/groupdate/domain"
)

const (
	ecosystemName = "terraform"
	minMatchLen   = 6
)

// Ecosystem bundles the Terraform module parser and updater.
type Ecosystem struct {
	parser  *Parser
	updater *Updater
}

// New creates the Terraform ecosystem.
func New() *Ecosystem {
	return &Ecosystem{
		parser:  &Parser{},
		updater: &Updater{},
	}
}

func (e *Ecosystem) Name() string { return ecosystemName }

// Parser returns the .tf dependency parser.
func (e *Ecosystem) Parser() domain.DependencyParser { return e.parser }

// Updater returns the .tf file updater.
func (e *Ecosystem) Updater() domain.FileUpdater { return e.updater }

// Parser extracts git-sourced module dependencies from .tf files.
type Parser struct{}

// Parse scans every .tf file for module blocks with a git source carrying a
// ?ref= pin. HCL parsing is attempted first with a regex fallback for files
// the parser rejects.
func (p *Parser) Parse(files []domain.DependencyFile) ([]domain.Dependency, error) {
	var deps []domain.Dependency

	for _, file := range files {
		if !strings.HasSuffix(file.Path, ".tf") {
			continue
		}
		for _, dep := range scanFile(file.Content, file.Path) {
			dep.Directory = file.Directory
			deps = append(deps, dep)
		}
	}

	return deps, nil
}

// Updater rewrites ?ref= pins in .tf files.
type Updater struct{}

// UpdateFiles applies each dependency's new ref to the files referencing its
// source and returns the files it touched.
func (u *Updater) UpdateFiles(
	_ context.Context,
	deps []domain.Dependency,
	files []domain.DependencyFile,
) ([]domain.DependencyFile, error) {
	var changed []domain.DependencyFile

	for _, file := range files {
		if !strings.HasSuffix(file.Path, ".tf") {
			continue
		}

		content := file.Content
		for _, dep := range deps {
			content = applyVersionUpgrade(content, dep)
		}
		if content == file.Content {
			continue
		}

		changed = append(changed, domain.DependencyFile{
			Directory: file.Directory,
			Path:      file.Path,
			Content:   content,
			Operation: "edit",
		})
	}

	return changed, nil
}

// --- scanning ---

func scanFile(content, filePath string) []domain.Dependency {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(content), filePath)
	if diags.HasErrors() {
		return scanWithRegex(content)
	}

	body := file.Body
	if body == nil {
		return nil
	}

	bodyContent, _, partialDiags := body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if partialDiags.HasErrors() {
		return scanWithRegex(content)
	}

	var deps []domain.Dependency
	for _, block := range bodyContent.Blocks {
		if block.Type != "module" {
			continue
		}

		moduleName := ""
		if len(block.Labels) > 0 {
			moduleName = block.Labels[0]
		}

		attrs, _ := block.Body.JustAttributes()
		sourceAttr, hasSource := attrs["source"]
		if !hasSource {
			continue
		}

		sourceVal, sourceDiags := sourceAttr.Expr.Value(&hcl.EvalContext{})
		if sourceDiags.HasErrors() || sourceVal.Type() != cty.String {
			continue
		}

		dep, ok := buildDependency(moduleName, sourceVal.AsString())
		if !ok {
			continue
		}
		deps = append(deps, dep)
	}

	return deps
}

func scanWithRegex(content string) []domain.Dependency {
	var deps []domain.Dependency

	modulePattern := regexp.MustCompile(
		`(?s)module\s+"([^"]+)"\s*\{[^}]*source\s*=\s*"([^"]+)"`,
	)
	matches := modulePattern.FindAllStringSubmatchIndex(content, -1)

	for _, match := range matches {
		if len(match) < minMatchLen {
			continue
		}

		moduleName := content[match[2]:match[3]]
		source := content[match[4]:match[5]]

		dep, ok := buildDependency(moduleName, source)
		if !ok {
			continue
		}
		deps = append(deps, dep)
	}

	return deps
}

func buildDependency(moduleName, source string) (domain.Dependency, bool) {
	if !isGitModule(source) {
		return domain.Dependency{}, false
	}

	version := extractVersion(source)
	if version == "" {
		return domain.Dependency{}, false
	}

	return domain.Dependency{
		Name:        moduleName,
		Version:     version,
		Requirement: version,
		TopLevel:    true,
		Ecosystem:   ecosystemName,
		Source:      removeVersionFromSource(source),
	}, true
}

// --- source helpers ---

func isGitModule(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "git@") ||
		strings.Contains(source, "github.com") ||
		strings.Contains(source, "gitlab.com") ||
		strings.Contains(source, "bitbucket.org") ||
		strings.Contains(source, "dev.azure.com") ||
		strings.Contains(source, "_git/")
}

func extractVersion(source string) string {
	refPattern := regexp.MustCompile(`\?ref=([^&\s]+)`)
	if matches := refPattern.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	refPattern2 := regexp.MustCompile(`ref=([^&\s"]+)`)
	if matches := refPattern2.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func removeVersionFromSource(source string) string {
	refPattern := regexp.MustCompile(`\?ref=[^&\s"]+`)
	return refPattern.ReplaceAllString(source, "")
}

// --- upgrade application ---

func applyVersionUpgrade(content string, dep domain.Dependency) string {
	oldVersion := dep.PreviousVersion
	if oldVersion == "" || oldVersion == dep.Version {
		return content
	}

	oldSource := buildSourceWithVersion(dep.Source, oldVersion)
	newSource := buildSourceWithVersion(dep.Source, dep.Version)
	if strings.Contains(content, oldSource) {
		return strings.Replace(content, oldSource, newSource, 1)
	}

	// Regex-based fallback scoped to this module block
	pattern := regexp.MustCompile(
		`(module\s+"` + regexp.QuoteMeta(dep.Name) +
			`"\s*\{[^}]*source\s*=\s*"[^"]*\?ref=)` +
			regexp.QuoteMeta(oldVersion) + `([^"]*")`,
	)
	if pattern.MatchString(content) {
		return pattern.ReplaceAllString(content, "${1}"+dep.Version+"${2}")
	}

	return content
}

func buildSourceWithVersion(source, version string) string {
	if strings.Contains(source, "?ref=") {
		pattern := regexp.MustCompile(`\?ref=[^&"\s]+`)
		return pattern.ReplaceAllString(source, "?ref="+version)
	}
	if strings.Contains(source, "?") {
		return source + "&ref=" + version
	}
	return source + "?ref=" + version
}
