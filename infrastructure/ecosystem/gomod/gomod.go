// Package gomod implements dependency parsing and manifest editing for Go
// modules, backed by golang.org/x/mod/modfile.
package gomod

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/rios0rios0/groupdate/domain"
)

const ecosystemName = "gomod"

// Ecosystem bundles the Go module parser and updater.
type Ecosystem struct {
	parser  *Parser
	updater *Updater
}

// New creates the Go module ecosystem.
func New() *Ecosystem {
	return &Ecosystem{
		parser:  &Parser{},
		updater: &Updater{},
	}
}

func (e *Ecosystem) Name() string { return ecosystemName }

// Parser returns the go.mod dependency parser.
func (e *Ecosystem) Parser() domain.DependencyParser { return e.parser }

// Updater returns the go.mod file updater.
func (e *Ecosystem) Updater() domain.FileUpdater { return e.updater }

// Parser extracts require statements from go.mod files.
type Parser struct{}

// Parse returns the requires of every go.mod file, in file declaration order.
// Direct requires are top-level with their version as the declared
// requirement; indirect requires carry no requirement of their own.
func (p *Parser) Parse(files []domain.DependencyFile) ([]domain.Dependency, error) {
	var deps []domain.Dependency

	for _, file := range files {
		if filepath.Base(file.Path) != "go.mod" {
			continue
		}

		mf, err := modfile.Parse(file.Path, []byte(file.Content), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", file.Path, err)
		}

		for _, req := range mf.Require {
			dep := domain.Dependency{
				Name:      req.Mod.Path,
				Version:   req.Mod.Version,
				TopLevel:  !req.Indirect,
				Ecosystem: ecosystemName,
				Source:    req.Mod.Path,
				Directory: file.Directory,
			}
			if !req.Indirect {
				dep.Requirement = req.Mod.Version
			}
			deps = append(deps, dep)
		}
	}

	return deps, nil
}

// Updater rewrites require versions in go.mod files.
type Updater struct{}

// UpdateFiles bumps the require statements matching the updated dependencies
// and returns the go.mod files it touched.
func (u *Updater) UpdateFiles(
	_ context.Context,
	deps []domain.Dependency,
	files []domain.DependencyFile,
) ([]domain.DependencyFile, error) {
	var changed []domain.DependencyFile

	for _, file := range files {
		if filepath.Base(file.Path) != "go.mod" {
			continue
		}

		mf, err := modfile.Parse(file.Path, []byte(file.Content), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", file.Path, err)
		}

		touched := false
		for _, dep := range deps {
			if !hasRequire(mf, dep.Name) {
				continue
			}
			if addErr := mf.AddRequire(dep.Name, dep.Version); addErr != nil {
				return nil, fmt.Errorf(
					"failed to set %s@%s in %q: %w",
					dep.Name, dep.Version, file.Path, addErr,
				)
			}
			touched = true
		}
		if !touched {
			continue
		}

		mf.Cleanup()
		out, err := mf.Format()
		if err != nil {
			return nil, fmt.Errorf("failed to format %q: %w", file.Path, err)
		}

		changed = append(changed, domain.DependencyFile{
			Directory: file.Directory,
			Path:      file.Path,
			Content:   string(out),
			Operation: "edit",
		})
	}

	return changed, nil
}

func hasRequire(mf *modfile.File, path string) bool {
	for _, req := range mf.Require {
		if req.Mod.Path == path {
			return true
		}
	}
	return false
}
