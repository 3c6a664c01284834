package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/module"

	"github.com/rios0rios0/groupdate/domain"
)

const (
	defaultGoProxy   = "https://proxy.golang.org"
	proxyTimeout     = 30 * time.Second
	maxProxyRespSize = 1 << 20
)

// GoProxySource lists Go module versions from a module proxy
// (GOPROXY-compatible /@v/list endpoint).
type GoProxySource struct {
	baseURL string
	client  *http.Client
}

// NewGoProxySource creates a source against GOPROXY, falling back to the
// public proxy when unset.
func NewGoProxySource() *GoProxySource {
	baseURL := defaultGoProxy
	if env := os.Getenv("GOPROXY"); env != "" {
		// Only the first proxy of a comma-separated list is consulted.
		first := strings.Split(env, ",")[0]
		if first != "off" && first != "direct" {
			baseURL = strings.TrimSuffix(first, "/")
		}
	}
	return &GoProxySource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: proxyTimeout},
	}
}

// Versions fetches the published version list for a module path.
func (s *GoProxySource) Versions(
	ctx context.Context,
	dep domain.Dependency,
) ([]string, error) {
	escaped, err := module.EscapePath(dep.Name)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", dep.Name, err)
	}

	url := fmt.Sprintf("%s/%s/@v/list", s.baseURL, escaped)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query module proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"module proxy returned %d for %q", resp.StatusCode, dep.Name,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyRespSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read proxy response: %w", err)
	}

	var versions []string
	for _, line := range strings.Split(string(body), "\n") {
		if v := strings.TrimSpace(line); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// StaticSource serves versions from an in-memory index keyed by dependency
// name. Used for offline runs and tests.
type StaticSource struct {
	Index map[string][]string
}

// Versions returns the indexed versions for the dependency name.
func (s *StaticSource) Versions(
	_ context.Context,
	dep domain.Dependency,
) ([]string, error) {
	return s.Index[dep.Name], nil
}
