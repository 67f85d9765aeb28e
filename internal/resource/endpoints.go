package resource

import (
	"fmt"
	"net/url"
	"strings"

	"itdash/internal/model"
)

// Endpoints holds the collection URL of every catalog resource, resolved
// once from a base URL and optional per-resource overrides.
type Endpoints struct {
	urls map[string]string
}

// NewEndpoints resolves a URL for every resource in catalog. An override
// that is an absolute URL is used as-is; a relative override replaces the
// resource's default path under baseURL.
func NewEndpoints(baseURL string, overrides map[string]string, catalog []model.Resource) (*Endpoints, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base_url %q must be an absolute URL", baseURL)
	}

	known := make(map[string]bool, len(catalog))
	urls := make(map[string]string, len(catalog))
	for _, r := range catalog {
		known[r.Name] = true

		path := r.Path
		if override, ok := overrides[r.Name]; ok {
			resolved, absolute, err := resolveOverride(override)
			if err != nil {
				return nil, fmt.Errorf("endpoint for %s: %w", r.Name, err)
			}
			if absolute {
				urls[r.Name] = resolved
				continue
			}
			path = resolved
		}
		urls[r.Name] = strings.TrimRight(base.JoinPath(path).String(), "/")
	}

	for name := range overrides {
		if !known[name] {
			return nil, fmt.Errorf("endpoint override for unknown resource %q", name)
		}
	}

	return &Endpoints{urls: urls}, nil
}

func resolveOverride(raw string) (resolved string, absolute bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.IsAbs() {
		if u.Host == "" {
			return "", false, fmt.Errorf("URL %q has no host", raw)
		}
		return strings.TrimRight(u.String(), "/"), true, nil
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false, fmt.Errorf("empty path")
	}
	return path, false, nil
}

// URL returns the collection URL for the named resource, without a
// trailing slash.
func (e *Endpoints) URL(name string) (string, bool) {
	u, ok := e.urls[name]
	return u, ok
}
