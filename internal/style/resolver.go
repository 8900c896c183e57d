// Package style resolves the effective lint configuration for a repository
// owner from their external style repository, falling back through legacy
// locations to an empty default. Resolution never fails past this boundary:
// a review that cannot resolve configuration still runs under default rules.
package style

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PointerFile is the document in the style repository that maps each linter
// to the path of its detailed configuration file.
const PointerFile = ".lintbridge.yml"

// Config is a linter's native configuration, parsed from JSON. The schema
// is linter-specific and opaque to this package.
type Config map[string]any

func EmptyConfig() Config {
	return Config{}
}

// OwnerSource identifies whose style configuration applies and where it
// lives. When custom configuration is disabled, every linter resolves to
// the empty default.
type OwnerSource struct {
	Owner      string
	Enabled    bool
	ConfigRepo string
}

func (o OwnerSource) ConfigRepoEnabled() bool {
	return o.Enabled && o.ConfigRepo != ""
}

func (o OwnerSource) ConfigRepoIdentifier() string {
	return o.ConfigRepo
}

// ContentFetcher reads files from a hosted repository. Implemented by the
// GitHub client; substituted with fakes in tests.
type ContentFetcher interface {
	FetchFile(repo, ref, path string) (string, error)
	DefaultBranchHead(repo string) (string, error)
}

type Resolver struct {
	fetcher       ContentFetcher
	warningBuffer io.Writer
}

func NewResolver(fetcher ContentFetcher, warningBuffer io.Writer) *Resolver {
	if warningBuffer == nil {
		warningBuffer = io.Discard
	}
	return &Resolver{
		fetcher:       fetcher,
		warningBuffer: warningBuffer,
	}
}

type resolveAttempt struct {
	name  string
	fetch func() (Config, error)
}

// Resolve returns the active configuration for linter under owner. The
// fallback chain is an ordered list of attempts tried in sequence: the
// pointer-document path, then the fixed legacy filename, then the empty
// default. Each fetch is a single synchronous call with no retry.
func (r *Resolver) Resolve(owner OwnerSource, linter, legacyFile string) Config {
	if !owner.ConfigRepoEnabled() {
		return EmptyConfig()
	}
	repo := owner.ConfigRepoIdentifier()
	ref, err := r.fetcher.DefaultBranchHead(repo)
	if err != nil {
		_, _ = fmt.Fprintf(r.warningBuffer, "WARNING: cannot resolve %s head: %v\n", repo, err)
		return EmptyConfig()
	}

	attempts := []resolveAttempt{
		{"configured", func() (Config, error) { return r.resolveConfigured(repo, ref, linter) }},
		{"legacy", func() (Config, error) { return r.resolveFile(repo, ref, legacyFile) }},
	}
	for _, attempt := range attempts {
		config, err := attempt.fetch()
		if err == nil {
			return config
		}
		_, _ = fmt.Fprintf(r.warningBuffer, "WARNING: %s %s config unavailable: %v\n", attempt.name, linter, err)
	}
	return EmptyConfig()
}

// resolveConfigured reads the pointer document and follows the per-linter
// config_file path it names.
func (r *Resolver) resolveConfigured(repo, ref, linter string) (Config, error) {
	pointerContent, err := r.fetcher.FetchFile(repo, ref, PointerFile)
	if err != nil {
		return nil, err
	}
	pointer := map[string]struct {
		ConfigFile string `yaml:"config_file"`
	}{}
	if err := yaml.Unmarshal([]byte(pointerContent), &pointer); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", PointerFile, err)
	}
	entry, found := pointer[linter]
	if !found || entry.ConfigFile == "" {
		return nil, fmt.Errorf("no config_file for %s in %s", linter, PointerFile)
	}
	return r.resolveFile(repo, ref, entry.ConfigFile)
}

func (r *Resolver) resolveFile(repo, ref, path string) (Config, error) {
	content, err := r.fetcher.FetchFile(repo, ref, path)
	if err != nil {
		return nil, err
	}
	config := Config{}
	if err := json.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}
