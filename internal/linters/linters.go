// Package linters holds the per-language lint adapters. Every adapter
// implements the same small contract - claim a filename, report enablement,
// review a changed file - so the app can treat languages uniformly.
package linters

import (
	"github.com/reviewbotci/lintbridge/internal/style"
	f "github.com/reviewbotci/lintbridge/pkg/functional"
	"github.com/reviewbotci/lintbridge/pkg/review"
)

type Adapter interface {
	Name() string
	CanLint(filename string) bool
	IsEnabled() bool
	FileReview(file *review.ChangedFile) (*review.FileReview, error)
}

// Engine invokes an external static-analysis tool as a pure function over
// content and configuration. Implementations must yield findings for
// syntactically invalid input rather than failing; a returned error means
// the invocation itself broke, and it propagates to the caller untouched.
type Engine interface {
	Lint(content string, config style.Config) ([]review.RawFinding, error)
}

// ConfigResolver resolves the owner's active configuration for a linter.
// It always yields some usable configuration, degrading to the default.
type ConfigResolver interface {
	Resolve(owner style.OwnerSource, linter, legacyFile string) style.Config
}

// BotConfig is the per-repo accessor for linter enablement, independent of
// the owner's custom style configuration.
type BotConfig interface {
	LinterEnabled(name string) bool
}

// Registry maps changed files to the adapters willing to claim them.
type Registry struct {
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// For returns the adapters claiming filename, in registration order.
func (r *Registry) For(filename string) []Adapter {
	return f.Filtered(r.adapters, func(adapter Adapter) bool {
		return adapter.CanLint(filename)
	})
}
