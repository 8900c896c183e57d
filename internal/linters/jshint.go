package linters

import (
	"strings"

	"github.com/reviewbotci/lintbridge/internal/style"
	"github.com/reviewbotci/lintbridge/pkg/review"
)

const (
	JSHintName       = "jshint"
	jshintLegacyFile = ".jshintrc"
)

// Suffix matching is exact and case-sensitive: a filename merely containing
// "js" must not be claimed.
var jshintSuffixes = []string{".js", ".js.erb", ".coffee.js"}

// JSHint adapts the external jshint engine to the review pipeline.
type JSHint struct {
	engine   Engine
	resolver ConfigResolver
	owner    style.OwnerSource
	conf     BotConfig
	store    review.Store
}

func NewJSHint(engine Engine, resolver ConfigResolver, owner style.OwnerSource, conf BotConfig, store review.Store) *JSHint {
	return &JSHint{
		engine:   engine,
		resolver: resolver,
		owner:    owner,
		conf:     conf,
		store:    store,
	}
}

func (j *JSHint) Name() string {
	return JSHintName
}

// CanLint claims plain JavaScript, ERB-wrapped JavaScript, and compiled
// CoffeeScript output.
func (j *JSHint) CanLint(filename string) bool {
	for _, suffix := range jshintSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}

// IsEnabled delegates to the repo-level linter toggle.
func (j *JSHint) IsEnabled() bool {
	return j.conf.LinterEnabled(JSHintName)
}

// FileReview lints one changed file end to end: strip templating, resolve
// the owner's configuration, invoke the engine, and keep only findings on
// lines the diff touches. The returned review is completed and persisted
// even when no violations are found. Callers must gate on CanLint first.
func (j *JSHint) FileReview(file *review.ChangedFile) (*review.FileReview, error) {
	fileReview := review.NewFileReview(file)
	content := StripTemplating(file.Content, file.FileName)
	config := j.resolver.Resolve(j.owner, JSHintName, jshintLegacyFile)
	findings, err := j.engine.Lint(content, config)
	if err != nil {
		return nil, err
	}
	builder := review.NewBuilder(file)
	for _, finding := range findings {
		builder.Add(finding)
	}
	fileReview.Violations = builder.Violations()
	fileReview.Completed = true
	if err := j.store.Save(fileReview); err != nil {
		return nil, err
	}
	fileReview.Persisted = true
	return fileReview, nil
}
