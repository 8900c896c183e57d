package app

import (
	"fmt"
	"io"
	"strings"

	bot "github.com/reviewbotci/lintbridge/internal/config"
	gh "github.com/reviewbotci/lintbridge/internal/github"
	"github.com/reviewbotci/lintbridge/internal/linters"
	"github.com/reviewbotci/lintbridge/internal/style"
)

// OutputData holds the data that will be written to GITHUB_OUTPUT
type OutputData struct {
	FileViolations map[string][]string `json:"file_violations"`
	ReviewedFiles  []string            `json:"reviewed_files"`
	SkippedFiles   []string            `json:"skipped_files"`
	ViolationCount int                 `json:"violation_count"`
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
}

func newOutputData() *OutputData {
	return &OutputData{
		FileViolations: make(map[string][]string),
		ReviewedFiles:  []string{},
		SkippedFiles:   []string{},
	}
}

// Config holds the application configuration
type Config struct {
	Token         string
	RepoDir       string
	PR            int
	Repo          string
	Verbose       bool
	Quiet         bool
	InfoBuffer    io.Writer
	WarningBuffer io.Writer
}

// App wires the GitHub client, the repo's bot configuration, and the linter
// registry together for one pull request review run.
type App struct {
	Conf     *bot.Config
	config   *Config
	owner    string
	client   gh.Client
	registry *linters.Registry
}

// New creates a new App instance with the given configuration
func New(cfg Config) (*App, error) {
	repoSplit := strings.Split(cfg.Repo, "/")
	if len(repoSplit) != 2 {
		return nil, fmt.Errorf("invalid repo name: %s", cfg.Repo)
	}
	owner := repoSplit[0]
	repo := repoSplit[1]

	client := gh.NewClient(owner, repo, cfg.Token)
	client.SetWarningBuffer(cfg.WarningBuffer)
	client.SetInfoBuffer(cfg.InfoBuffer)
	app := &App{
		config: &cfg,
		owner:  owner,
		client: client,
	}

	return app, nil
}

func (a *App) printDebug(format string, args ...interface{}) {
	if a.config.Verbose {
		_, _ = fmt.Fprintf(a.config.InfoBuffer, format, args...)
	}
}

func (a *App) printWarn(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.config.WarningBuffer, format, args...)
}

// Run executes one review pass over the PR's changed files.
func (a *App) Run() (*OutputData, error) {
	outputData := newOutputData()

	if err := a.client.InitPR(a.config.PR); err != nil {
		return outputData, fmt.Errorf("InitPR Error: %v", err)
	}
	a.printDebug("PR: %d\n", a.client.PR().GetNumber())

	conf, err := bot.ReadConfig(a.config.RepoDir)
	if err != nil {
		a.printWarn("Error reading lintbridge.toml - using default config\n")
	}
	a.Conf = conf

	if a.registry == nil {
		ownerSource := style.OwnerSource{
			Owner:      a.owner,
			Enabled:    conf.Style.Enabled,
			ConfigRepo: conf.Style.Repo,
		}
		resolver := style.NewResolver(a.client, a.config.WarningBuffer)
		store := gh.NewReviewStore(a.client)
		a.registry = linters.NewRegistry(
			linters.NewJSHint(linters.NewJSHintEngine(), resolver, ownerSource, conf, store),
		)
	}

	headSHA := a.client.PR().Head.GetSHA()
	changedFiles, err := a.client.ChangedFiles()
	if err != nil {
		return outputData, fmt.Errorf("ChangedFiles Error: %v", err)
	}
	a.printDebug("Changed files: %d\n", len(changedFiles))

	for _, file := range changedFiles {
		if conf.Ignored(file.FileName) {
			a.printDebug("Ignoring %s\n", file.FileName)
			outputData.SkippedFiles = append(outputData.SkippedFiles, file.FileName)
			continue
		}
		reviewed := false
		for _, adapter := range a.registry.For(file.FileName) {
			if !adapter.IsEnabled() {
				a.printDebug("%s disabled for %s\n", adapter.Name(), file.FileName)
				continue
			}
			if file.Content == "" {
				content, err := a.client.FetchFile(a.config.Repo, headSHA, file.FileName)
				if err != nil {
					a.printWarn("WARNING: cannot fetch %s: %v\n", file.FileName, err)
					continue
				}
				file.Content = content
			}
			fileReview, err := adapter.FileReview(file)
			if err != nil {
				return outputData, fmt.Errorf("FileReview Error for %s: %v", file.FileName, err)
			}
			reviewed = true
			for _, violation := range fileReview.Violations {
				outputData.FileViolations[file.FileName] = append(outputData.FileViolations[file.FileName], violation.Messages...)
			}
			outputData.ViolationCount += len(fileReview.Violations)
		}
		if reviewed {
			outputData.ReviewedFiles = append(outputData.ReviewedFiles, file.FileName)
		}
	}

	if outputData.ViolationCount == 0 {
		outputData.Success = true
		outputData.Message = fmt.Sprintf("Reviewed %d files, no violations", len(outputData.ReviewedFiles))
	} else {
		outputData.Success = !conf.Enforcement.FailCheck
		outputData.Message = fmt.Sprintf(
			"Reviewed %d files, found %d violations",
			len(outputData.ReviewedFiles), outputData.ViolationCount,
		)
	}
	return outputData, nil
}
