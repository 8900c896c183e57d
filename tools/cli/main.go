package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boyter/gocodewalker"
	bot "github.com/reviewbotci/lintbridge/internal/config"
	"github.com/reviewbotci/lintbridge/internal/git"
	"github.com/reviewbotci/lintbridge/internal/linters"
	"github.com/reviewbotci/lintbridge/internal/style"
	"github.com/reviewbotci/lintbridge/pkg/review"
	"github.com/urfave/cli/v2"
)

func stripRoot(root string, path string) string {
	if root == "." {
		return path
	}
	return strings.TrimPrefix(path, root+"/")
}

func main() {
	var repo string
	var base string

	app := &cli.App{
		Name:        "lintbridge-cli",
		Usage:       "CLI tool for linting files the way the review bot would",
		Description: "",
		Commands: []*cli.Command{
			{
				Name:    "lint",
				Aliases: []string{"l"},
				Usage:   "Lint files in the repository",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "root",
						Aliases:     []string{"r", "repo"},
						Value:       "./",
						Usage:       "Path to local Git repo",
						Destination: &repo,
					},
					&cli.StringFlag{
						Name:        "base",
						Aliases:     []string{"b"},
						Value:       "",
						Usage:       "Only lint lines changed since this ref",
						Destination: &base,
					},
				},
				Action: func(cCtx *cli.Context) error {
					if base != "" {
						return lintChanged(repo, base)
					}
					return lintAll(repo)
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// localResolver reads the linter's legacy config file from the working tree
// instead of a remote style repository. Missing or malformed files degrade
// to the default configuration, same as the remote resolver.
type localResolver struct {
	dir string
}

func (r localResolver) Resolve(owner style.OwnerSource, linter, legacyFile string) style.Config {
	content, err := os.ReadFile(filepath.Join(r.dir, legacyFile))
	if err != nil {
		return style.EmptyConfig()
	}
	config := style.Config{}
	if err := json.Unmarshal(content, &config); err != nil {
		return style.EmptyConfig()
	}
	return config
}

func localRegistry(repo string, conf *bot.Config) *linters.Registry {
	return linters.NewRegistry(
		linters.NewJSHint(
			linters.NewJSHintEngine(),
			localResolver{dir: repo},
			style.OwnerSource{},
			conf,
			review.DiscardStore{},
		),
	)
}

func checkRepo(repo string) error {
	if repoStat, err := os.Lstat(repo); err != nil || !repoStat.IsDir() {
		return fmt.Errorf("Root is not a directory: %s", repo)
	}
	if gitStat, err := os.Stat(filepath.Join(repo, ".git")); err != nil || !gitStat.IsDir() {
		return fmt.Errorf("Root is not a Git repository: %s", repo)
	}
	return nil
}

// lintAll walks the working tree and lints every claimed file in full.
func lintAll(repo string) error {
	if err := checkRepo(repo); err != nil {
		return err
	}
	conf, err := bot.ReadConfig(repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Error reading lintbridge.toml - using default config\n")
	}
	registry := localRegistry(repo, conf)

	fileListQueue := make(chan *gocodewalker.File, 100)

	walker := gocodewalker.NewFileWalker(repo, fileListQueue)
	walker.IncludeHidden = true
	walker.ExcludeDirectory = []string{".git"}

	errChan := make(chan error)

	go func() {
		err := walker.Start()
		errChan <- err
		close(errChan)
	}()

	total := 0
	for f := range fileListQueue {
		fileName := stripRoot(repo, f.Location)
		if conf.Ignored(fileName) {
			continue
		}
		for _, adapter := range registry.For(fileName) {
			if !adapter.IsEnabled() {
				continue
			}
			content, err := os.ReadFile(f.Location)
			if err != nil {
				fmt.Fprintf(os.Stderr, "WARNING: cannot read %s: %v\n", fileName, err)
				continue
			}
			file := review.FullChange(fileName, string(content))
			total += lintOne(adapter, file)
		}
	}
	if err := <-errChan; err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%d violations found", total)
	}
	fmt.Println("No violations found")
	return nil
}

// refReader reads committed file state for the changed-lines mode.
type refReader interface {
	ReadFile(path string) ([]byte, error)
	PathExists(path string) bool
}

// lintChanged lints only the lines changed between base and HEAD, the same
// filtering the bot applies to a pull request.
func lintChanged(repo string, base string) error {
	if err := checkRepo(repo); err != nil {
		return err
	}
	conf, err := bot.ReadConfig(repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Error reading lintbridge.toml - using default config\n")
	}
	registry := localRegistry(repo, conf)

	gitDiff, err := git.NewDiff(git.DiffContext{Base: base, Head: "HEAD", Dir: repo})
	if err != nil {
		return err
	}
	reader := git.NewGitRefFileReader("HEAD", repo)

	total := lintChangedFiles(conf, registry, gitDiff, reader)
	if total > 0 {
		return fmt.Errorf("%d violations found", total)
	}
	fmt.Println("No violations found")
	return nil
}

func lintChangedFiles(conf *bot.Config, registry *linters.Registry, gitDiff git.Diff, reader refReader) int {
	total := 0
	for _, file := range gitDiff.AllChanges() {
		if conf.Ignored(file.FileName) {
			continue
		}
		// Files the change deleted appear in the diff but have no content
		// at HEAD.
		if !reader.PathExists(file.FileName) {
			continue
		}
		for _, adapter := range registry.For(file.FileName) {
			if !adapter.IsEnabled() {
				continue
			}
			content, err := reader.ReadFile(file.FileName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
				continue
			}
			file.Content = string(content)
			total += lintOne(adapter, file)
		}
	}
	return total
}

func lintOne(adapter linters.Adapter, file *review.ChangedFile) int {
	fileReview, err := adapter.FileReview(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %s failed on %s: %v\n", adapter.Name(), file.FileName, err)
		return 0
	}
	for _, violation := range fileReview.Violations {
		for _, message := range violation.Messages {
			fmt.Printf("%s:%d: %s\n", violation.FileName, violation.Line, message)
		}
	}
	return len(fileReview.Violations)
}
