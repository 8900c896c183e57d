package linters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/reviewbotci/lintbridge/internal/style"
	"github.com/reviewbotci/lintbridge/pkg/review"
)

// jshintReporter is the reporter module passed to the jshint binary; it
// emits one JSON object per finding. Resolved through node's module lookup.
const jshintReporter = "jshint-json"

// commandExecutor abstracts command execution so tests can substitute
// canned output for real jshint invocations.
type commandExecutor interface {
	execute(command string, args ...string) ([]byte, error)
}

type realExecutor struct{}

func (realExecutor) execute(command string, args ...string) ([]byte, error) {
	return exec.Command(command, args...).Output()
}

// JSHintEngine runs the external jshint binary over a temp copy of the
// content with the resolved configuration written alongside it.
type JSHintEngine struct {
	executor commandExecutor
}

func NewJSHintEngine() *JSHintEngine {
	return &JSHintEngine{executor: realExecutor{}}
}

type jshintEntry struct {
	File  string `json:"file"`
	Error struct {
		Line      int    `json:"line"`
		Character int    `json:"character"`
		Reason    string `json:"reason"`
	} `json:"error"`
}

// Lint invokes jshint once per file. jshint exits 2 when it finds
// violations, which is a normal outcome; any other failure is an engine
// invocation failure and is returned as-is.
func (e *JSHintEngine) Lint(content string, config style.Config) ([]review.RawFinding, error) {
	dir, err := os.MkdirTemp("", "lintbridge-jshint")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	sourcePath := filepath.Join(dir, "source.js")
	if err := os.WriteFile(sourcePath, []byte(content), 0o600); err != nil {
		return nil, err
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, configJSON, 0o600); err != nil {
		return nil, err
	}

	output, err := e.executor.execute("jshint", "--config", configPath, "--reporter", jshintReporter, sourcePath)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 2 {
			return nil, fmt.Errorf("jshint invocation failed: %w", err)
		}
	}
	return parseJSHintOutput(output)
}

func parseJSHintOutput(output []byte) ([]review.RawFinding, error) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return []review.RawFinding{}, nil
	}
	entries := []jshintEntry{}
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse jshint output: %w", err)
	}
	findings := make([]review.RawFinding, 0, len(entries))
	for _, entry := range entries {
		if entry.Error.Line == 0 {
			continue
		}
		findings = append(findings, review.RawFinding{
			Line:     entry.Error.Line,
			Messages: []string{entry.Error.Reason},
		})
	}
	return findings, nil
}
