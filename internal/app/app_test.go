package app

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v63/github"
	"github.com/reviewbotci/lintbridge/internal/linters"
	"github.com/reviewbotci/lintbridge/pkg/review"
)

type mockClient struct {
	pr       *github.PullRequest
	initErr  error
	files    []*review.ChangedFile
	filesErr error
	contents map[string]string
	fetchErr error
	fetched  []string
}

func (m *mockClient) SetWarningBuffer(io.Writer) {}

func (m *mockClient) SetInfoBuffer(io.Writer) {}

func (m *mockClient) InitPR(prID int) error {
	if m.initErr != nil {
		return m.initErr
	}
	m.pr = &github.PullRequest{
		Number: github.Int(prID),
		Head:   &github.PullRequestBranch{SHA: github.String("headsha")},
	}
	return nil
}

func (m *mockClient) PR() *github.PullRequest { return m.pr }

func (m *mockClient) ChangedFiles() ([]*review.ChangedFile, error) {
	return m.files, m.filesErr
}

func (m *mockClient) FetchFile(repo, ref, path string) (string, error) {
	m.fetched = append(m.fetched, path)
	if m.fetchErr != nil {
		return "", m.fetchErr
	}
	return m.contents[path], nil
}

func (m *mockClient) DefaultBranchHead(repo string) (string, error) {
	return "headsha", nil
}

func (m *mockClient) CreateReviewComments(fr *review.FileReview) error { return nil }

type stubAdapter struct {
	name       string
	suffix     string
	enabled    bool
	violations int
	err        error
	reviewed   []*review.ChangedFile
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) CanLint(filename string) bool {
	return strings.HasSuffix(filename, a.suffix)
}

func (a *stubAdapter) IsEnabled() bool { return a.enabled }

func (a *stubAdapter) FileReview(file *review.ChangedFile) (*review.FileReview, error) {
	a.reviewed = append(a.reviewed, file)
	if a.err != nil {
		return nil, a.err
	}
	fileReview := review.NewFileReview(file)
	for i := 0; i < a.violations; i++ {
		fileReview.Violations = append(fileReview.Violations, &review.Violation{
			FileName: file.FileName,
			Line:     i + 1,
			Position: i + 1,
			Messages: []string{"Missing semicolon."},
		})
	}
	fileReview.Completed = true
	fileReview.Persisted = true
	return fileReview, nil
}

func changedJS(name string) *review.ChangedFile {
	return &review.ChangedFile{
		FileName: name,
		Hunks: []review.HunkRange{
			{Start: 1, End: 3, Positions: map[int]int{1: 1, 2: 2, 3: 3}},
		},
	}
}

func newTestApp(t *testing.T, client *mockClient, adapter linters.Adapter, tomlContent string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	if tomlContent != "" {
		if err := os.WriteFile(filepath.Join(dir, "lintbridge.toml"), []byte(tomlContent), 0o644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	warnings := &bytes.Buffer{}
	a := &App{
		config: &Config{
			Token:         "token",
			RepoDir:       dir,
			PR:            1,
			Repo:          "org/repo",
			InfoBuffer:    io.Discard,
			WarningBuffer: warnings,
		},
		owner:    "org",
		client:   client,
		registry: linters.NewRegistry(adapter),
	}
	return a, warnings
}

func TestNew(t *testing.T) {
	a, err := New(Config{Repo: "org/repo", InfoBuffer: io.Discard, WarningBuffer: io.Discard})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.owner != "org" {
		t.Errorf("Expected owner org, got %s", a.owner)
	}

	if _, err := New(Config{Repo: "not-a-repo"}); err == nil {
		t.Error("Expected error for invalid repo name")
	}
}

func TestRun(t *testing.T) {
	client := &mockClient{
		files:    []*review.ChangedFile{changedJS("app.js"), {FileName: "README.md"}},
		contents: map[string]string{"app.js": "var a = 1\nvar b = 2\nvar c = 3\n"},
	}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: true, violations: 2}
	a, _ := newTestApp(t, client, adapter, "")

	output, err := a.Run()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(output.ReviewedFiles) != 1 || output.ReviewedFiles[0] != "app.js" {
		t.Errorf("Expected app.js to be reviewed, got %v", output.ReviewedFiles)
	}
	if output.ViolationCount != 2 {
		t.Errorf("Expected 2 violations, got %d", output.ViolationCount)
	}
	if len(output.FileViolations["app.js"]) != 2 {
		t.Errorf("Unexpected file violations: %v", output.FileViolations)
	}
	if !output.Success {
		t.Error("Expected success when enforcement is off")
	}
	if len(client.fetched) != 1 || client.fetched[0] != "app.js" {
		t.Errorf("Expected content to be fetched only for claimed files, got %v", client.fetched)
	}
	if len(adapter.reviewed) != 1 || adapter.reviewed[0].Content != client.contents["app.js"] {
		t.Error("Expected the adapter to receive the fetched content")
	}
}

func TestRunIgnoredFiles(t *testing.T) {
	client := &mockClient{
		files: []*review.ChangedFile{changedJS("vendor/lib.js"), changedJS("app.js")},
		contents: map[string]string{
			"app.js": "var a = 1;\n",
		},
	}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: true}
	a, _ := newTestApp(t, client, adapter, `ignore = ["vendor/**"]`)

	output, err := a.Run()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(output.SkippedFiles) != 1 || output.SkippedFiles[0] != "vendor/lib.js" {
		t.Errorf("Expected vendor/lib.js to be skipped, got %v", output.SkippedFiles)
	}
	if len(output.ReviewedFiles) != 1 || output.ReviewedFiles[0] != "app.js" {
		t.Errorf("Expected only app.js to be reviewed, got %v", output.ReviewedFiles)
	}
}

func TestRunDisabledAdapter(t *testing.T) {
	client := &mockClient{files: []*review.ChangedFile{changedJS("app.js")}}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: false}
	a, _ := newTestApp(t, client, adapter, "")

	output, err := a.Run()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(output.ReviewedFiles) != 0 {
		t.Errorf("Expected no files reviewed by a disabled adapter, got %v", output.ReviewedFiles)
	}
	if len(client.fetched) != 0 {
		t.Errorf("Expected no content fetches for a disabled adapter, got %v", client.fetched)
	}
}

func TestRunFetchFailure(t *testing.T) {
	client := &mockClient{
		files:    []*review.ChangedFile{changedJS("app.js")},
		fetchErr: errors.New("api unavailable"),
	}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: true}
	a, warnings := newTestApp(t, client, adapter, "")

	output, err := a.Run()
	if err != nil {
		t.Fatalf("Expected fetch failures to be tolerated, got %v", err)
	}
	if len(output.ReviewedFiles) != 0 {
		t.Errorf("Expected no files reviewed when content cannot be fetched, got %v", output.ReviewedFiles)
	}
	if !strings.Contains(warnings.String(), "cannot fetch app.js") {
		t.Errorf("Expected a warning for the failed fetch, got %q", warnings.String())
	}
}

func TestRunFailCheck(t *testing.T) {
	tomlContent := "[enforcement]\nfail_check = true\n"
	client := &mockClient{
		files:    []*review.ChangedFile{changedJS("app.js")},
		contents: map[string]string{"app.js": "var a = 1\n"},
	}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: true, violations: 1}
	a, _ := newTestApp(t, client, adapter, tomlContent)

	output, err := a.Run()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Success {
		t.Error("Expected failure when enforcement is on and violations exist")
	}
	if output.ViolationCount != 1 {
		t.Errorf("Expected 1 violation, got %d", output.ViolationCount)
	}
}

func TestRunAdapterError(t *testing.T) {
	client := &mockClient{
		files:    []*review.ChangedFile{changedJS("app.js")},
		contents: map[string]string{"app.js": "var a = 1\n"},
	}
	adapter := &stubAdapter{name: "jshint", suffix: ".js", enabled: true, err: errors.New("jshint broke")}
	a, _ := newTestApp(t, client, adapter, "")

	if _, err := a.Run(); err == nil {
		t.Error("Expected adapter failure to propagate")
	}
}

func TestRunInitPRError(t *testing.T) {
	client := &mockClient{initErr: errors.New("no such PR")}
	a, _ := newTestApp(t, client, &stubAdapter{name: "jshint", suffix: ".js", enabled: true}, "")

	if _, err := a.Run(); err == nil {
		t.Error("Expected InitPR failure to propagate")
	}
}

func TestRunChangedFilesError(t *testing.T) {
	client := &mockClient{filesErr: errors.New("api unavailable")}
	a, _ := newTestApp(t, client, &stubAdapter{name: "jshint", suffix: ".js", enabled: true}, "")

	if _, err := a.Run(); err == nil {
		t.Error("Expected ChangedFiles failure to propagate")
	}
}
