package git

import (
	"fmt"
	"strings"
)

// GitRefFileReader reads file contents as they exist at a specific git ref,
// so changed-line linting sees the committed state rather than the working
// tree.
type GitRefFileReader struct {
	ref      string
	dir      string
	executor gitCommandExecutor
}

func NewGitRefFileReader(ref string, dir string) *GitRefFileReader {
	return &GitRefFileReader{
		ref:      ref,
		dir:      dir,
		executor: newRealGitExecutor(dir),
	}
}

func (r *GitRefFileReader) refPath(path string) string {
	return fmt.Sprintf("%s:%s", r.ref, strings.TrimPrefix(path, "/"))
}

// ReadFile returns the file's content at the reader's ref.
func (r *GitRefFileReader) ReadFile(path string) ([]byte, error) {
	output, err := r.executor.execute("git", "show", r.refPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from ref %s: %w", path, r.ref, err)
	}
	return output, nil
}

// PathExists reports whether the file exists at the reader's ref. Files the
// change deleted are the usual absentees.
func (r *GitRefFileReader) PathExists(path string) bool {
	_, err := r.executor.execute("git", "cat-file", "-e", r.refPath(path))
	return err == nil
}
