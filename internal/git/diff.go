package git

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/reviewbotci/lintbridge/pkg/review"
	"github.com/sourcegraph/go-diff/diff"
)

type Diff interface {
	AllChanges() []*review.ChangedFile
	Context() DiffContext
}

type GitDiff struct {
	context DiffContext
	files   []*review.ChangedFile
}

type DiffContext struct {
	Base string
	Head string
	Dir  string
}

// NewDiff runs git diff between the context's base and head and parses the
// output into position-annotated changed files.
func NewDiff(context DiffContext) (Diff, error) {
	return newDiffWithExecutor(context, newRealGitExecutor(context.Dir))
}

func newDiffWithExecutor(context DiffContext, executor gitCommandExecutor) (Diff, error) {
	output, err := executor.execute("git", "diff", "-U3", fmt.Sprintf("%s...%s", context.Base, context.Head))
	if err != nil {
		return nil, fmt.Errorf("Diff Error: %w", err)
	}
	fileDiffs, err := diff.ParseMultiFileDiff(output)
	if err != nil {
		return nil, err
	}
	return &GitDiff{
		context: context,
		files:   toChangedFiles(fileDiffs),
	}, nil
}

func (gd *GitDiff) AllChanges() []*review.ChangedFile {
	return gd.files
}

func (gd *GitDiff) Context() DiffContext {
	return gd.context
}

func toChangedFiles(fileDiffs []*diff.FileDiff) []*review.ChangedFile {
	files := make([]*review.ChangedFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		files = append(files, &review.ChangedFile{
			FileName: strings.TrimPrefix(fd.NewName, "b/"),
			Hunks:    HunksFromDiff(fd.Hunks),
		})
	}
	return files
}

// ParsePatch converts a bare patch (hunks only, no file header, as returned
// by hosting APIs for each file of a pull request) into a ChangedFile.
// An empty patch yields a file with no hunks.
func ParsePatch(filename, patch string) (*review.ChangedFile, error) {
	file := &review.ChangedFile{
		FileName: filename,
		Hunks:    []review.HunkRange{},
	}
	if patch == "" {
		return file, nil
	}
	hunks, err := diff.ParseHunks([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch for %s: %w", filename, err)
	}
	file.Hunks = HunksFromDiff(hunks)
	return file, nil
}

// HunksFromDiff derives the absolute-line to patch-position table for a
// file's hunks. The counter starts at 1 on the first body line of the first
// hunk and keeps counting across hunks; hunk headers after the first consume
// a position, matching how hosting platforms address inline comments.
// Removed lines consume a position but are never addressable; context and
// added lines map to their new-side line number.
func HunksFromDiff(hunks []*diff.Hunk) []review.HunkRange {
	ranges := make([]review.HunkRange, 0, len(hunks))
	position := 0
	for i, hunk := range hunks {
		if i > 0 {
			position++
		}
		hunkRange := review.HunkRange{
			Start:     int(hunk.NewStartLine),
			End:       int(hunk.NewStartLine+hunk.NewLines) - 1,
			Positions: make(map[int]int, hunk.NewLines),
		}
		newLine := int(hunk.NewStartLine) - 1
		scanner := bufio.NewScanner(bytes.NewReader(hunk.Body))
		for scanner.Scan() {
			line := scanner.Text()
			position++
			if len(line) > 0 && (line[0] == '-' || line[0] == '\\') {
				continue
			}
			newLine++
			hunkRange.Positions[newLine] = position
		}
		ranges = append(ranges, hunkRange)
	}
	return ranges
}
