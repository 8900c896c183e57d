package review

import "strings"

// HunkRange represents the new-side line span covered by a single diff hunk,
// along with the patch position of every line that exists on the new side.
// Positions are precomputed once when the diff is parsed and treated as an
// immutable lookup table afterwards.
type HunkRange struct {
	Start     int
	End       int
	Positions map[int]int
}

// ChangedFile is one file of a pull request diff: its path, its full content
// at the head commit, and the hunks that describe which lines the change
// touches. A file with no hunks is valid and simply has no addressable lines.
type ChangedFile struct {
	FileName string
	Content  string
	Hunks    []HunkRange
}

// PositionFor maps an absolute 1-based line number to its position within the
// file's unified diff. The second return is false when no hunk covers the
// line, which marks the line as untouched by this change - a normal outcome,
// not an error.
func (cf *ChangedFile) PositionFor(line int) (int, bool) {
	for _, hunk := range cf.Hunks {
		if line < hunk.Start || line > hunk.End {
			continue
		}
		pos, ok := hunk.Positions[line]
		return pos, ok
	}
	return 0, false
}

// RawFinding is the output shape of an external lint engine: an absolute line
// number in the (possibly preprocessed) content plus one or more messages.
type RawFinding struct {
	Line     int
	Messages []string
}

// Violation is a lint finding anchored to a commentable position in the diff.
// Messages preserve the order findings arrived from the engine, without
// duplicates.
type Violation struct {
	FileName string
	Line     int
	Position int
	Messages []string
}

// FileReview is the assembled result of linting one changed file.
type FileReview struct {
	File       *ChangedFile
	Violations []*Violation
	Completed  bool
	Persisted  bool
}

func NewFileReview(file *ChangedFile) *FileReview {
	return &FileReview{
		File:       file,
		Violations: make([]*Violation, 0),
	}
}

// FullChange builds a ChangedFile whose single hunk spans the entire
// content, with each line's position equal to its line number. Local tooling
// uses it to surface every finding when there is no diff to filter against.
func FullChange(filename, content string) *ChangedFile {
	lineCount := strings.Count(content, "\n")
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		lineCount++
	}
	positions := make(map[int]int, lineCount)
	for line := 1; line <= lineCount; line++ {
		positions[line] = line
	}
	hunks := []HunkRange{}
	if lineCount > 0 {
		hunks = append(hunks, HunkRange{Start: 1, End: lineCount, Positions: positions})
	}
	return &ChangedFile{
		FileName: filename,
		Content:  content,
		Hunks:    hunks,
	}
}

// Store persists a completed FileReview. Implementations live with the
// hosting integration; the core only requires that Save either succeeds or
// returns an error.
type Store interface {
	Save(fr *FileReview) error
}

// DiscardStore is a Store that keeps nothing. Used by local tooling and
// tests where persistence is someone else's problem.
type DiscardStore struct{}

func (DiscardStore) Save(fr *FileReview) error {
	return nil
}
