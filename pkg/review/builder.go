package review

import f "github.com/reviewbotci/lintbridge/pkg/functional"

// Builder accumulates Violations for one file. Findings on lines the diff
// does not touch are dropped silently, and findings that land on the same
// line merge into a single Violation.
type Builder struct {
	file    *ChangedFile
	byLine  map[int]*Violation
	ordered []*Violation
}

func NewBuilder(file *ChangedFile) *Builder {
	return &Builder{
		file:    file,
		byLine:  make(map[int]*Violation),
		ordered: make([]*Violation, 0),
	}
}

// Add records a raw finding. The first finding on a line creates the
// Violation with its patch position; later findings on the same line append
// their messages, deduplicated, in arrival order.
func (b *Builder) Add(finding RawFinding) {
	position, ok := b.file.PositionFor(finding.Line)
	if !ok {
		return
	}
	violation, found := b.byLine[finding.Line]
	if !found {
		violation = &Violation{
			FileName: b.file.FileName,
			Line:     finding.Line,
			Position: position,
			Messages: make([]string, 0, len(finding.Messages)),
		}
		b.byLine[finding.Line] = violation
		b.ordered = append(b.ordered, violation)
	}
	violation.Messages = f.RemoveDuplicates(append(violation.Messages, finding.Messages...))
}

// Violations returns the accumulated violations in discovery order.
func (b *Builder) Violations() []*Violation {
	return b.ordered
}
