// Package attach enforces the client-side admission rules for task
// attachments: at most 3 documents per task, PDF only. Rejections happen
// before any network call. The rules only apply to files being staged for
// a create; committed attachments of an existing task are immutable and
// never pass through here.
package attach

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MaxDocuments = 3
	pdfMimeType  = "application/pdf"
)

// Candidate is a file proposed for attachment: its user-facing name and
// its declared content type (which may be empty when only the name is
// known, e.g. a CLI path).
type Candidate struct {
	Name        string
	ContentType string
}

type CountError struct {
	Staged     int
	Candidates int
}

func (e CountError) Error() string {
	return fmt.Sprintf("only up to %d documents are allowed (have %d, adding %d)", MaxDocuments, e.Staged, e.Candidates)
}

type TypeError struct {
	Name string
}

func (e TypeError) Error() string {
	return fmt.Sprintf("only PDF files are allowed: %s", e.Name)
}

// Validate checks candidates against the already-staged files and returns
// the merged staged list. Pure: no I/O, no mutation of the inputs.
func Validate(staged, candidates []Candidate) ([]Candidate, error) {
	if len(staged)+len(candidates) > MaxDocuments {
		return nil, CountError{Staged: len(staged), Candidates: len(candidates)}
	}
	for _, c := range candidates {
		if !acceptable(c) {
			return nil, TypeError{Name: c.Name}
		}
	}
	out := make([]Candidate, 0, len(staged)+len(candidates))
	out = append(out, staged...)
	out = append(out, candidates...)
	return out, nil
}

// acceptable applies both checks the system uses: the declared content
// type (browser-style) when present, and the filename extension
// (server-style) otherwise.
func acceptable(c Candidate) bool {
	if ct := strings.TrimSpace(c.ContentType); ct != "" {
		return strings.EqualFold(ct, pdfMimeType)
	}
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(c.Name)), ".pdf")
}
