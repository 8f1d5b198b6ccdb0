// Package domain provides the types shared by the path engine, the cache and
// the article source.
package domain

import "slices"

// Path is an ordered chain of article titles. Path[0] is the title it is
// indexed under; the last element is the target or a terminal article.
type Path []string

// Head returns the first title, or "" for an empty path.
func (p Path) Head() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Last returns the final title, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Contains reports whether title appears in the path.
func (p Path) Contains(title string) bool {
	return slices.Contains(p, title)
}

// Clone returns a copy that shares no backing array with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Valid reports whether p is non-empty and free of duplicate titles.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(p))
	for _, title := range p {
		if title == "" {
			return false
		}
		if _, dup := seen[title]; dup {
			return false
		}
		seen[title] = struct{}{}
	}
	return true
}

// Outcome describes how a traversal ended.
type Outcome string

const (
	// OutcomeSuccess means the path ends at the target article.
	OutcomeSuccess Outcome = "success"
	// OutcomeDeadEnd means the last article has no qualifying outgoing link.
	OutcomeDeadEnd Outcome = "dead_end"
	// OutcomeLoop means the next article was already on the path.
	OutcomeLoop Outcome = "loop"
	// OutcomeExceeded means the hop limit was reached before any terminal condition.
	OutcomeExceeded Outcome = "exceeded"
	// OutcomeCached means the start article was answered from the cache
	// before the target title was known.
	OutcomeCached Outcome = "cached"
	// OutcomeError means the traversal was aborted by a source failure.
	OutcomeError Outcome = "error"
)

// Terminal reports whether paths with this outcome may be stored in the cache.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeSuccess, OutcomeDeadEnd, OutcomeLoop:
		return true
	case OutcomeExceeded, OutcomeCached, OutcomeError:
		return false
	default:
		return false
	}
}
