package domain

import "github.com/google/uuid"

// Compiled filter model. The compiler in services produces these once;
// the asset search repo consumes them uniformly. The set of variants is
// closed: an exact match on a (possibly dotted) property path, and an OR
// group of exact matches.

type FilterClause interface {
	isFilterClause()
}

// ExactMatch requires property Path to equal Value. Path segments are
// dot-separated; the first segment addresses a column, any further
// segments address keys inside that column's jsonb document.
type ExactMatch struct {
	Path  string
	Value any
}

// OrGroup matches when any of its alternatives match. Alternatives
// always share a path; they come from a multi-valued property filter.
type OrGroup struct {
	Alternatives []ExactMatch
}

func (ExactMatch) isFilterClause() {}
func (OrGroup) isFilterClause()    {}

// CompiledFilter is the conjunction of all plain property clauses.
// An empty And list is the always-true filter.
type CompiledFilter struct {
	And []FilterClause
}

func (f CompiledFilter) Empty() bool { return len(f.And) == 0 }

// HierarchyFilter restricts results to assets reachable from the named
// libraries, catalogs or sections. At most one of the three lists is
// non-empty once validated.
type HierarchyFilter struct {
	Libraries []uuid.UUID
	Catalogs  []uuid.UUID
	Sections  []uuid.UUID
}

func (h HierarchyFilter) Empty() bool {
	return len(h.Libraries) == 0 && len(h.Catalogs) == 0 && len(h.Sections) == 0
}
