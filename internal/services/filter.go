package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/apierr"
)

// Reserved property names routed to the hierarchy filter instead of the
// plain property compilation.
const (
	filterKeyLibrary = "library"
	filterKeyCatalog = "catalog"
	filterKeySection = "section"
)

// CompileFilter translates a declarative filter spec (parsed JSON) into
// the compiled property filter and the hierarchy filter.
//
// Shapes per property: a scalar or single-element list compiles to an
// exact match; a multi-element list to an OR group over the same path; a
// nested one-level mapping to dotted paths ("status": {"published":
// [true]} becomes path "status.published"). Top-level entries combine
// with AND. At most one of library/catalog/section may be supplied:
// library excludes the other two, catalog excludes section.
func CompileFilter(spec map[string]any) (domain.CompiledFilter, domain.HierarchyFilter, error) {
	var compiled domain.CompiledFilter
	var hierarchy domain.HierarchyFilter

	if len(spec) == 0 {
		return compiled, hierarchy, nil
	}

	hasLibrary := false
	hasCatalog := false
	hasSection := false

	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := spec[key]

		switch key {
		case filterKeyLibrary, filterKeyCatalog, filterKeySection:
			ids, err := parseIDList(key, value)
			if err != nil {
				return domain.CompiledFilter{}, domain.HierarchyFilter{}, err
			}
			switch key {
			case filterKeyLibrary:
				hierarchy.Libraries = ids
				hasLibrary = hasLibrary || len(ids) > 0
			case filterKeyCatalog:
				hierarchy.Catalogs = ids
				hasCatalog = hasCatalog || len(ids) > 0
			case filterKeySection:
				hierarchy.Sections = ids
				hasSection = hasSection || len(ids) > 0
			}
			continue
		}

		if err := validPropertyName(key); err != nil {
			return domain.CompiledFilter{}, domain.HierarchyFilter{}, err
		}

		clauses, err := compileProperty(key, value)
		if err != nil {
			return domain.CompiledFilter{}, domain.HierarchyFilter{}, err
		}
		compiled.And = append(compiled.And, clauses...)
	}

	if (hasLibrary && (hasCatalog || hasSection)) || (hasCatalog && hasSection) {
		return domain.CompiledFilter{}, domain.HierarchyFilter{}, apierr.InvalidFilterCombination(
			fmt.Errorf("at most one of library, catalog or section may be filtered at once"))
	}

	return compiled, hierarchy, nil
}

func compileProperty(key string, value any) ([]domain.FilterClause, error) {
	switch v := value.(type) {
	case map[string]any:
		// One level of nesting: each sub-key compiles against the
		// dotted path.
		subKeys := make([]string, 0, len(v))
		for sub := range v {
			subKeys = append(subKeys, sub)
		}
		sort.Strings(subKeys)

		var out []domain.FilterClause
		for _, sub := range subKeys {
			if err := validPropertyName(sub); err != nil {
				return nil, err
			}
			path := key + "." + sub
			if _, nested := v[sub].(map[string]any); nested {
				return nil, apierr.New(400, apierr.CodeInvalidFilter,
					fmt.Errorf("property %q: nesting deeper than one level", path))
			}
			clause, err := compileValues(path, v[sub])
			if err != nil {
				return nil, err
			}
			if clause != nil {
				out = append(out, clause)
			}
		}
		return out, nil
	default:
		clause, err := compileValues(key, value)
		if err != nil {
			return nil, err
		}
		if clause == nil {
			return nil, nil
		}
		return []domain.FilterClause{clause}, nil
	}
}

func compileValues(path string, value any) (domain.FilterClause, error) {
	list, ok := value.([]any)
	if !ok {
		list = []any{value}
	}
	switch len(list) {
	case 0:
		return nil, nil
	case 1:
		return domain.ExactMatch{Path: path, Value: list[0]}, nil
	default:
		alts := make([]domain.ExactMatch, len(list))
		for i, v := range list {
			alts[i] = domain.ExactMatch{Path: path, Value: v}
		}
		return domain.OrGroup{Alternatives: alts}, nil
	}
}

func parseIDList(key string, value any) ([]uuid.UUID, error) {
	list, ok := value.([]any)
	if !ok {
		list = []any{value}
	}
	out := make([]uuid.UUID, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, apierr.New(400, apierr.CodeInvalidFilter,
				fmt.Errorf("%s filter: expected id string, got %T", key, v))
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apierr.New(400, apierr.CodeInvalidFilter,
				fmt.Errorf("%s filter: invalid id %q", key, s))
		}
		out = append(out, id)
	}
	return out, nil
}

// validPropertyName guards the path segments that end up inside SQL
// identifiers and jsonb key lookups.
func validPropertyName(name string) error {
	if name == "" {
		return apierr.New(400, apierr.CodeInvalidFilter, fmt.Errorf("empty property name"))
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if isLetter || r == '_' || (isDigit && i > 0) {
			continue
		}
		return apierr.New(400, apierr.CodeInvalidFilter,
			fmt.Errorf("invalid property name %q", name))
	}
	return nil
}
