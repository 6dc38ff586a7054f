package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/platform/rediscache"
)

// SortRelevance orders by text-search rank; it is only honored together
// with a non-empty text query.
const SortRelevance = "relevance"

const defaultSortKey = "name"

type SearchParams struct {
	// Filters is the declarative filter spec as parsed JSON.
	Filters map[string]any
	// Query is the free-text query; a value that parses as a uuid is
	// treated as a direct id lookup.
	Query string
	// SortBy is a property name, optionally prefixed with '-' for
	// descending, or "relevance".
	SortBy string
	// Page is 1-indexed; values below 1 mean page 1.
	Page int
	// PageSize falls back to the configured default when <= 0.
	PageSize int
}

type SearchResult struct {
	Assets []*domain.Asset
	Total  int64
}

type SearchService interface {
	Search(ctx context.Context, p SearchParams) (*SearchResult, error)

	// ResolveHierarchy expands a hierarchy filter into the restricted
	// asset id set. restricted=false means no hierarchy filter was
	// present and results must not be intersected.
	ResolveHierarchy(ctx context.Context, h domain.HierarchyFilter) (ids []uuid.UUID, restricted bool, err error)
}

type searchService struct {
	log             *logger.Logger
	resolver        AssetResolver
	assetRepo       repos.AssetRepo
	libraryRepo     repos.LibraryRepo
	searchRepo      repos.AssetSearchRepo
	cache           rediscache.ResolveCache
	defaultPageSize int
}

func NewSearchService(
	baseLog *logger.Logger,
	resolver AssetResolver,
	assetRepo repos.AssetRepo,
	libraryRepo repos.LibraryRepo,
	searchRepo repos.AssetSearchRepo,
	cache rediscache.ResolveCache,
	defaultPageSize int,
) SearchService {
	if defaultPageSize <= 0 {
		defaultPageSize = 25
	}
	return &searchService{
		log:             baseLog.With("service", "SearchService"),
		resolver:        resolver,
		assetRepo:       assetRepo,
		libraryRepo:     libraryRepo,
		searchRepo:      searchRepo,
		cache:           cache,
		defaultPageSize: defaultPageSize,
	}
}

func (s *searchService) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	// Direct id lookup short-circuits filtering entirely.
	if id, err := uuid.Parse(strings.TrimSpace(p.Query)); err == nil {
		asset, err := s.assetRepo.GetByID(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("lookup asset by id: %w", err)
		}
		if asset == nil {
			return &SearchResult{Assets: []*domain.Asset{}}, nil
		}
		return &SearchResult{Assets: []*domain.Asset{asset}, Total: 1}, nil
	}

	compiled, hierarchy, err := CompileFilter(p.Filters)
	if err != nil {
		return nil, err
	}

	restrictIDs, restricted, err := s.ResolveHierarchy(ctx, hierarchy)
	if err != nil {
		return nil, err
	}

	sortBy, desc, relevance := parseSort(p.SortBy, p.Query)

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}

	q := repos.AssetQuery{
		Filter:      compiled,
		Text:        p.Query,
		Restricted:  restricted,
		RestrictIDs: restrictIDs,
		SortBy:      sortBy,
		SortDesc:    desc,
		Relevance:   relevance,
		Skip:        (page - 1) * pageSize,
		Limit:       pageSize,
	}

	assets, err := s.searchRepo.Find(dbc, q)
	if err != nil {
		return nil, fmt.Errorf("search assets: %w", err)
	}
	total, err := s.searchRepo.Count(dbc, q)
	if err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}
	return &SearchResult{Assets: assets, Total: total}, nil
}

func (s *searchService) ResolveHierarchy(ctx context.Context, h domain.HierarchyFilter) ([]uuid.UUID, bool, error) {
	if h.Empty() {
		return nil, false, nil
	}

	if len(h.Libraries) > 0 {
		ids, err := s.libraryRepo.GetAssetRefs(dbctx.Context{Ctx: ctx}, h.Libraries)
		if err != nil {
			return nil, false, fmt.Errorf("resolve library filter: %w", err)
		}
		return dedupIDs(ids), true, nil
	}

	nodeIDs := h.Catalogs
	resolve := s.resolver.ResolveCatalog
	what := "catalog"
	if len(h.Sections) > 0 {
		nodeIDs = h.Sections
		resolve = s.resolver.ResolveSection
		what = "section"
	}

	var union []uuid.UUID
	for _, nodeID := range nodeIDs {
		ids, ok := s.cachedResolve(ctx, nodeID)
		if !ok {
			var err error
			ids, err = resolve(ctx, nodeID)
			if err != nil {
				return nil, false, fmt.Errorf("resolve %s filter: %w", what, err)
			}
			if s.cache != nil {
				s.cache.SetIDs(ctx, nodeID.String(), ids)
			}
		}
		union = append(union, ids...)
	}
	return dedupIDs(union), true, nil
}

func (s *searchService) cachedResolve(ctx context.Context, nodeID uuid.UUID) ([]uuid.UUID, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetIDs(ctx, nodeID.String())
}

// parseSort normalizes a sortBy parameter. Relevance without a text
// query falls back to the default key, matching the plain-query
// execution path.
func parseSort(sortBy, textQuery string) (key string, desc bool, relevance bool) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == SortRelevance {
		if textQuery == "" {
			return defaultSortKey, false, false
		}
		return "", false, true
	}
	if strings.HasPrefix(sortBy, "-") {
		desc = true
		sortBy = sortBy[1:]
	}
	if sortBy == "" {
		return defaultSortKey, desc, false
	}
	return sortBy, desc, false
}
