package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

// AssetResolver flattens a catalog/section subtree into the leaf asset
// ids it contains. Resolution is read-only and safe to run concurrently
// from independent requests. A missing node resolves to an empty set,
// never an error.
type AssetResolver interface {
	ResolveAssets(ctx context.Context, nodeID uuid.UUID) ([]uuid.UUID, error)
	ResolveCatalog(ctx context.Context, catalogID uuid.UUID) ([]uuid.UUID, error)
	ResolveSection(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error)
}

type assetResolver struct {
	log         *logger.Logger
	catalogRepo repos.CatalogRepo
	sectionRepo repos.SectionRepo
}

func NewAssetResolver(baseLog *logger.Logger, catalogRepo repos.CatalogRepo, sectionRepo repos.SectionRepo) AssetResolver {
	return &assetResolver{
		log:         baseLog.With("service", "AssetResolver"),
		catalogRepo: catalogRepo,
		sectionRepo: sectionRepo,
	}
}

// ResolveAssets accepts either a section or a catalog id. Sections are
// probed first; they outnumber catalogs by orders of magnitude.
func (r *assetResolver) ResolveAssets(ctx context.Context, nodeID uuid.UUID) ([]uuid.UUID, error) {
	if nodeID == uuid.Nil {
		return nil, nil
	}
	dbc := dbctx.Context{Ctx: ctx}

	section, err := r.sectionRepo.GetByID(dbc, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load section %s: %w", nodeID, err)
	}
	if section != nil {
		return r.resolveSection(ctx, section)
	}

	catalog, err := r.catalogRepo.GetByID(dbc, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", nodeID, err)
	}
	if catalog != nil {
		return r.resolveCatalog(ctx, catalog)
	}
	return nil, nil
}

func (r *assetResolver) ResolveCatalog(ctx context.Context, catalogID uuid.UUID) ([]uuid.UUID, error) {
	dbc := dbctx.Context{Ctx: ctx}
	catalog, err := r.catalogRepo.GetByID(dbc, catalogID)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", catalogID, err)
	}
	if catalog == nil {
		return nil, nil
	}
	return r.resolveCatalog(ctx, catalog)
}

func (r *assetResolver) ResolveSection(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	dbc := dbctx.Context{Ctx: ctx}
	section, err := r.sectionRepo.GetByID(dbc, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load section %s: %w", sectionID, err)
	}
	if section == nil {
		return nil, nil
	}
	return r.resolveSection(ctx, section)
}

func (r *assetResolver) resolveCatalog(ctx context.Context, catalog *domain.Catalog) ([]uuid.UUID, error) {
	sections, err := r.sectionRepo.GetByCatalogRef(dbctx.Context{Ctx: ctx}, catalog.ID)
	if err != nil {
		return nil, fmt.Errorf("load catalog sections: %w", err)
	}
	return r.resolveChildren(ctx, sections)
}

// resolveSection is the shared recursion. A section is populated by
// either direct asset references or child sections, not both: direct
// references are the base case, children the recursive one.
func (r *assetResolver) resolveSection(ctx context.Context, section *domain.Section) ([]uuid.UUID, error) {
	assetRefs, err := r.sectionRepo.GetAssetRefs(dbctx.Context{Ctx: ctx}, section.ID)
	if err != nil {
		return nil, fmt.Errorf("load section asset refs: %w", err)
	}
	if len(assetRefs) > 0 {
		return dedupIDs(assetRefs), nil
	}

	children, err := r.sectionRepo.GetChildren(dbctx.Context{Ctx: ctx}, section.ID)
	if err != nil {
		return nil, fmt.Errorf("load section children: %w", err)
	}
	return r.resolveChildren(ctx, children)
}

// resolveChildren fans out across sibling subtrees. Siblings are
// disjoint by the tree invariant, so results concatenate without
// cross-sibling deduplication.
func (r *assetResolver) resolveChildren(ctx context.Context, children []*domain.Section) ([]uuid.UUID, error) {
	if len(children) == 0 {
		return nil, nil
	}

	results := make([][]uuid.UUID, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			ids, err := r.resolveSection(gctx, child)
			if err != nil {
				return err
			}
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []uuid.UUID
	for _, ids := range results {
		out = append(out, ids...)
	}
	return out, nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
