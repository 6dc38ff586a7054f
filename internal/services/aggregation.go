package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/apierr"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/platform/rediscache"
)

// AggregationService maintains each node's derived contributor set and
// owns cascading deletion. Reaggregation is a strictly sequential
// bottom-up chain: a node is persisted before its parent recomputes.
// Two chains racing at a shared ancestor are not serialized; the last
// writer wins, and the next reaggregation of that ancestor converges.
type AggregationService interface {
	// Reaggregate recomputes the contributor set of the given node
	// (section or catalog) and propagates up to the root catalog.
	Reaggregate(ctx context.Context, nodeID uuid.UUID) error
	ReaggregateSection(ctx context.Context, sectionID uuid.UUID) error
	ReaggregateCatalog(ctx context.Context, catalogID uuid.UUID) error

	// DeleteSection removes the section and its whole subtree
	// (children first, all-or-nothing), then reaggregates the former
	// parent. Referenced assets are never deleted.
	DeleteSection(ctx context.Context, sectionID uuid.UUID) error
	// DeleteCatalog removes the catalog and every section under it.
	DeleteCatalog(ctx context.Context, catalogID uuid.UUID) error
}

type aggregationService struct {
	db          *gorm.DB
	log         *logger.Logger
	resolver    AssetResolver
	catalogRepo repos.CatalogRepo
	sectionRepo repos.SectionRepo
	assetRepo   repos.AssetRepo
	partyRepo   repos.PartyRepo
	cache       rediscache.ResolveCache
}

func NewAggregationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver AssetResolver,
	catalogRepo repos.CatalogRepo,
	sectionRepo repos.SectionRepo,
	assetRepo repos.AssetRepo,
	partyRepo repos.PartyRepo,
	cache rediscache.ResolveCache,
) AggregationService {
	return &aggregationService{
		db:          db,
		log:         baseLog.With("service", "AggregationService"),
		resolver:    resolver,
		catalogRepo: catalogRepo,
		sectionRepo: sectionRepo,
		assetRepo:   assetRepo,
		partyRepo:   partyRepo,
		cache:       cache,
	}
}

func (s *aggregationService) Reaggregate(ctx context.Context, nodeID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}

	section, err := s.sectionRepo.GetByID(dbc, nodeID)
	if err != nil {
		return fmt.Errorf("load section %s: %w", nodeID, err)
	}
	if section != nil {
		return s.reaggregateSection(ctx, section)
	}

	catalog, err := s.catalogRepo.GetByID(dbc, nodeID)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", nodeID, err)
	}
	if catalog != nil {
		return s.reaggregateCatalog(ctx, catalog)
	}
	return apierr.NotFound("node")
}

func (s *aggregationService) ReaggregateSection(ctx context.Context, sectionID uuid.UUID) error {
	section, err := s.sectionRepo.GetByID(dbctx.Context{Ctx: ctx}, sectionID)
	if err != nil {
		return fmt.Errorf("load section %s: %w", sectionID, err)
	}
	if section == nil {
		return apierr.NotFound("section")
	}
	return s.reaggregateSection(ctx, section)
}

func (s *aggregationService) ReaggregateCatalog(ctx context.Context, catalogID uuid.UUID) error {
	catalog, err := s.catalogRepo.GetByID(dbctx.Context{Ctx: ctx}, catalogID)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", catalogID, err)
	}
	if catalog == nil {
		return apierr.NotFound("catalog")
	}
	return s.reaggregateCatalog(ctx, catalog)
}

func (s *aggregationService) reaggregateSection(ctx context.Context, section *domain.Section) error {
	assetIDs, err := s.resolver.ResolveSection(ctx, section.ID)
	if err != nil {
		return fmt.Errorf("resolve section %s: %w", section.ID, err)
	}
	partyIDs, err := s.contributorsFor(ctx, assetIDs)
	if err != nil {
		return err
	}
	if err := s.sectionRepo.UpdateContributors(
		dbctx.Context{Ctx: ctx}, section.ID, domain.EncodeContributorIDs(partyIDs)); err != nil {
		return fmt.Errorf("persist section contributors: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, section.ID.String())
	}
	s.log.Debug("section reaggregated", "section_id", section.ID, "contributors", len(partyIDs))

	return s.propagate(ctx, section)
}

func (s *aggregationService) reaggregateCatalog(ctx context.Context, catalog *domain.Catalog) error {
	assetIDs, err := s.resolver.ResolveCatalog(ctx, catalog.ID)
	if err != nil {
		return fmt.Errorf("resolve catalog %s: %w", catalog.ID, err)
	}
	partyIDs, err := s.contributorsFor(ctx, assetIDs)
	if err != nil {
		return err
	}
	if err := s.catalogRepo.UpdateContributors(
		dbctx.Context{Ctx: ctx}, catalog.ID, domain.EncodeContributorIDs(partyIDs)); err != nil {
		return fmt.Errorf("persist catalog contributors: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalog.ID.String())
	}
	s.log.Debug("catalog reaggregated", "catalog_id", catalog.ID, "contributors", len(partyIDs))
	return nil
}

// contributorsFor maps leaf asset ids to the distinct party ids of their
// originating partners. Assets that no longer exist, assets without a
// partner code, and codes with no party record all contribute nothing.
func (s *aggregationService) contributorsFor(ctx context.Context, assetIDs []uuid.UUID) ([]uuid.UUID, error) {
	dbc := dbctx.Context{Ctx: ctx}

	assets, err := s.assetRepo.GetByIDs(dbc, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	seen := make(map[string]struct{}, len(assets))
	codes := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset == nil || asset.PartnerCode == "" {
			continue
		}
		if _, ok := seen[asset.PartnerCode]; ok {
			continue
		}
		seen[asset.PartnerCode] = struct{}{}
		codes = append(codes, asset.PartnerCode)
	}

	parties, err := s.partyRepo.GetByCodes(dbc, codes)
	if err != nil {
		return nil, fmt.Errorf("load parties: %w", err)
	}
	out := make([]uuid.UUID, 0, len(parties))
	for _, p := range parties {
		if p != nil && p.ID != uuid.Nil {
			out = append(out, p.ID)
		}
	}
	return out, nil
}

// propagate continues the chain at the section's parent. A dangling
// parent reference is logged and ends the chain; the mutated node's own
// state is already persisted at that point.
func (s *aggregationService) propagate(ctx context.Context, section *domain.Section) error {
	dbc := dbctx.Context{Ctx: ctx}

	if section.ParentRef != nil {
		parent, err := s.sectionRepo.GetByID(dbc, *section.ParentRef)
		if err != nil {
			return fmt.Errorf("load parent section %s: %w", *section.ParentRef, err)
		}
		if parent == nil {
			s.log.Warn("parent section missing, stopping propagation",
				"section_id", section.ID, "parent_ref", *section.ParentRef)
			return nil
		}
		return s.reaggregateSection(ctx, parent)
	}

	if section.CatalogRef != nil {
		catalog, err := s.catalogRepo.GetByID(dbc, *section.CatalogRef)
		if err != nil {
			return fmt.Errorf("load catalog %s: %w", *section.CatalogRef, err)
		}
		if catalog == nil {
			s.log.Warn("catalog missing, stopping propagation",
				"section_id", section.ID, "catalog_ref", *section.CatalogRef)
			return nil
		}
		return s.reaggregateCatalog(ctx, catalog)
	}
	return nil
}

func (s *aggregationService) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
	section, err := s.sectionRepo.GetByID(dbctx.Context{Ctx: ctx}, sectionID)
	if err != nil {
		return fmt.Errorf("load section %s: %w", sectionID, err)
	}
	if section == nil {
		return apierr.NotFound("section")
	}

	var deleted []uuid.UUID
	err = s.inTx(ctx, func(dbc dbctx.Context) error {
		var txErr error
		deleted, txErr = s.deleteSectionTree(dbc, sectionID)
		return txErr
	})
	if err != nil {
		return fmt.Errorf("delete section tree %s: %w", sectionID, err)
	}
	s.invalidateAll(ctx, deleted)
	s.log.Info("section subtree deleted", "section_id", sectionID, "nodes", len(deleted))

	// Detach happened with the delete; the former parent is reaggregated
	// afterwards so its contributor set stops crediting the subtree.
	if section.ParentRef != nil {
		return s.ReaggregateSection(ctx, *section.ParentRef)
	}
	if section.CatalogRef != nil {
		return s.ReaggregateCatalog(ctx, *section.CatalogRef)
	}
	return nil
}

func (s *aggregationService) DeleteCatalog(ctx context.Context, catalogID uuid.UUID) error {
	catalog, err := s.catalogRepo.GetByID(dbctx.Context{Ctx: ctx}, catalogID)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", catalogID, err)
	}
	if catalog == nil {
		return apierr.NotFound("catalog")
	}

	var deleted []uuid.UUID
	err = s.inTx(ctx, func(dbc dbctx.Context) error {
		sections, txErr := s.sectionRepo.GetByCatalogRef(dbc, catalogID)
		if txErr != nil {
			return txErr
		}
		for _, sec := range sections {
			ids, txErr := s.deleteSectionTree(dbc, sec.ID)
			if txErr != nil {
				return txErr
			}
			deleted = append(deleted, ids...)
		}
		return s.catalogRepo.FullDeleteByIDs(dbc, []uuid.UUID{catalogID})
	})
	if err != nil {
		return fmt.Errorf("delete catalog %s: %w", catalogID, err)
	}
	deleted = append(deleted, catalogID)
	s.invalidateAll(ctx, deleted)
	s.log.Info("catalog deleted", "catalog_id", catalogID, "nodes", len(deleted))
	return nil
}

// inTx wraps the callback in a database transaction so a subtree delete
// is all-or-nothing. Without a database handle (pure in-memory stores)
// the callback runs unwrapped.
func (s *aggregationService) inTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if s.db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// deleteSectionTree removes a subtree depth-first: grandchildren before
// children before the node, so a failure never leaves an orphaned child
// behind a deleted parent.
func (s *aggregationService) deleteSectionTree(dbc dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	children, err := s.sectionRepo.GetChildren(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	var deleted []uuid.UUID
	for _, child := range children {
		ids, err := s.deleteSectionTree(dbc, child.ID)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, ids...)
	}
	if err := s.sectionRepo.FullDeleteByIDs(dbc, []uuid.UUID{sectionID}); err != nil {
		return nil, err
	}
	return append(deleted, sectionID), nil
}

func (s *aggregationService) invalidateAll(ctx context.Context, ids []uuid.UUID) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	s.cache.Invalidate(ctx, keys...)
}
