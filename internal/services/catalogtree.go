package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/apierr"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

// CatalogTreeService is the mutation surface for the tree. Every
// membership-changing operation ends with an explicit reaggregation of
// the mutated node, which ripples up to the root exactly once.
type CatalogTreeService interface {
	CreateCatalog(ctx context.Context, name, description string) (*domain.Catalog, error)
	CreateSection(ctx context.Context, in CreateSectionInput) (*domain.Section, error)

	AddAssets(ctx context.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error
	RemoveAssets(ctx context.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error

	DeleteSection(ctx context.Context, sectionID uuid.UUID) error
	DeleteCatalog(ctx context.Context, catalogID uuid.UUID) error
}

type CreateSectionInput struct {
	Name        string
	Description string
	SeqNo       int
	// Exactly one of CatalogRef/ParentRef must be set.
	CatalogRef *uuid.UUID
	ParentRef  *uuid.UUID
}

type catalogTreeService struct {
	log         *logger.Logger
	catalogRepo repos.CatalogRepo
	sectionRepo repos.SectionRepo
	aggregation AggregationService
}

func NewCatalogTreeService(
	baseLog *logger.Logger,
	catalogRepo repos.CatalogRepo,
	sectionRepo repos.SectionRepo,
	aggregation AggregationService,
) CatalogTreeService {
	return &catalogTreeService{
		log:         baseLog.With("service", "CatalogTreeService"),
		catalogRepo: catalogRepo,
		sectionRepo: sectionRepo,
		aggregation: aggregation,
	}
}

func (s *catalogTreeService) CreateCatalog(ctx context.Context, name, description string) (*domain.Catalog, error) {
	catalog := &domain.Catalog{
		ID:             uuid.New(),
		Name:           name,
		Description:    description,
		ContributorIDs: domain.EncodeContributorIDs(nil),
	}
	if _, err := s.catalogRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.Catalog{catalog}); err != nil {
		return nil, fmt.Errorf("create catalog: %w", err)
	}
	s.log.Info("catalog created", "catalog_id", catalog.ID, "name", name)
	return catalog, nil
}

func (s *catalogTreeService) CreateSection(ctx context.Context, in CreateSectionInput) (*domain.Section, error) {
	dbc := dbctx.Context{Ctx: ctx}

	if (in.CatalogRef == nil) == (in.ParentRef == nil) {
		return nil, apierr.New(400, apierr.CodeInvalidFilter,
			fmt.Errorf("section needs exactly one of catalog_ref or parent_ref"))
	}
	if in.CatalogRef != nil {
		parent, err := s.catalogRepo.GetByID(dbc, *in.CatalogRef)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", *in.CatalogRef, err)
		}
		if parent == nil {
			return nil, apierr.NotFound("catalog")
		}
	} else {
		parent, err := s.sectionRepo.GetByID(dbc, *in.ParentRef)
		if err != nil {
			return nil, fmt.Errorf("load parent section %s: %w", *in.ParentRef, err)
		}
		if parent == nil {
			return nil, apierr.NotFound("parent section")
		}
	}

	section := &domain.Section{
		ID:             uuid.New(),
		CatalogRef:     in.CatalogRef,
		ParentRef:      in.ParentRef,
		Name:           in.Name,
		Description:    in.Description,
		SeqNo:          in.SeqNo,
		ContributorIDs: domain.EncodeContributorIDs(nil),
	}
	if _, err := s.sectionRepo.Create(dbc, []*domain.Section{section}); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	s.log.Info("section created", "section_id", section.ID, "name", in.Name)

	if err := s.aggregation.ReaggregateSection(ctx, section.ID); err != nil {
		return nil, fmt.Errorf("reaggregate new section: %w", err)
	}
	return section, nil
}

func (s *catalogTreeService) AddAssets(ctx context.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	section, err := s.sectionRepo.GetByID(dbc, sectionID)
	if err != nil {
		return fmt.Errorf("load section %s: %w", sectionID, err)
	}
	if section == nil {
		return apierr.NotFound("section")
	}
	if err := s.sectionRepo.AddAssetRefs(dbc, sectionID, assetIDs); err != nil {
		return fmt.Errorf("add asset refs: %w", err)
	}
	return s.aggregation.ReaggregateSection(ctx, sectionID)
}

func (s *catalogTreeService) RemoveAssets(ctx context.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	section, err := s.sectionRepo.GetByID(dbc, sectionID)
	if err != nil {
		return fmt.Errorf("load section %s: %w", sectionID, err)
	}
	if section == nil {
		return apierr.NotFound("section")
	}
	if err := s.sectionRepo.RemoveAssetRefs(dbc, sectionID, assetIDs); err != nil {
		return fmt.Errorf("remove asset refs: %w", err)
	}
	return s.aggregation.ReaggregateSection(ctx, sectionID)
}

func (s *catalogTreeService) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
	return s.aggregation.DeleteSection(ctx, sectionID)
}

func (s *catalogTreeService) DeleteCatalog(ctx context.Context, catalogID uuid.UUID) error {
	return s.aggregation.DeleteCatalog(ctx, catalogID)
}
