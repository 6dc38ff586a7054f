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

// LibraryService manages flat asset groupings. Libraries sit outside the
// catalog tree and never carry a contributor set, so none of these
// operations trigger reaggregation.
type LibraryService interface {
	Create(ctx context.Context, name string, partnerRef *uuid.UUID) (*domain.Library, error)
	Get(ctx context.Context, id uuid.UUID, p LibraryPageParams) (*LibraryPage, error)
	SearchByName(ctx context.Context, q string) ([]*domain.Library, int64, error)

	AddAssets(ctx context.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error
	RemoveAssets(ctx context.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error

	Delete(ctx context.Context, libraryID uuid.UUID) error
}

type LibraryPageParams struct {
	// NameMatch narrows the asset listing by case-insensitive name
	// containment; empty means all assets.
	NameMatch string
	SortBy    string
	Page      int
	PageSize  int
}

type LibraryPage struct {
	Library *domain.Library
	Assets  []*domain.Asset
	// Count is the number of matching assets across all pages.
	Count int64
}

type libraryService struct {
	log             *logger.Logger
	libraryRepo     repos.LibraryRepo
	defaultPageSize int
}

func NewLibraryService(baseLog *logger.Logger, libraryRepo repos.LibraryRepo, defaultPageSize int) LibraryService {
	if defaultPageSize <= 0 {
		defaultPageSize = 25
	}
	return &libraryService{
		log:             baseLog.With("service", "LibraryService"),
		libraryRepo:     libraryRepo,
		defaultPageSize: defaultPageSize,
	}
}

func (s *libraryService) Create(ctx context.Context, name string, partnerRef *uuid.UUID) (*domain.Library, error) {
	library := &domain.Library{
		ID:         uuid.New(),
		Name:       name,
		PartnerRef: partnerRef,
	}
	if _, err := s.libraryRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.Library{library}); err != nil {
		return nil, fmt.Errorf("create library: %w", err)
	}
	return library, nil
}

func (s *libraryService) Get(ctx context.Context, id uuid.UUID, p LibraryPageParams) (*LibraryPage, error) {
	dbc := dbctx.Context{Ctx: ctx}

	library, err := s.libraryRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load library %s: %w", id, err)
	}
	if library == nil {
		return nil, apierr.NotFound("library")
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	sortBy, desc, _ := parseSort(p.SortBy, "")

	count, err := s.libraryRepo.CountAssets(dbc, id, p.NameMatch)
	if err != nil {
		return nil, fmt.Errorf("count library assets: %w", err)
	}
	assets, err := s.libraryRepo.ListAssets(dbc, id, p.NameMatch, sortBy, desc, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list library assets: %w", err)
	}
	return &LibraryPage{Library: library, Assets: assets, Count: count}, nil
}

func (s *libraryService) SearchByName(ctx context.Context, q string) ([]*domain.Library, int64, error) {
	libraries, count, err := s.libraryRepo.SearchByName(dbctx.Context{Ctx: ctx}, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search libraries: %w", err)
	}
	return libraries, count, nil
}

func (s *libraryService) AddAssets(ctx context.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	library, err := s.libraryRepo.GetByID(dbc, libraryID)
	if err != nil {
		return fmt.Errorf("load library %s: %w", libraryID, err)
	}
	if library == nil {
		return apierr.NotFound("library")
	}
	if err := s.libraryRepo.AddAssetRefs(dbc, libraryID, assetIDs); err != nil {
		return fmt.Errorf("add library asset refs: %w", err)
	}
	return nil
}

func (s *libraryService) RemoveAssets(ctx context.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	library, err := s.libraryRepo.GetByID(dbc, libraryID)
	if err != nil {
		return fmt.Errorf("load library %s: %w", libraryID, err)
	}
	if library == nil {
		return apierr.NotFound("library")
	}
	if err := s.libraryRepo.RemoveAssetRefs(dbc, libraryID, assetIDs); err != nil {
		return fmt.Errorf("remove library asset refs: %w", err)
	}
	return nil
}

func (s *libraryService) Delete(ctx context.Context, libraryID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	library, err := s.libraryRepo.GetByID(dbc, libraryID)
	if err != nil {
		return fmt.Errorf("load library %s: %w", libraryID, err)
	}
	if library == nil {
		return apierr.NotFound("library")
	}
	if err := s.libraryRepo.FullDeleteByIDs(dbc, []uuid.UUID{libraryID}); err != nil {
		return fmt.Errorf("delete library: %w", err)
	}
	return nil
}
