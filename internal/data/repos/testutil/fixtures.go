package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/domain"
)

func SeedParty(tb testing.TB, ctx context.Context, tx *gorm.DB, code, name string) *domain.Party {
	tb.Helper()
	p := &domain.Party{
		ID:       uuid.New(),
		Code:     code,
		Name:     name,
		AltNames: datatypes.JSON([]byte(`[]`)),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed party: %v", err)
	}
	return p
}

func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, name, partnerCode string) *domain.Asset {
	tb.Helper()
	a := &domain.Asset{
		ID:            uuid.New(),
		Name:          name,
		PartnerCode:   partnerCode,
		PublishStatus: datatypes.JSON([]byte(`{"isPublished": true}`)),
		MdFacet:       datatypes.JSON([]byte(`{}`)),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	return a
}

func SeedCatalog(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Catalog {
	tb.Helper()
	c := &domain.Catalog{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed catalog: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, catalogRef, parentRef *uuid.UUID) *domain.Section {
	tb.Helper()
	s := &domain.Section{
		ID:         uuid.New(),
		Name:       name,
		CatalogRef: catalogRef,
		ParentRef:  parentRef,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedLibrary(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Library {
	tb.Helper()
	l := &domain.Library{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed library: %v", err)
	}
	return l
}
