package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type LibraryRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Library) ([]*domain.Library, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Library, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Library, error)
	SearchByName(dbc dbctx.Context, q string) ([]*domain.Library, int64, error)

	GetAssetRefs(dbc dbctx.Context, libraryIDs []uuid.UUID) ([]uuid.UUID, error)
	AddAssetRefs(dbc dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error
	RemoveAssetRefs(dbc dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error

	// ListAssets pages through a library's resolvable assets, optionally
	// narrowed by a case-insensitive name match. Dangling references are
	// excluded by the join.
	ListAssets(dbc dbctx.Context, libraryID uuid.UUID, nameMatch, sortBy string, desc bool, skip, limit int) ([]*domain.Asset, error)
	CountAssets(dbc dbctx.Context, libraryID uuid.UUID, nameMatch string) (int64, error)

	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type libraryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryRepo(db *gorm.DB, baseLog *logger.Logger) LibraryRepo {
	return &libraryRepo{db: db, log: baseLog.With("repo", "LibraryRepo")}
}

func (r *libraryRepo) Create(dbc dbctx.Context, rows []*domain.Library) ([]*domain.Library, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Library{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *libraryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Library, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *libraryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Library, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Library
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryRepo) SearchByName(dbc dbctx.Context, q string) ([]*domain.Library, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	byName := func() *gorm.DB {
		query := t.WithContext(dbc.Ctx).Model(&domain.Library{})
		if q != "" {
			query = query.Where("name ILIKE ?", "%"+q+"%")
		}
		return query
	}
	var count int64
	if err := byName().Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*domain.Library
	if err := byName().Order("name ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *libraryRepo) GetAssetRefs(dbc dbctx.Context, libraryIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(libraryIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.LibraryAsset{}).
		Where("library_id IN ?", libraryIDs).
		Distinct().
		Pluck("asset_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryRepo) AddAssetRefs(dbc dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if libraryID == uuid.Nil || len(assetIDs) == 0 {
		return nil
	}
	rows := make([]*domain.LibraryAsset, 0, len(assetIDs))
	for _, assetID := range assetIDs {
		if assetID == uuid.Nil {
			continue
		}
		rows = append(rows, &domain.LibraryAsset{LibraryID: libraryID, AssetID: assetID})
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *libraryRepo) RemoveAssetRefs(dbc dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if libraryID == uuid.Nil || len(assetIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("library_id = ? AND asset_id IN ?", libraryID, assetIDs).
		Delete(&domain.LibraryAsset{}).Error
}

func (r *libraryRepo) ListAssets(dbc dbctx.Context, libraryID uuid.UUID, nameMatch, sortBy string, desc bool, skip, limit int) ([]*domain.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Asset
	if libraryID == uuid.Nil {
		return out, nil
	}
	query := r.libraryAssetQuery(t, dbc, libraryID, nameMatch)
	order := sortColumn(sortBy) + " ASC"
	if desc {
		order = sortColumn(sortBy) + " DESC"
	}
	if err := query.Order(order).Offset(skip).Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryRepo) CountAssets(dbc dbctx.Context, libraryID uuid.UUID, nameMatch string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if libraryID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := r.libraryAssetQuery(t, dbc, libraryID, nameMatch).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *libraryRepo) libraryAssetQuery(t *gorm.DB, dbc dbctx.Context, libraryID uuid.UUID, nameMatch string) *gorm.DB {
	query := t.WithContext(dbc.Ctx).
		Model(&domain.Asset{}).
		Joins(`JOIN library_asset ON library_asset.asset_id = asset.id`).
		Where("library_asset.library_id = ?", libraryID)
	if nameMatch != "" {
		query = query.Where("asset.name ILIKE ?", "%"+nameMatch+"%")
	}
	return query
}

func (r *libraryRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("library_id IN ?", ids).
		Delete(&domain.LibraryAsset{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&domain.Library{}).Error
}
