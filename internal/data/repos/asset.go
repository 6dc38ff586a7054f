package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

// AssetRepo is read-mostly: assets are created and mutated by the ingest
// subsystem. Create exists for tests and operational seeding.
type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Asset) ([]*domain.Asset, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Asset, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Asset, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*domain.Asset) ([]*domain.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Asset{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Asset, error) {
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

// GetByIDs returns the assets that exist; ids with no matching row are
// simply absent from the result, which is how dangling references get
// excluded upstream.
func (r *assetRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Asset
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
