package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type CatalogRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Catalog) ([]*domain.Catalog, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Catalog, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Catalog, error)
	GetAll(dbc dbctx.Context) ([]*domain.Catalog, error)

	UpdateContributors(dbc dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) Create(dbc dbctx.Context, rows []*domain.Catalog) ([]*domain.Catalog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Catalog{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *catalogRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Catalog, error) {
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

func (r *catalogRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Catalog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Catalog
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) GetAll(dbc dbctx.Context) ([]*domain.Catalog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Catalog
	if err := t.WithContext(dbc.Ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) UpdateContributors(dbc dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.Catalog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"contributor_ids": contributors,
			"updated_at":      time.Now(),
		}).Error
}

func (r *catalogRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&domain.Catalog{}).Error
}
