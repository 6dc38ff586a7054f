package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type SectionRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Section) ([]*domain.Section, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Section, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Section, error)
	GetChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*domain.Section, error)
	GetByCatalogRef(dbc dbctx.Context, catalogID uuid.UUID) ([]*domain.Section, error)

	GetAssetRefs(dbc dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error)
	AddAssetRefs(dbc dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error
	RemoveAssetRefs(dbc dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error

	UpdateContributors(dbc dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) Create(dbc dbctx.Context, rows []*domain.Section) ([]*domain.Section, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Section{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Section, error) {
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

func (r *sectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Section, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Section
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) GetChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*domain.Section, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Section
	if parentID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("parent_ref = ?", parentID).
		Order("seq_no ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) GetByCatalogRef(dbc dbctx.Context, catalogID uuid.UUID) ([]*domain.Section, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Section
	if catalogID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("catalog_ref = ?", catalogID).
		Order("seq_no ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) GetAssetRefs(dbc dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if sectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.SectionAsset{}).
		Where("section_id = ?", sectionID).
		Order("seq_no ASC").
		Pluck("asset_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AddAssetRefs appends references with set semantics: an id already on
// the section keeps its position.
func (r *sectionRepo) AddAssetRefs(dbc dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if sectionID == uuid.Nil || len(assetIDs) == 0 {
		return nil
	}

	var maxSeq int
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.SectionAsset{}).
		Where("section_id = ?", sectionID).
		Select("COALESCE(MAX(seq_no), 0)").
		Scan(&maxSeq).Error; err != nil {
		return err
	}

	rows := make([]*domain.SectionAsset, 0, len(assetIDs))
	for i, assetID := range assetIDs {
		if assetID == uuid.Nil {
			continue
		}
		rows = append(rows, &domain.SectionAsset{
			SectionID: sectionID,
			AssetID:   assetID,
			SeqNo:     maxSeq + i + 1,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *sectionRepo) RemoveAssetRefs(dbc dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if sectionID == uuid.Nil || len(assetIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("section_id = ? AND asset_id IN ?", sectionID, assetIDs).
		Delete(&domain.SectionAsset{}).Error
}

func (r *sectionRepo) UpdateContributors(dbc dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.Section{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"contributor_ids": contributors,
			"updated_at":      time.Now(),
		}).Error
}

// FullDeleteByIDs hard-deletes sections and their asset reference rows.
// It does not touch child sections; cascading is the aggregation
// service's job so ordering stays explicit.
func (r *sectionRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("section_id IN ?", ids).
		Delete(&domain.SectionAsset{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&domain.Section{}).Error
}
