package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type PartyRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Party) ([]*domain.Party, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Party, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*domain.Party, error)

	// FindDuplicate matches either the exact name (case-insensitive) or
	// any alternate name. The two conditions are independent ORs.
	FindDuplicate(dbc dbctx.Context, name string) (*domain.Party, error)
}

type partyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPartyRepo(db *gorm.DB, baseLog *logger.Logger) PartyRepo {
	return &partyRepo{db: db, log: baseLog.With("repo", "PartyRepo")}
}

func (r *partyRepo) Create(dbc dbctx.Context, rows []*domain.Party) ([]*domain.Party, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Party{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *partyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Party, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.Party
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByCodes returns parties for the codes that resolve; unknown codes
// contribute nothing to the result.
func (r *partyRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*domain.Party, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Party
	if len(codes) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("code IN ?", codes).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *partyRepo) FindDuplicate(dbc dbctx.Context, name string) (*domain.Party, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if name == "" {
		return nil, nil
	}
	var out []*domain.Party
	if err := t.WithContext(dbc.Ctx).
		Where(`LOWER(name) = LOWER(?)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(COALESCE(alt_names, '[]'::jsonb)) AS alt(n)
				WHERE LOWER(alt.n) = LOWER(?)
			)`, name, name).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
