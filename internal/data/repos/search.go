package repos

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

const assetTextVector = `to_tsvector('english', coalesce(asset.name, '') || ' ' || coalesce(asset.description, ''))`

// AssetQuery is the executable form of a search: compiled property
// clauses, an optional text query, an optional hierarchy-resolved id
// restriction, sort and page window. Property paths and sort keys have
// been validated by the compiler before they reach this repo.
type AssetQuery struct {
	Filter domain.CompiledFilter
	Text   string

	Restricted  bool
	RestrictIDs []uuid.UUID

	SortBy    string
	SortDesc  bool
	Relevance bool

	Skip  int
	Limit int
}

type AssetSearchRepo interface {
	Find(dbc dbctx.Context, q AssetQuery) ([]*domain.Asset, error)
	Count(dbc dbctx.Context, q AssetQuery) (int64, error)
}

type assetSearchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetSearchRepo(db *gorm.DB, baseLog *logger.Logger) AssetSearchRepo {
	return &assetSearchRepo{db: db, log: baseLog.With("repo", "AssetSearchRepo")}
}

func (r *assetSearchRepo) Find(dbc dbctx.Context, q AssetQuery) ([]*domain.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if q.Restricted && len(q.RestrictIDs) == 0 {
		return []*domain.Asset{}, nil
	}

	query := r.apply(t.WithContext(dbc.Ctx).Model(&domain.Asset{}), q)

	switch {
	case q.Relevance && q.Text != "":
		query = query.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  fmt.Sprintf("ts_rank(%s, plainto_tsquery('english', ?)) DESC", assetTextVector),
			Vars: []interface{}{q.Text},
		}})
	default:
		order := sortColumn(q.SortBy) + " ASC"
		if q.SortDesc {
			order = sortColumn(q.SortBy) + " DESC"
		}
		query = query.Order(order)
	}

	var out []*domain.Asset
	if err := query.Offset(q.Skip).Limit(q.Limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetSearchRepo) Count(dbc dbctx.Context, q AssetQuery) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if q.Restricted && len(q.RestrictIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.apply(t.WithContext(dbc.Ctx).Model(&domain.Asset{}), q).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assetSearchRepo) apply(query *gorm.DB, q AssetQuery) *gorm.DB {
	if q.Text != "" {
		query = query.Where(
			fmt.Sprintf("%s @@ plainto_tsquery('english', ?)", assetTextVector), q.Text)
	}
	for _, c := range q.Filter.And {
		cond, args := renderClause(c)
		if cond != "" {
			query = query.Where(cond, args...)
		}
	}
	if q.Restricted {
		query = query.Where("asset.id IN ?", q.RestrictIDs)
	}
	return query
}

func renderClause(c domain.FilterClause) (string, []any) {
	switch v := c.(type) {
	case domain.ExactMatch:
		return renderExact(v)
	case domain.OrGroup:
		conds := make([]string, 0, len(v.Alternatives))
		var args []any
		for _, alt := range v.Alternatives {
			cond, altArgs := renderExact(alt)
			conds = append(conds, cond)
			args = append(args, altArgs...)
		}
		if len(conds) == 0 {
			return "", nil
		}
		return "(" + strings.Join(conds, " OR ") + ")", args
	}
	return "", nil
}

func renderExact(m domain.ExactMatch) (string, []any) {
	segments := strings.Split(m.Path, ".")
	col := camelToSnake(segments[0])

	// A bare column compares natively; a dotted path descends into the
	// column's jsonb document and compares its text rendering, which is
	// what ->> yields for scalars.
	if len(segments) == 1 {
		return fmt.Sprintf(`asset.%s = ?`, col), []any{m.Value}
	}

	expr := "asset." + col
	for _, seg := range segments[1 : len(segments)-1] {
		expr += fmt.Sprintf(`->'%s'`, seg)
	}
	expr += fmt.Sprintf(`->>'%s'`, segments[len(segments)-1])
	return expr + " = ?", []any{jsonText(m.Value)}
}

// jsonText renders a filter value the way Postgres's ->> operator
// renders the matching jsonb scalar.
func jsonText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// sortColumn maps an API-form sort key (camelCase) onto an asset column.
// Unknown keys fall back to name, the catalog's default sort.
func sortColumn(key string) string {
	col := camelToSnake(key)
	switch col {
	case "name", "duration", "ingest_date", "last_modified", "partner_code", "created_at", "updated_at":
		return "asset." + col
	default:
		return "asset.name"
	}
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
