package services

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("dev")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return log
}

// memStore backs stub implementations of the repo interfaces so the
// engine, compiler and resolver can be exercised without a database.
type memStore struct {
	mu sync.Mutex

	catalogs      map[uuid.UUID]*domain.Catalog
	sections      map[uuid.UUID]*domain.Section
	sectionAssets map[uuid.UUID][]uuid.UUID
	assets        map[uuid.UUID]*domain.Asset
	parties       map[uuid.UUID]*domain.Party
	libraries     map[uuid.UUID]*domain.Library
	libraryAssets map[uuid.UUID][]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		catalogs:      map[uuid.UUID]*domain.Catalog{},
		sections:      map[uuid.UUID]*domain.Section{},
		sectionAssets: map[uuid.UUID][]uuid.UUID{},
		assets:        map[uuid.UUID]*domain.Asset{},
		parties:       map[uuid.UUID]*domain.Party{},
		libraries:     map[uuid.UUID]*domain.Library{},
		libraryAssets: map[uuid.UUID][]uuid.UUID{},
	}
}

type stubCatalogRepo struct{ s *memStore }

func (r stubCatalogRepo) Create(_ dbctx.Context, rows []*domain.Catalog) ([]*domain.Catalog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range rows {
		r.s.catalogs[c.ID] = c
	}
	return rows, nil
}

func (r stubCatalogRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Catalog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.catalogs[id], nil
}

func (r stubCatalogRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Catalog, error) {
	var out []*domain.Catalog
	for _, id := range ids {
		if c, _ := r.GetByID(dbc, id); c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r stubCatalogRepo) GetAll(_ dbctx.Context) ([]*domain.Catalog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Catalog
	for _, c := range r.s.catalogs {
		out = append(out, c)
	}
	return out, nil
}

func (r stubCatalogRepo) UpdateContributors(_ dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c := r.s.catalogs[id]; c != nil {
		c.ContributorIDs = contributors
	}
	return nil
}

func (r stubCatalogRepo) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.catalogs, id)
	}
	return nil
}

type stubSectionRepo struct{ s *memStore }

func (r stubSectionRepo) Create(_ dbctx.Context, rows []*domain.Section) ([]*domain.Section, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sec := range rows {
		r.s.sections[sec.ID] = sec
	}
	return rows, nil
}

func (r stubSectionRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Section, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sections[id], nil
}

func (r stubSectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Section, error) {
	var out []*domain.Section
	for _, id := range ids {
		if sec, _ := r.GetByID(dbc, id); sec != nil {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (r stubSectionRepo) GetChildren(_ dbctx.Context, parentID uuid.UUID) ([]*domain.Section, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Section
	for _, sec := range r.s.sections {
		if sec.ParentRef != nil && *sec.ParentRef == parentID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqNo < out[j].SeqNo })
	return out, nil
}

func (r stubSectionRepo) GetByCatalogRef(_ dbctx.Context, catalogID uuid.UUID) ([]*domain.Section, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Section
	for _, sec := range r.s.sections {
		if sec.CatalogRef != nil && *sec.CatalogRef == catalogID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqNo < out[j].SeqNo })
	return out, nil
}

func (r stubSectionRepo) GetAssetRefs(_ dbctx.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]uuid.UUID(nil), r.s.sectionAssets[sectionID]...), nil
}

func (r stubSectionRepo) AddAssetRefs(_ dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := r.s.sectionAssets[sectionID]
	for _, id := range assetIDs {
		dup := false
		for _, have := range existing {
			if have == id {
				dup = true
				break
			}
		}
		if !dup && id != uuid.Nil {
			existing = append(existing, id)
		}
	}
	r.s.sectionAssets[sectionID] = existing
	return nil
}

func (r stubSectionRepo) RemoveAssetRefs(_ dbctx.Context, sectionID uuid.UUID, assetIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := map[uuid.UUID]struct{}{}
	for _, id := range assetIDs {
		drop[id] = struct{}{}
	}
	var kept []uuid.UUID
	for _, have := range r.s.sectionAssets[sectionID] {
		if _, gone := drop[have]; !gone {
			kept = append(kept, have)
		}
	}
	r.s.sectionAssets[sectionID] = kept
	return nil
}

func (r stubSectionRepo) UpdateContributors(_ dbctx.Context, id uuid.UUID, contributors datatypes.JSON) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sec := r.s.sections[id]; sec != nil {
		sec.ContributorIDs = contributors
	}
	return nil
}

func (r stubSectionRepo) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.sections, id)
		delete(r.s.sectionAssets, id)
	}
	return nil
}

type stubAssetRepo struct{ s *memStore }

func (r stubAssetRepo) Create(_ dbctx.Context, rows []*domain.Asset) ([]*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range rows {
		r.s.assets[a.ID] = a
	}
	return rows, nil
}

func (r stubAssetRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assets[id], nil
}

func (r stubAssetRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Asset
	for _, id := range ids {
		if a := r.s.assets[id]; a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubPartyRepo struct{ s *memStore }

func (r stubPartyRepo) Create(_ dbctx.Context, rows []*domain.Party) ([]*domain.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range rows {
		r.s.parties[p.ID] = p
	}
	return rows, nil
}

func (r stubPartyRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.parties[id], nil
}

func (r stubPartyRepo) GetByCodes(_ dbctx.Context, codes []string) ([]*domain.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Party
	for _, code := range codes {
		for _, p := range r.s.parties {
			if p.Code == code {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r stubPartyRepo) FindDuplicate(_ dbctx.Context, name string) (*domain.Party, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lower := strings.ToLower(name)
	for _, p := range r.s.parties {
		if strings.ToLower(p.Name) == lower {
			return p, nil
		}
		for _, alt := range decodeStrings(p.AltNames) {
			if strings.ToLower(alt) == lower {
				return p, nil
			}
		}
	}
	return nil, nil
}

type stubLibraryRepo struct{ s *memStore }

func (r stubLibraryRepo) Create(_ dbctx.Context, rows []*domain.Library) ([]*domain.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range rows {
		r.s.libraries[l.ID] = l
	}
	return rows, nil
}

func (r stubLibraryRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Library, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.libraries[id], nil
}

func (r stubLibraryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Library, error) {
	var out []*domain.Library
	for _, id := range ids {
		if l, _ := r.GetByID(dbc, id); l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r stubLibraryRepo) SearchByName(_ dbctx.Context, q string) ([]*domain.Library, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Library
	for _, l := range r.s.libraries {
		if q == "" || strings.Contains(strings.ToLower(l.Name), strings.ToLower(q)) {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r stubLibraryRepo) GetAssetRefs(_ dbctx.Context, libraryIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []uuid.UUID
	for _, id := range libraryIDs {
		out = append(out, r.s.libraryAssets[id]...)
	}
	return out, nil
}

func (r stubLibraryRepo) AddAssetRefs(_ dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := r.s.libraryAssets[libraryID]
	for _, id := range assetIDs {
		dup := false
		for _, have := range existing {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, id)
		}
	}
	r.s.libraryAssets[libraryID] = existing
	return nil
}

func (r stubLibraryRepo) RemoveAssetRefs(_ dbctx.Context, libraryID uuid.UUID, assetIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := map[uuid.UUID]struct{}{}
	for _, id := range assetIDs {
		drop[id] = struct{}{}
	}
	var kept []uuid.UUID
	for _, have := range r.s.libraryAssets[libraryID] {
		if _, gone := drop[have]; !gone {
			kept = append(kept, have)
		}
	}
	r.s.libraryAssets[libraryID] = kept
	return nil
}

func (r stubLibraryRepo) ListAssets(_ dbctx.Context, libraryID uuid.UUID, nameMatch, _ string, _ bool, skip, limit int) ([]*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []*domain.Asset
	for _, id := range r.s.libraryAssets[libraryID] {
		a := r.s.assets[id]
		if a == nil {
			continue
		}
		if nameMatch != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(nameMatch)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r stubLibraryRepo) CountAssets(dbc dbctx.Context, libraryID uuid.UUID, nameMatch string) (int64, error) {
	all, err := r.ListAssets(dbc, libraryID, nameMatch, "", false, 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r stubLibraryRepo) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.libraries, id)
		delete(r.s.libraryAssets, id)
	}
	return nil
}

// stubSearchRepo evaluates the parts of an AssetQuery that the engine
// tests care about (text match, id restriction, name sort, paging) and
// records the last query received so params can be asserted.
type stubSearchRepo struct {
	s    *memStore
	last *repos.AssetQuery
}

func (r *stubSearchRepo) matches(q repos.AssetQuery) []*domain.Asset {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := map[uuid.UUID]struct{}{}
	for _, id := range q.RestrictIDs {
		allowed[id] = struct{}{}
	}
	var out []*domain.Asset
	for _, a := range r.s.assets {
		if q.Restricted {
			if _, ok := allowed[a.ID]; !ok {
				continue
			}
		}
		if q.Text != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(q.Text)) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.SortDesc {
			return out[i].Name > out[j].Name
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *stubSearchRepo) Find(_ dbctx.Context, q repos.AssetQuery) ([]*domain.Asset, error) {
	r.last = &q
	if q.Restricted && len(q.RestrictIDs) == 0 {
		return []*domain.Asset{}, nil
	}
	out := r.matches(q)
	if q.Skip >= len(out) {
		return []*domain.Asset{}, nil
	}
	out = out[q.Skip:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *stubSearchRepo) Count(_ dbctx.Context, q repos.AssetQuery) (int64, error) {
	if q.Restricted && len(q.RestrictIDs) == 0 {
		return 0, nil
	}
	return int64(len(r.matches(q))), nil
}

func (s *memStore) addParty(tb testing.TB, code, name string, altNames ...string) *domain.Party {
	tb.Helper()
	p := &domain.Party{ID: uuid.New(), Code: code, Name: name}
	if len(altNames) > 0 {
		raw, err := json.Marshal(altNames)
		if err != nil {
			tb.Fatalf("marshal alt names: %v", err)
		}
		p.AltNames = raw
	}
	s.mu.Lock()
	s.parties[p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *memStore) addAsset(tb testing.TB, name, partnerCode string) *domain.Asset {
	tb.Helper()
	a := &domain.Asset{ID: uuid.New(), Name: name, PartnerCode: partnerCode}
	s.mu.Lock()
	s.assets[a.ID] = a
	s.mu.Unlock()
	return a
}

func (s *memStore) addCatalog(tb testing.TB, name string) *domain.Catalog {
	tb.Helper()
	c := &domain.Catalog{ID: uuid.New(), Name: name}
	s.mu.Lock()
	s.catalogs[c.ID] = c
	s.mu.Unlock()
	return c
}

func (s *memStore) addSection(tb testing.TB, name string, catalogRef, parentRef *uuid.UUID, seqNo int) *domain.Section {
	tb.Helper()
	sec := &domain.Section{ID: uuid.New(), Name: name, CatalogRef: catalogRef, ParentRef: parentRef, SeqNo: seqNo}
	s.mu.Lock()
	s.sections[sec.ID] = sec
	s.mu.Unlock()
	return sec
}

func (s *memStore) addLibrary(tb testing.TB, name string) *domain.Library {
	tb.Helper()
	l := &domain.Library{ID: uuid.New(), Name: name}
	s.mu.Lock()
	s.libraries[l.ID] = l
	s.mu.Unlock()
	return l
}

func (s *memStore) linkSectionAssets(sectionID uuid.UUID, assets ...*domain.Asset) {
	s.mu.Lock()
	for _, a := range assets {
		s.sectionAssets[sectionID] = append(s.sectionAssets[sectionID], a.ID)
	}
	s.mu.Unlock()
}

func (s *memStore) linkLibraryAssets(libraryID uuid.UUID, assets ...*domain.Asset) {
	s.mu.Lock()
	for _, a := range assets {
		s.libraryAssets[libraryID] = append(s.libraryAssets[libraryID], a.ID)
	}
	s.mu.Unlock()
}

func decodeStrings(raw datatypes.JSON) []string {
	var out []string
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
