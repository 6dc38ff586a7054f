package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func wantIDs(t *testing.T, got []uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	gotSet := idSet(got)
	if len(got) != len(gotSet) {
		t.Fatalf("resolved ids contain duplicates: %v", got)
	}
	if len(gotSet) != len(want) {
		t.Fatalf("resolved %d ids, want %d (%v)", len(gotSet), len(want), got)
	}
	for _, id := range want {
		if _, ok := gotSet[id]; !ok {
			t.Fatalf("resolved ids %v missing %s", got, id)
		}
	}
}

func TestResolveSectionDirectAssets(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	cat := store.addCatalog(t, "movies")
	sec := store.addSection(t, "features", &cat.ID, nil, 0)
	a1 := store.addAsset(t, "alpha", "p1")
	a2 := store.addAsset(t, "beta", "p2")
	store.linkSectionAssets(sec.ID, a1, a2, a1)

	ids, err := resolver.ResolveSection(context.Background(), sec.ID)
	if err != nil {
		t.Fatalf("ResolveSection: %v", err)
	}
	wantIDs(t, ids, a1.ID, a2.ID)
}

func TestResolveSectionRecursesIntoChildren(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	cat := store.addCatalog(t, "movies")
	root := store.addSection(t, "root", &cat.ID, nil, 0)
	childA := store.addSection(t, "a", nil, &root.ID, 0)
	childB := store.addSection(t, "b", nil, &root.ID, 1)
	grandchild := store.addSection(t, "b1", nil, &childB.ID, 0)

	a1 := store.addAsset(t, "one", "p1")
	a2 := store.addAsset(t, "two", "p1")
	a3 := store.addAsset(t, "three", "p2")
	store.linkSectionAssets(childA.ID, a1)
	store.linkSectionAssets(grandchild.ID, a2, a3)

	ids, err := resolver.ResolveSection(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("ResolveSection: %v", err)
	}
	wantIDs(t, ids, a1.ID, a2.ID, a3.ID)
}

func TestResolveSectionDirectAssetsShadowChildren(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	cat := store.addCatalog(t, "movies")
	sec := store.addSection(t, "mixed", &cat.ID, nil, 0)
	child := store.addSection(t, "child", nil, &sec.ID, 0)

	direct := store.addAsset(t, "direct", "p1")
	nested := store.addAsset(t, "nested", "p2")
	store.linkSectionAssets(sec.ID, direct)
	store.linkSectionAssets(child.ID, nested)

	ids, err := resolver.ResolveSection(context.Background(), sec.ID)
	if err != nil {
		t.Fatalf("ResolveSection: %v", err)
	}
	wantIDs(t, ids, direct.ID)
}

func TestResolveCatalogFansOutOverSections(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	cat := store.addCatalog(t, "movies")
	s1 := store.addSection(t, "one", &cat.ID, nil, 0)
	s2 := store.addSection(t, "two", &cat.ID, nil, 1)
	a1 := store.addAsset(t, "a", "p1")
	a2 := store.addAsset(t, "b", "p2")
	store.linkSectionAssets(s1.ID, a1)
	store.linkSectionAssets(s2.ID, a2)

	ids, err := resolver.ResolveCatalog(context.Background(), cat.ID)
	if err != nil {
		t.Fatalf("ResolveCatalog: %v", err)
	}
	wantIDs(t, ids, a1.ID, a2.ID)
}

func TestResolveMissingNode(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	ids, err := resolver.ResolveAssets(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ResolveAssets: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("missing node resolved to %v, want empty", ids)
	}

	ids, err = resolver.ResolveAssets(context.Background(), uuid.Nil)
	if err != nil || len(ids) != 0 {
		t.Fatalf("nil id resolved to (%v, %v), want empty", ids, err)
	}
}

func TestResolveAssetsAcceptsEitherNodeKind(t *testing.T) {
	store := newMemStore()
	resolver := NewAssetResolver(testLogger(t), stubCatalogRepo{store}, stubSectionRepo{store})

	cat := store.addCatalog(t, "movies")
	sec := store.addSection(t, "features", &cat.ID, nil, 0)
	a := store.addAsset(t, "alpha", "p1")
	store.linkSectionAssets(sec.ID, a)

	byCatalog, err := resolver.ResolveAssets(context.Background(), cat.ID)
	if err != nil {
		t.Fatalf("ResolveAssets(catalog): %v", err)
	}
	bySection, err := resolver.ResolveAssets(context.Background(), sec.ID)
	if err != nil {
		t.Fatalf("ResolveAssets(section): %v", err)
	}
	wantIDs(t, byCatalog, a.ID)
	wantIDs(t, bySection, a.ID)
}
