package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/data/repos/testutil"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
)

func TestCatalogRepoRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := repos.NewCatalogRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*domain.Catalog{
		{Name: "movies"},
		{Name: "series"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == uuid.Nil {
		t.Fatalf("created = %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "movies" {
		t.Fatalf("GetByID = %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("missing catalog = %+v, want nil", missing)
	}

	batch, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID, created[1].ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("GetByIDs returned %d rows, want 2", len(batch))
	}
}

func TestCatalogRepoUpdateContributors(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := repos.NewCatalogRepo(db, testutil.Logger(t))
	cat := testutil.SeedCatalog(t, ctx, tx, "movies")

	partyID := uuid.New()
	if err := repo.UpdateContributors(dbc, cat.ID, domain.EncodeContributorIDs([]uuid.UUID{partyID})); err != nil {
		t.Fatalf("UpdateContributors: %v", err)
	}

	got, err := repo.GetByID(dbc, cat.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	ids := domain.DecodeContributorIDs(got.ContributorIDs)
	if len(ids) != 1 || ids[0] != partyID {
		t.Fatalf("contributors = %v, want [%s]", ids, partyID)
	}
}

func TestCatalogRepoFullDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := repos.NewCatalogRepo(db, testutil.Logger(t))
	cat := testutil.SeedCatalog(t, ctx, tx, "doomed")

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{cat.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	got, err := repo.GetByID(dbc, cat.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("catalog survived hard delete: %+v", got)
	}
}
