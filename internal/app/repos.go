package app

import (
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type Repos struct {
	Catalog     repos.CatalogRepo
	Section     repos.SectionRepo
	Asset       repos.AssetRepo
	Party       repos.PartyRepo
	Library     repos.LibraryRepo
	AssetSearch repos.AssetSearchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos")
	return Repos{
		Catalog:     repos.NewCatalogRepo(db, log),
		Section:     repos.NewSectionRepo(db, log),
		Asset:       repos.NewAssetRepo(db, log),
		Party:       repos.NewPartyRepo(db, log),
		Library:     repos.NewLibraryRepo(db, log),
		AssetSearch: repos.NewAssetSearchRepo(db, log),
	}
}
