package app

import (
	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/platform/rediscache"
	"github.com/wemedia/catalog-backend/internal/services"
)

type Services struct {
	Resolver    services.AssetResolver
	Aggregation services.AggregationService
	CatalogTree services.CatalogTreeService
	Search      services.SearchService
	Library     services.LibraryService
	Party       services.PartyService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, cache rediscache.ResolveCache) Services {
	log.Info("wiring services")

	resolver := services.NewAssetResolver(log, r.Catalog, r.Section)
	aggregation := services.NewAggregationService(db, log, resolver, r.Catalog, r.Section, r.Asset, r.Party, cache)

	return Services{
		Resolver:    resolver,
		Aggregation: aggregation,
		CatalogTree: services.NewCatalogTreeService(log, r.Catalog, r.Section, aggregation),
		Search:      services.NewSearchService(log, resolver, r.Asset, r.Library, r.AssetSearch, cache, cfg.DefaultPageSize),
		Library:     services.NewLibraryService(log, r.Library, cfg.DefaultPageSize),
		Party:       services.NewPartyService(log, r.Party),
	}
}
