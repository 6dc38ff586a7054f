package pg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "PostgresService")

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "catalog", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("connecting to postgres", "host", host, "db", name)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	s.log.Info("migrating catalog tables")
	err := s.db.AutoMigrate(
		&domain.Party{},
		&domain.Asset{},
		&domain.Catalog{},
		&domain.Section{},
		&domain.SectionAsset{},
		&domain.Library{},
		&domain.LibraryAsset{},
	)
	if err != nil {
		s.log.Error("automigrate failed", "error", err)
		return err
	}

	// Tree-internal constraints only. section_asset/library_asset rows
	// deliberately carry no asset FK so dangling references survive asset
	// deletion (they are excluded at read time instead).
	constraints := []struct {
		name string
		stmt string
	}{
		{"fk_section_catalog_ref", `
			ALTER TABLE "section"
			ADD CONSTRAINT "fk_section_catalog_ref"
			FOREIGN KEY ("catalog_ref") REFERENCES "catalog"("id")
			ON DELETE CASCADE`},
		{"fk_section_parent_ref", `
			ALTER TABLE "section"
			ADD CONSTRAINT "fk_section_parent_ref"
			FOREIGN KEY ("parent_ref") REFERENCES "section"("id")
			ON DELETE CASCADE`},
		{"fk_section_asset_section", `
			ALTER TABLE "section_asset"
			ADD CONSTRAINT "fk_section_asset_section"
			FOREIGN KEY ("section_id") REFERENCES "section"("id")
			ON DELETE CASCADE`},
		{"fk_library_asset_library", `
			ALTER TABLE "library_asset"
			ADD CONSTRAINT "fk_library_asset_library"
			FOREIGN KEY ("library_id") REFERENCES "library"("id")
			ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var exists bool
		s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists)
		if exists {
			continue
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			s.log.Error("add constraint failed", "constraint", c.name, "error", err)
			return err
		}
	}

	// Ranked text search over asset name/description.
	if err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_asset_textsearch
		ON "asset"
		USING gin (to_tsvector('english', coalesce(name, '') || ' ' || coalesce(description, '')))
	`).Error; err != nil {
		s.log.Error("create text search index failed", "error", err)
		return err
	}
	return nil
}
