package app

import (
	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/utils"
)

type Config struct {
	DefaultPageSize int
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		DefaultPageSize: utils.GetEnvAsInt("DEFAULT_PAGE_SIZE", 25, log),
	}
}
