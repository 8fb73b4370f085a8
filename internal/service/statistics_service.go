package service

import (
	"context"
	"time"

	"food-catalog/internal/cache"
	"food-catalog/internal/domain"
	"food-catalog/internal/repository"
)

type StatisticsService interface {
	Catalog(ctx context.Context) (*domain.CatalogStatistics, error)
}

type statisticsService struct {
	products repository.ProductRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewStatisticsService(products repository.ProductRepository, c cache.Cache, ttls CacheTTLs) StatisticsService {
	return &statisticsService{products: products, cache: c, ttl: ttls.Statistics}
}

func (s *statisticsService) Catalog(ctx context.Context) (*domain.CatalogStatistics, error) {
	return cachedRead(ctx, s.cache, "statistics", s.ttl, func() (*domain.CatalogStatistics, error) {
		return s.products.Statistics(ctx)
	})
}
