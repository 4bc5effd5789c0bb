package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/cache"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	snapshotKeyPrefix = "catalog:active:"
	versionKey        = "catalog:version"
)

// ErrInvalidProduct is returned for catalog updates without a product ref.
var ErrInvalidProduct = errors.New("invalid product")

// ProductStore reads and writes catalog products.
type ProductStore interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, products []domain.Product) error
}

// Cache is the subset of cache.Client used for snapshots.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Service serves catalog snapshots, cached in redis when a cache is configured.
// Snapshots are keyed by a catalog version that every update increments, so a
// snapshot read before an update can never be served after it. Cache failures
// are logged and never fail a request.
type Service struct {
	products ProductStore
	cache    Cache
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a catalog service. cache may be nil.
func NewService(products ProductStore, c Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		cache:    c,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
	}
}

// Snapshot returns the active products as a price list.
func (s *Service) Snapshot(ctx context.Context) (*gate.PriceList, error) {
	version, cacheable := s.cacheVersion(ctx)
	if cacheable {
		if items, ok := s.fromCache(ctx, version); ok {
			return gate.NewPriceList(items), nil
		}
	}

	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	items := make([]gate.CatalogItem, 0, len(products))
	for _, p := range products {
		items = append(items, ToCatalogItem(p))
	}

	if cacheable {
		s.store(ctx, version, items)
	}
	return gate.NewPriceList(items), nil
}

// UpdateProducts upserts products and retires the cached snapshot.
func (s *Service) UpdateProducts(ctx context.Context, products []domain.Product) error {
	for i := range products {
		products[i].Ref = strings.TrimSpace(products[i].Ref)
		if products[i].Ref == "" {
			return fmt.Errorf("%w: ref is required", ErrInvalidProduct)
		}
	}
	if err := s.products.Upsert(ctx, products); err != nil {
		return fmt.Errorf("failed to update products: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate moves readers to a new catalog version. Entries of older versions
// expire with their TTL.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, versionKey); err != nil {
		s.logger.Warn("failed to invalidate catalog cache, cached prices may be stale until they expire",
			zap.Duration("ttl", s.ttl),
			zap.Error(err),
		)
	}
}

// cacheVersion returns the current catalog version. A missing version counts as 0.
func (s *Service) cacheVersion(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	version, err := s.cache.Get(ctx, versionKey)
	if errors.Is(err, cache.ErrMiss) {
		return "0", true
	}
	if err != nil {
		s.metrics.CatalogCache(metrics.CacheError)
		s.logger.Warn("failed to read catalog version", zap.Error(err))
		return "", false
	}
	return version, true
}

func (s *Service) fromCache(ctx context.Context, version string) ([]gate.CatalogItem, bool) {
	raw, err := s.cache.Get(ctx, snapshotKeyPrefix+version)
	if errors.Is(err, cache.ErrMiss) {
		s.metrics.CatalogCache(metrics.CacheMiss)
		return nil, false
	}
	if err != nil {
		s.metrics.CatalogCache(metrics.CacheError)
		s.logger.Warn("failed to read catalog cache", zap.Error(err))
		return nil, false
	}

	var items []gate.CatalogItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.metrics.CatalogCache(metrics.CacheError)
		s.logger.Warn("discarding unreadable catalog cache entry", zap.Error(err))
		return nil, false
	}
	s.metrics.CatalogCache(metrics.CacheHit)
	return items, true
}

func (s *Service) store(ctx context.Context, version string, items []gate.CatalogItem) {
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("failed to encode catalog snapshot", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, snapshotKeyPrefix+version, string(data), s.ttl); err != nil {
		s.logger.Warn("failed to write catalog cache", zap.Error(err))
	}
}

// ToCatalogItem converts a stored product into its pricing form.
func ToCatalogItem(p domain.Product) gate.CatalogItem {
	return gate.CatalogItem{
		Ref:       p.Ref,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      gate.PriceUnit(strings.ToLower(strings.TrimSpace(p.Unit))),
		BasePrice: decimal.NewFromFloat(p.BasePrice).Round(2),
	}
}
