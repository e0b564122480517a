package repository

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/allisson/casevault/internal/cache"
	"github.com/allisson/casevault/internal/metrics"
	"github.com/allisson/casevault/internal/pagination"
)

// cachingDecorator caches decrypted reads. Entity keys are content-addressed on the stored
// ciphertext, so writes never have to invalidate them: a write re-encrypts, the fingerprint
// changes and the old entry is orphaned until its TTL runs out. Page results are not
// content-addressed and are purged after every successful write of the entity type.
//
// A page load that overlaps a write could otherwise store the pre-write page after the purge.
// Each purge bumps the generation of the purged types, and a load only stores its page while
// the generation it started under is still current.
type cachingDecorator[T Entity[T]] struct {
	next          Repository[T]
	entityType    string
	fingerprinter Fingerprinter
	cache         cache.Cache
	metrics       metrics.BusinessMetrics
	group         singleflight.Group
	generations   *PageGenerations
	// dependents are entity types whose pages must also be purged, e.g. notes of a deleted case.
	dependents []string
}

// PageGenerations counts page purges per entity type. Pipelines sharing a cache should share
// one so a write of one type fences in-flight page loads of its dependent types.
type PageGenerations struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewPageGenerations returns an empty set of counters.
func NewPageGenerations() *PageGenerations {
	return &PageGenerations{counts: make(map[string]uint64)}
}

// Current returns the generation of entityType.
func (g *PageGenerations) Current(entityType string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[entityType]
}

// Bump advances the generation of each entity type.
func (g *PageGenerations) Bump(entityTypes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, entityType := range entityTypes {
		g.counts[entityType]++
	}
}

// CachingOption configures the caching decorator.
type CachingOption func(*cachingOptions)

type cachingOptions struct {
	metrics     metrics.BusinessMetrics
	dependents  []string
	generations *PageGenerations
}

// WithCacheMetrics records hit and miss counts.
func WithCacheMetrics(m metrics.BusinessMetrics) CachingOption {
	return func(o *cachingOptions) {
		o.metrics = m
	}
}

// WithDependentTypes also purges the page keys of entityTypes after writes.
func WithDependentTypes(entityTypes ...string) CachingOption {
	return func(o *cachingOptions) {
		o.dependents = append(o.dependents, entityTypes...)
	}
}

// WithPageGenerations shares page generation counters with other pipelines on the same cache.
func WithPageGenerations(g *PageGenerations) CachingOption {
	return func(o *cachingOptions) {
		o.generations = g
	}
}

// NewCachingDecorator wraps next with a read-through cache.
func NewCachingDecorator[T Entity[T]](
	next Repository[T],
	entityType string,
	fingerprinter Fingerprinter,
	store cache.Cache,
	opts ...CachingOption,
) Repository[T] {
	options := cachingOptions{metrics: metrics.NewNoOpBusinessMetrics()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.generations == nil {
		options.generations = NewPageGenerations()
	}
	return &cachingDecorator[T]{
		next:          next,
		entityType:    entityType,
		fingerprinter: fingerprinter,
		cache:         store,
		metrics:       options.metrics,
		dependents:    options.dependents,
		generations:   options.generations,
	}
}

func (d *cachingDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	created, err := d.next.Create(ctx, entity)
	if err == nil {
		d.purgePages()
	}
	return created, err
}

func (d *cachingDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T

	fingerprint, err := d.fingerprinter.Fingerprint(ctx, id)
	if err != nil {
		return zero, err
	}
	key := cache.GenerateCacheKey(d.entityType, id, fingerprint)

	if cached, ok := d.lookup(ctx, OpFindByID, key); ok {
		if entity, ok := cached.(T); ok {
			return entity.Clone(), nil
		}
	}

	value, err, _ := d.group.Do(key, func() (any, error) {
		entity, err := d.next.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		d.cache.Set(key, entity.Clone())
		return entity, nil
	})
	if err != nil {
		return zero, err
	}
	return value.(T).Clone(), nil
}

func (d *cachingDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	key := cache.GenerateOwnerPageCacheKey(d.entityType, ownerID, params)
	return d.page(ctx, OpFindByOwner, key, func() (*pagination.Page[T], error) {
		return d.next.FindByOwner(ctx, ownerID, params)
	})
}

func (d *cachingDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	key := cache.GeneratePageCacheKey(d.entityType, params)
	return d.page(ctx, OpFindAll, key, func() (*pagination.Page[T], error) {
		return d.next.FindAll(ctx, params)
	})
}

func (d *cachingDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	updated, err := d.next.Update(ctx, entity)
	if err == nil {
		d.purgePages()
	}
	return updated, err
}

func (d *cachingDecorator[T]) Delete(ctx context.Context, id int64) error {
	err := d.next.Delete(ctx, id)
	if err == nil {
		d.purgePages()
	}
	return err
}

func (d *cachingDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	n, err := d.next.BulkDelete(ctx, ids)
	if err == nil {
		d.purgePages()
	}
	return n, err
}

func (d *cachingDecorator[T]) page(
	ctx context.Context,
	operation, key string,
	load func() (*pagination.Page[T], error),
) (*pagination.Page[T], error) {
	if cached, ok := d.lookup(ctx, operation, key); ok {
		if page, ok := cached.(*pagination.Page[T]); ok {
			return clonePage(page), nil
		}
	}

	// Callers arriving after a purge must not join a load started before it.
	generation := d.generations.Current(d.entityType)
	flightKey := fmt.Sprintf("%s@%d", key, generation)

	value, err, _ := d.group.Do(flightKey, func() (any, error) {
		page, err := load()
		if err != nil {
			return nil, err
		}
		d.storePage(key, generation, page)
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePage(value.(*pagination.Page[T])), nil
}

func (d *cachingDecorator[T]) lookup(ctx context.Context, operation, key string) (any, bool) {
	value, ok := d.cache.Get(key)
	status := "miss"
	if ok {
		status = "hit"
	}
	d.metrics.RecordOperation(ctx, "cache", fmt.Sprintf("%s_%s", d.entityType, operation), status)
	return value, ok
}

// storePage caches page unless a purge ran since generation was read. The second check
// covers a purge landing between the first check and the Set.
func (d *cachingDecorator[T]) storePage(key string, generation uint64, page *pagination.Page[T]) {
	if d.generations.Current(d.entityType) != generation {
		return
	}
	d.cache.Set(key, clonePage(page))
	if d.generations.Current(d.entityType) != generation {
		d.cache.Delete(key)
	}
}

func (d *cachingDecorator[T]) purgePages() {
	entityTypes := append([]string{d.entityType}, d.dependents...)
	d.generations.Bump(entityTypes...)
	for _, entityType := range entityTypes {
		d.cache.DeletePrefix(cache.PagePrefix(entityType))
		d.cache.DeletePrefix(entityType + ":owner:")
	}
}
