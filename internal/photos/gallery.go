package photos

import (
	"container/list"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/nano-gallery/internal/models"
)

// GalleryOptions tunes a Gallery
type GalleryOptions struct {
	PerPage    int
	Order      string
	CacheTTL   time.Duration
	CacheLimit int
}

// Gallery serves pages of photos. It never fails: when the source is
// missing or errors, it returns placeholders flagged Degraded.
type Gallery struct {
	source Source
	opts   GalleryOptions
	cache  *pageCache
	logger *slog.Logger
}

// NewGallery creates a Gallery. A nil source serves placeholders only.
func NewGallery(source Source, opts GalleryOptions, logger *slog.Logger) *Gallery {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Order == "" {
		opts.Order = DefaultOrder
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheLimit <= 0 {
		opts.CacheLimit = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gallery{
		source: source,
		opts:   opts,
		cache:  newPageCache(opts.CacheLimit, opts.CacheTTL),
		logger: logger,
	}
}

// Page returns one page of the listing, or of a search when query is set.
// A perPage of zero uses the configured default.
func (g *Gallery) Page(ctx context.Context, query string, page, perPage int) models.PhotoPage {
	if perPage <= 0 {
		perPage = g.opts.PerPage
	}
	params := ListParams{Page: page, PerPage: perPage, Order: g.opts.Order}.normalized()
	query = strings.TrimSpace(query)

	if g.source == nil {
		return Placeholders(params.Page, params.PerPage)
	}

	key := cacheKey{query: query, page: params.Page, perPage: params.PerPage, order: params.Order}
	if cached, ok := g.cache.get(key); ok {
		return cached
	}

	var (
		result models.PhotoPage
		err    error
	)
	if query != "" {
		result, err = g.source.Search(ctx, SearchParams{Query: query, ListParams: params})
	} else {
		result, err = g.source.List(ctx, params)
	}
	if err != nil {
		g.logger.Warn("photo source unavailable, serving placeholders", "page", params.Page, "query", query, "error", err)
		return Placeholders(params.Page, params.PerPage)
	}

	g.cache.put(key, result)
	return result
}

type cacheKey struct {
	query   string
	page    int
	perPage int
	order   string
}

type cacheEntry struct {
	key     cacheKey
	page    models.PhotoPage
	expires time.Time
}

// pageCache is a small LRU with expiry.
type pageCache struct {
	mu      sync.Mutex
	limit   int
	ttl     time.Duration
	order   *list.List
	entries map[cacheKey]*list.Element
	now     func() time.Time
}

func newPageCache(limit int, ttl time.Duration) *pageCache {
	return &pageCache{
		limit:   limit,
		ttl:     ttl,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
		now:     time.Now,
	}
}

func (c *pageCache) get(k cacheKey) (models.PhotoPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[k]
	if !ok {
		return models.PhotoPage{}, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().After(entry.expires) {
		c.order.Remove(el)
		delete(c.entries, k)
		return models.PhotoPage{}, false
	}
	c.order.MoveToFront(el)
	return entry.page, true
}

func (c *pageCache) put(k cacheKey, page models.PhotoPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[k]; ok {
		el.Value = &cacheEntry{key: k, page: page, expires: c.now().Add(c.ttl)}
		c.order.MoveToFront(el)
		return
	}
	c.entries[k] = c.order.PushFront(&cacheEntry{key: k, page: page, expires: c.now().Add(c.ttl)})
	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
