package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
)

// CachedCatalog answers from the store when it can and falls through to
// the upstream catalog otherwise, storing what it fetched. Failures are
// never cached.
type CachedCatalog struct {
	upstream Catalog
	store    *Store
	maxAge   time.Duration
	log      *slog.Logger
}

// NewCachedCatalog wraps upstream. A zero maxAge keeps entries forever.
func NewCachedCatalog(upstream Catalog, store *Store, maxAge time.Duration) *CachedCatalog {
	return &CachedCatalog{
		upstream: upstream,
		store:    store,
		maxAge:   maxAge,
		log:      logging.New("cache"),
	}
}

// SearchKey is the cache key of a search
func SearchKey(query string, t model.MediaType) string {
	return query + ":" + string(t)
}

// UserKey is the cache key of a user list
func UserKey(username string) string {
	return strings.ToLower(username)
}

// lookup decodes a fresh cache entry into out
func (c *CachedCatalog) lookup(ctx context.Context, table string, key any, out any) bool {
	content, stored, ok, err := c.store.Get(ctx, table, key)
	if err != nil {
		c.log.Warn("cache read failed", "table", table, "key", key, "error", err)
		return false
	}
	if !ok || (c.maxAge > 0 && time.Since(stored) > c.maxAge) {
		metrics.CacheMisses.WithLabelValues(table).Inc()
		return false
	}
	if err := json.Unmarshal(content, out); err != nil {
		c.log.Warn("discarding corrupt cache entry", "table", table, "key", key, "error", err)
		metrics.CacheMisses.WithLabelValues(table).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(table).Inc()
	logging.Trace("cache hit", "table", table, "key", key)
	return true
}

func (c *CachedCatalog) save(ctx context.Context, table string, key any, v any) {
	content, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", "table", table, "key", key, "error", err)
		return
	}
	if err := c.store.Put(ctx, table, key, content); err != nil {
		c.log.Warn("cache write failed", "table", table, "key", key, "error", err)
	}
}

func (c *CachedCatalog) FetchMedia(ctx context.Context, id int64) (*model.Media, error) {
	var cached model.Media
	if c.lookup(ctx, TableMedia, id, &cached) {
		return &cached, nil
	}

	m, err := c.upstream.FetchMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, TableMedia, id, m)
	return m, nil
}

func (c *CachedCatalog) SearchMedia(ctx context.Context, query string, t model.MediaType) (*model.SearchPage, error) {
	if _, err := model.ParseMediaType(string(t)); err != nil {
		return nil, ErrInvalidMediaType
	}
	key := SearchKey(query, t)

	var cached model.SearchPage
	if c.lookup(ctx, TableSearches, key, &cached) {
		return &cached, nil
	}

	page, err := c.upstream.SearchMedia(ctx, query, t)
	if err != nil {
		return nil, err
	}
	c.save(ctx, TableSearches, key, page)
	return page, nil
}

func (c *CachedCatalog) FetchUserList(ctx context.Context, username string) (*model.MediaListCollection, error) {
	key := UserKey(username)

	var cached model.MediaListCollection
	if c.lookup(ctx, TableUsers, key, &cached) {
		return &cached, nil
	}

	list, err := c.upstream.FetchUserList(ctx, username)
	if err != nil {
		return nil, err
	}
	c.save(ctx, TableUsers, key, list)
	return list, nil
}
