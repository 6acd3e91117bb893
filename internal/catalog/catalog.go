// Package catalog is the read side of the video artifact: it loads the CSV,
// filters it by category and keeps the result for a short time.
package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"sermonfeed/internal/video"
	"sermonfeed/internal/videocsv"
)

// Result is the outcome of a Load. When Err is set, Videos holds a single
// fallback record describing it.
type Result struct {
	Videos []video.Record
	Err    error
	Cached bool
}

// Catalog loads categories of videos from a Source through a Cache.
type Catalog struct {
	src    Source
	cache  *Cache
	logger *log.Logger
	group  singleflight.Group
}

func New(src Source, cache *Cache, logger *log.Logger) *Catalog {
	if cache == nil {
		cache = NewCache(DefaultTTL, nil)
	}
	return &Catalog{src: src, cache: cache, logger: logger}
}

// Load returns the videos of the given type, newest first. An empty type
// returns every record. Load never fails outright: on error the result
// carries a fallback record and the error.
func (c *Catalog) Load(ctx context.Context, typ video.Type) Result {
	if videos, ok := c.cache.Get(typ); ok {
		return Result{Videos: videos, Cached: true}
	}

	v, err, shared := c.group.Do(string(typ), func() (any, error) {
		gen := c.cache.Generation()
		raw, err := c.src.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		videos, err := videocsv.Decode(string(raw), typ)
		if err != nil {
			return nil, err
		}
		if !c.cache.StoreIfCurrent(typ, videos, gen) {
			c.logger.Debug("cache invalidated during load, not storing", "type", typ)
		}
		return videos, nil
	})
	if err != nil {
		c.logger.Error("failed to load videos", "type", typ, "err", err)
		title := fmt.Sprintf("Unable to load videos: %v", err)
		return Result{
			Videos: []video.Record{video.Fallback(title, c.cache.Now())},
			Err:    err,
		}
	}
	if shared {
		c.logger.Debug("joined in-flight load", "type", typ)
	}
	return Result{Videos: slices.Clone(v.([]video.Record))}
}

// Invalidate forgets every cached category. Loads already in flight still
// answer their callers but are not cached, and later Loads do not join them.
func (c *Catalog) Invalidate() {
	c.cache.Clear()
	for _, typ := range []video.Type{"", video.TypeSermon, video.TypeLive} {
		c.group.Forget(string(typ))
	}
}
