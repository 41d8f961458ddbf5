package invoice

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"invoicer/internal/cache"
	"invoicer/internal/core"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Cache memoizes rendered invoices. Entries are keyed by bill id, a
// fingerprint of the bill contents and the format, so an edited bill never
// hits a stale entry. Concurrent renders of the same key share one call.
type Cache struct {
	lru      *cache.LRUCache[[]byte]
	group    singleflight.Group
	business Business
	logger   *slog.Logger
	render   func(ctx context.Context, f Format, doc Document) ([]byte, error)
}

func NewCache(size int, ttl time.Duration, biz Business, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		lru:      cache.NewLRUCache[[]byte](size, ttl),
		business: biz,
		logger:   logger,
		render:   render,
	}
}

func render(ctx context.Context, f Format, doc Document) ([]byte, error) {
	switch f {
	case FormatPDF:
		return RenderPDF(ctx, doc)
	case FormatHTML:
		var buf bytes.Buffer
		if err := RenderHTML(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown invoice format %q", f)
}

func (c *Cache) PDF(ctx context.Context, bill core.Bill) ([]byte, error) {
	return c.get(ctx, FormatPDF, bill)
}

func (c *Cache) HTML(ctx context.Context, bill core.Bill) ([]byte, error) {
	return c.get(ctx, FormatHTML, bill)
}

func (c *Cache) get(ctx context.Context, f Format, bill core.Bill) ([]byte, error) {
	key, err := cacheKey(f, bill)
	if err != nil {
		return nil, err
	}
	if data, ok := c.lru.Get(key); ok {
		return data, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		start := time.Now()
		data, err := c.render(ctx, f, NewDocument(bill, c.business))
		if err != nil {
			return nil, err
		}
		c.lru.Set(key, data)
		c.logger.DebugContext(ctx, "Rendered invoice",
			"bill_id", bill.ID,
			"format", f,
			"bytes", len(data),
			"duration_ms", time.Since(start).Milliseconds())
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Shared in-flight invoice render", "bill_id", bill.ID, "format", f)
	}
	return v.([]byte), nil
}

// Invalidate drops every cached rendering of billID.
func (c *Cache) Invalidate(billID string) int {
	return c.lru.DeletePrefix(billID + ":")
}

// PublishBillEvent invalidates renderings of updated or deleted bills, so
// the cache can be registered as a bill event publisher.
func (c *Cache) PublishBillEvent(_ context.Context, ev core.BillEvent) error {
	if ev.Type == core.BillUpdated || ev.Type == core.BillDeleted {
		c.Invalidate(ev.BillID)
	}
	return nil
}

// CleanExpired implements cache.Cleaner.
func (c *Cache) CleanExpired() int {
	return c.lru.CleanExpired()
}

func (c *Cache) Size() int {
	return c.lru.Size()
}

func cacheKey(f Format, bill core.Bill) (string, error) {
	data, err := json.Marshal(bill)
	if err != nil {
		return "", fmt.Errorf("fingerprint bill: %w", err)
	}
	sum := sha256.Sum256(data)
	return bill.ID + ":" + hex.EncodeToString(sum[:8]) + ":" + string(f), nil
}
