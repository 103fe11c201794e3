package importer

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/hassanhitleap1/bagisto-karaz/internal/catalog"
	"github.com/hassanhitleap1/bagisto-karaz/internal/events"
	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/shopify"
)

const (
	// minPagesFloor is the number of pages that must have been processed
	// before an empty or failed page is allowed to end the run. Early feed
	// hiccups retry instead of terminating.
	minPagesFloor = 3

	// politenessDelay spaces consecutive page fetches.
	politenessDelay = 2 * time.Second

	// retryWait is the pause before re-fetching a failed page below the
	// floor.
	retryWait = 5 * time.Second
)

// SourceClient is the page-fetching side of the pipeline.
type SourceClient interface {
	FetchPage(ctx context.Context, page int) ([]shopify.Product, error)
	PerPage() int
}

// ProductImporter assembles one source product into the catalog.
type ProductImporter interface {
	Import(ctx context.Context, src *shopify.Product) catalog.Outcome
}

type Options struct {
	StartPage int // first page to fetch, default 1
	MaxPages  int // 0 means unbounded
}

type Stats struct {
	Pages    int
	Imported int
	Skipped  int
	Failed   int
}

// Driver walks the feed page by page, strictly in order and single-threaded:
// the resolver's caches and the one-transaction-per-product discipline
// depend on in-process sequential execution.
type Driver struct {
	client    SourceClient
	assembler ProductImporter
	publisher *events.Publisher
	limiter   *rate.Limiter
	retryWait time.Duration
	logger    *logger.Logger
}

func NewDriver(client SourceClient, assembler ProductImporter, publisher *events.Publisher, logger *logger.Logger) *Driver {
	return &Driver{
		client:    client,
		assembler: assembler,
		publisher: publisher,
		limiter:   rate.NewLimiter(rate.Every(politenessDelay), 1),
		retryWait: retryWait,
		logger:    logger,
	}
}

type action int

const (
	actionRetry action = iota
	actionAdvance
	actionStop
)

// decide picks the driver's next move after one fetch attempt.
// pagesProcessed already includes the page just fetched when the fetch
// succeeded.
func decide(fetchFailed bool, productCount, perPage, pagesProcessed, maxPages int) action {
	if fetchFailed {
		if pagesProcessed < minPagesFloor {
			return actionRetry
		}
		return actionStop
	}

	if maxPages > 0 && pagesProcessed >= maxPages {
		return actionStop
	}
	if productCount == 0 {
		if pagesProcessed < minPagesFloor {
			return actionAdvance
		}
		return actionStop
	}
	if productCount < perPage && pagesProcessed >= minPagesFloor {
		return actionStop
	}
	return actionAdvance
}

// Run drives the import until a terminal condition. Per-product failures are
// counted, never fatal; the returned error is only ever a cancelled context.
func (d *Driver) Run(ctx context.Context, opts Options) (Stats, error) {
	page := opts.StartPage
	if page <= 0 {
		page = 1
	}

	var stats Stats
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		products, err := d.client.FetchPage(ctx, page)
		if err != nil {
			d.logger.Warn("page %d fetch failed: %v", page, err)
			if decide(true, 0, d.client.PerPage(), stats.Pages, opts.MaxPages) == actionStop {
				return stats, nil
			}
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(d.retryWait):
			}
			continue
		}

		stats.Pages++
		if len(products) > 0 {
			d.logger.Info("processing page %d (%d products)", page, len(products))
			for i := range products {
				d.process(ctx, &products[i], &stats)
			}
		} else {
			d.logger.Info("page %d is empty", page)
		}

		if decide(false, len(products), d.client.PerPage(), stats.Pages, opts.MaxPages) == actionStop {
			return stats, nil
		}
		page++
	}
}

func (d *Driver) process(ctx context.Context, src *shopify.Product, stats *Stats) {
	outcome := d.assembler.Import(ctx, src)
	switch outcome.Status {
	case catalog.StatusImported:
		stats.Imported++
		d.publisher.Publish(ctx, "product.imported", outcome.ProductID, map[string]interface{}{
			"sku": outcome.SKU,
		})
	case catalog.StatusSkipped:
		stats.Skipped++
	case catalog.StatusFailed:
		stats.Failed++
		d.publisher.Publish(ctx, "product.failed", outcome.ProductID, map[string]interface{}{
			"sku":   outcome.SKU,
			"error": outcome.Err.Error(),
		})
	}
}
