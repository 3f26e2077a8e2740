package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const DefaultPageSize int = 1000

type pagingConfig struct {
	pageSize int
}

type PagingOption func(*pagingConfig)

func PageSize(size int) PagingOption {
	return func(pc *pagingConfig) {
		if size > 0 {
			pc.pageSize = size
		}
	}
}

// GetPaged fetches every page of a paged endpoint. The first page is fetched
// before the remaining pages are requested concurrently, bounded by the
// client's connection limit. The result holds the combined elements of all
// pages, in page order, under pagedArrayKey together with their count.
func (c *SuiteAPIClient) GetPaged(ctx context.Context, endpoint, pagedArrayKey string, options ...PagingOption) (map[string]any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-paged",
		trace.WithAttributes(attribute.String(TraceAttributeEndpoint, endpoint)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result, err := c.paged(ctx, endpoint, pagedArrayKey, options, func(ctx context.Context, pageEndpoint string) (map[string]any, error) {
		return c.Get(ctx, pageEndpoint)
	})

	return result, err
}

// PostPaged is the POST equivalent of GetPaged. The same body is sent with
// every page request.
func (c *SuiteAPIClient) PostPaged(ctx context.Context, endpoint string, body any, pagedArrayKey string, options ...PagingOption) (map[string]any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "post-paged",
		trace.WithAttributes(attribute.String(TraceAttributeEndpoint, endpoint)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result, err := c.paged(ctx, endpoint, pagedArrayKey, options, func(ctx context.Context, pageEndpoint string) (map[string]any, error) {
		return c.Post(ctx, pageEndpoint, body)
	})

	return result, err
}

func (c *SuiteAPIClient) GetPagedAsync(ctx context.Context, endpoint, pagedArrayKey string, options ...PagingOption) *Future[map[string]any] {
	return async(ctx, func(ctx context.Context) (map[string]any, error) {
		return c.GetPaged(ctx, endpoint, pagedArrayKey, options...)
	})
}

func (c *SuiteAPIClient) PostPagedAsync(ctx context.Context, endpoint string, body any, pagedArrayKey string, options ...PagingOption) *Future[map[string]any] {
	return async(ctx, func(ctx context.Context) (map[string]any, error) {
		return c.PostPaged(ctx, endpoint, body, pagedArrayKey, options...)
	})
}

type pageFetcher func(ctx context.Context, pageEndpoint string) (map[string]any, error)

func (c *SuiteAPIClient) paged(ctx context.Context, endpoint, pagedArrayKey string, options []PagingOption, fetch pageFetcher) (map[string]any, error) {
	cfg := &pagingConfig{pageSize: DefaultPageSize}
	for _, option := range options {
		option(cfg)
	}

	first, err := fetch(ctx, addPaging(endpoint, 0, cfg.pageSize))
	if err != nil {
		return nil, err
	}

	pages := make([]map[string]any, remainingPages(totalCount(first), cfg.pageSize)+1)
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)

	for page := 1; page < len(pages); page++ {
		g.Go(func() error {
			result, err := fetch(gctx, addPaging(endpoint, page, cfg.pageSize))
			if err != nil {
				return err
			}
			pages[page] = result
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	elements := []any{}
	for _, p := range pages {
		if items, ok := p[pagedArrayKey].([]any); ok {
			elements = append(elements, items...)
		}
	}

	return map[string]any{
		"count":       len(elements),
		pagedArrayKey: elements,
	}, nil
}

// totalCount reads pageInfo.totalCount, assuming a single element if it is missing
func totalCount(page map[string]any) int {
	pageInfo, ok := page["pageInfo"].(map[string]any)
	if !ok {
		return 1
	}

	total, ok := pageInfo["totalCount"].(float64)
	if !ok {
		return 1
	}

	return int(total)
}

func remainingPages(total, pageSize int) int {
	remaining := total - min(pageSize, total)
	if remaining <= 0 {
		return 0
	}
	return (remaining + pageSize - 1) / pageSize
}

func addPaging(endpoint string, page, pageSize int) string {
	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%spage=%d&pageSize=%d", endpoint, separator, page, pageSize)
}
