package services

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/query"
)

// ListResult is one page of a list together with the table-wide counters.
type ListResult[T any] struct {
	Items          []T
	TotalCount     int64
	LastMonthCount int64
}

type counter interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// withCounts attaches totalCount and lastMonthCount to items. Both counts
// ignore the list filters.
func withCounts[T any](ctx context.Context, items []T, c counter, now time.Time) (*ListResult[T], error) {
	total, err := c.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}
	recent, err := c.CountCreatedSince(ctx, query.LastMonthCutoff(now))
	if err != nil {
		return nil, fmt.Errorf("failed to count last month: %w", err)
	}
	return &ListResult[T]{
		Items:          items,
		TotalCount:     total,
		LastMonthCount: recent,
	}, nil
}
