// Package pagination walks opaque-cursor listing endpoints.
package pagination

import "context"

// Page is one listing response. An empty NextCursor ends the collection.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// ListFunc fetches the page addressed by cursor; the first call receives "".
type ListFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Collect calls list until the collection is exhausted or at least max items have
// been gathered. A max of zero or less means no cap. Items of the last page are kept
// even when they overshoot max; callers truncate if they need an exact bound.
func Collect[T any](ctx context.Context, list ListFunc[T], max int) ([]T, error) {
	var (
		items  []T
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := list(ctx, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.NextCursor == "" {
			return items, nil
		}
		if max > 0 && len(items) >= max {
			return items, nil
		}
		cursor = page.NextCursor
	}
}

// Map converts a page of upstream items, keeping the cursor.
func Map[S, T any](page Page[S], convert func(S) T) Page[T] {
	out := Page[T]{
		Items:      make([]T, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, convert(item))
	}
	return out
}
