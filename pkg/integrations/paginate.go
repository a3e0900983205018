package integrations

import (
	"context"
	"time"
)

// pageDelay is the courtesy pause between pages of a cursor-paginated
// listing, keeping bulk drains under vendor rate limits.
const pageDelay = 200 * time.Millisecond

// CursorPage is one page of a cursor-paginated listing. An empty NextCursor
// terminates the drain.
type CursorPage struct {
	Items      []map[string]any
	NextCursor string
}

// Paginate drains a cursor-paginated endpoint, accumulating items until the
// cursor comes back empty or limit items have been collected (limit <= 0
// means unbounded). The first call passes an empty cursor. A courtesy delay
// separates page fetches; there is no delay after the final page.
//
// sleep is injectable for tests; pass nil for the real clock.
func Paginate(ctx context.Context, limit int, sleep func(time.Duration), fetch func(ctx context.Context, cursor string) (CursorPage, error)) ([]map[string]any, error) {
	var items []map[string]any
	cursor := ""

	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if page.NextCursor == "" {
			return items, nil
		}
		cursor = page.NextCursor

		if sleep != nil {
			sleep(pageDelay)
			continue
		}
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		case <-time.After(pageDelay):
		}
	}
}
