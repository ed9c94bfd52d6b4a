package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/jsamuelsen/unbelievaboat-go/internal/rest"
)

// maxPageSize is the largest page the API serves per request.
const maxPageSize = 1000

// fetchPages drives the shared pagination protocol behind the leaderboard,
// item-store, and inventory listings. It returns a lazy sequence: each range
// over it opens a fresh iteration, requests are issued one page at a time as
// the caller advances, and iteration stops at the limit (mid-page if needed)
// or when the server reports no further pages. A limit <= 0 means no limit.
//
// The listings differ only in endpoint path, sort key, and the key of the
// element array in the page envelope ("users" or "items"); everything else
// is identical by construction.
func fetchPages[T any](
	ctx context.Context,
	client *rest.Client,
	path string,
	elementsKey string,
	sortKey string,
	limit int,
	decode func(json.RawMessage) (T, error),
) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		page := 1
		yielded := 0

		for limit <= 0 || yielded < limit {
			size := maxPageSize
			if limit > 0 && limit-yielded < maxPageSize {
				size = limit - yielded
			}

			query := url.Values{
				"limit": {strconv.Itoa(size)},
				"sort":  {sortKey},
				"page":  {strconv.Itoa(page)},
			}

			resp, err := client.Get(ctx, path, query)
			if err != nil {
				yield(zero, err)
				return
			}

			if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
				yield(zero, err)
				return
			}

			totalPages, elements, err := decodePage(resp.Body, elementsKey)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, raw := range elements {
				v, err := decode(raw)
				if err != nil {
					yield(zero, err)
					return
				}

				if !yield(v, nil) {
					return
				}

				yielded++
				if limit > 0 && yielded >= limit {
					return
				}
			}

			page++
			if page > totalPages {
				return
			}
		}
	}
}

// decodePage splits a page envelope into the server-reported total page
// count and the raw elements under the given key.
func decodePage(body []byte, elementsKey string) (int, []json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, nil, fmt.Errorf("%w: page envelope: %v", ErrParse, err)
	}

	var totalPages flexInt
	if raw, ok := envelope["total_pages"]; ok {
		if err := json.Unmarshal(raw, &totalPages); err != nil {
			return 0, nil, fmt.Errorf("decoding total_pages: %w", err)
		}
	}

	var elements []json.RawMessage
	if raw, ok := envelope[elementsKey]; ok {
		if err := json.Unmarshal(raw, &elements); err != nil {
			return 0, nil, fmt.Errorf("%w: decoding %s array: %v", ErrParse, elementsKey, err)
		}
	}

	return int(totalPages), elements, nil
}

// Collect drains a listing sequence into a slice, stopping at the first
// error. Convenient when the whole leaderboard, store, or inventory is
// wanted at once:
//
//	users, err := unb.Collect(guild.Leaderboard(ctx, "", 0))
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T

	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}

	return out, nil
}
