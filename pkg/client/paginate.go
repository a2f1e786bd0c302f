package client

import (
	"context"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// DefaultPageSize is used when a query does not specify one.
const DefaultPageSize = 10

// pageEnvelope carries the pagination fields common to list responses.
// Page-number responses use hasNextPage (and count in reverse mode);
// cursor responses use nextCursor.
type pageEnvelope struct {
	Count       int    `json:"count"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor"`
}

// PageQuery describes a paginated listing request.
type PageQuery struct {
	Endpoint   string
	ResultsKey string            // key of the results array in the response
	Params     map[string]string // base params, preserved across pages
	Limit      int               // total result cap; 0 = unlimited
	PageSize   int
	Reverse    bool
}

// PageIterator streams results from a page-number paginated endpoint as a
// lazy, single-pass sequence of raw JSON objects.
//
// In reverse mode the total page count is snapshotted from one probe request
// and never refreshed; listings added concurrently may be skipped or
// repeated.
type PageIterator struct {
	client *Client
	query  PageQuery

	page    int
	started bool
	hasNext bool
	buf     []json.RawMessage
	yielded int
	item    json.RawMessage
	err     error
	done    bool
}

// Pages creates an iterator over a page-number paginated endpoint.
func (c *Client) Pages(query PageQuery) *PageIterator {
	if query.PageSize == 0 {
		query.PageSize = DefaultPageSize
	}
	return &PageIterator{client: c, query: query}
}

// Next advances to the next result, fetching pages on demand. It returns
// false when the sequence is exhausted or an error occurred; check Err
// afterwards.
func (it *PageIterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}

	for {
		if it.query.Limit > 0 && it.yielded >= it.query.Limit {
			it.done = true
			return false
		}

		if len(it.buf) > 0 {
			it.item = it.buf[0]
			it.buf = it.buf[1:]
			it.yielded++
			return true
		}

		ok := it.fetch(ctx)
		if !ok {
			it.done = true
			return false
		}
	}
}

// Item returns the current result.
func (it *PageIterator) Item() json.RawMessage { return it.item }

// Err returns the first error encountered while iterating.
func (it *PageIterator) Err() error { return it.err }

// fetch loads the next page into the buffer. Returns false when there are
// no more pages or on error.
func (it *PageIterator) fetch(ctx context.Context) bool {
	if !it.started {
		it.started = true
		if it.query.Reverse {
			ok := it.startReverse(ctx)
			if !ok {
				return false
			}
		} else {
			it.page = 1
			it.hasNext = true
		}
	} else {
		if !it.hasNext {
			return false
		}
		if it.query.Reverse {
			it.page--
		} else {
			it.page++
		}
	}

	if it.query.Reverse && it.page < 1 {
		return false
	}

	envelope, results, err := it.getPage(ctx, it.page)
	if err != nil {
		it.err = err
		return false
	}

	if it.query.Reverse {
		reverse(results)
		it.hasNext = it.page > 1
	} else {
		it.hasNext = envelope.HasNextPage
	}

	it.buf = results
	if len(results) == 0 {
		return it.hasNext
	}
	return true
}

// startReverse probes page 1 for the total count and positions the iterator
// on the last page.
func (it *PageIterator) startReverse(ctx context.Context) bool {
	envelope, _, err := it.getPage(ctx, 1)
	if err != nil {
		it.err = err
		return false
	}

	if envelope.Count == 0 {
		return false
	}

	it.page = int(math.Ceil(float64(envelope.Count) / float64(it.query.PageSize)))
	it.hasNext = true
	return true
}

func (it *PageIterator) getPage(ctx context.Context, page int) (*pageEnvelope, []json.RawMessage, error) {
	params := make(map[string]string, len(it.query.Params)+2)
	for key, value := range it.query.Params {
		params[key] = value
	}
	params["pageSize"] = strconv.Itoa(it.query.PageSize)
	params["pageNumber"] = strconv.Itoa(page)

	response, err := it.client.Get(ctx, it.query.Endpoint, params)
	if err != nil {
		return nil, nil, err
	}

	return decodePage(response.Data, it.query.ResultsKey)
}

// CursorIterator streams results from an opaque-cursor paginated endpoint.
type CursorIterator struct {
	client *Client
	query  PageQuery

	cursor  string
	started bool
	buf     []json.RawMessage
	yielded int
	item    json.RawMessage
	err     error
	done    bool
}

// Cursor creates an iterator over a cursor-paginated endpoint.
func (c *Client) Cursor(query PageQuery) *CursorIterator {
	if query.PageSize == 0 {
		query.PageSize = DefaultPageSize
	}
	return &CursorIterator{client: c, query: query}
}

// Next advances to the next result, fetching pages on demand.
func (it *CursorIterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}

	for {
		if it.query.Limit > 0 && it.yielded >= it.query.Limit {
			it.done = true
			return false
		}

		if len(it.buf) > 0 {
			it.item = it.buf[0]
			it.buf = it.buf[1:]
			it.yielded++
			return true
		}

		if it.started && it.cursor == "" {
			it.done = true
			return false
		}

		ok := it.fetch(ctx)
		if !ok {
			it.done = true
			return false
		}
	}
}

// Item returns the current result.
func (it *CursorIterator) Item() json.RawMessage { return it.item }

// Err returns the first error encountered while iterating.
func (it *CursorIterator) Err() error { return it.err }

func (it *CursorIterator) fetch(ctx context.Context) bool {
	params := make(map[string]string, len(it.query.Params)+2)
	for key, value := range it.query.Params {
		params[key] = value
	}
	params["pageSize"] = strconv.Itoa(it.query.PageSize)
	if it.cursor != "" {
		params["cursor"] = it.cursor
	}

	response, err := it.client.Get(ctx, it.query.Endpoint, params)
	if err != nil {
		it.err = err
		return false
	}

	envelope, results, err := decodePage(response.Data, it.query.ResultsKey)
	if err != nil {
		it.err = err
		return false
	}

	it.started = true
	it.cursor = envelope.NextCursor
	it.buf = results

	if len(results) == 0 {
		return it.cursor != ""
	}
	return true
}

func decodePage(data json.RawMessage, resultsKey string) (*pageEnvelope, []json.RawMessage, error) {
	var envelope pageEnvelope
	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal page envelope: %w", err)
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(data, &fields)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal page: %w", err)
	}

	var results []json.RawMessage
	if raw, ok := fields[resultsKey]; ok {
		err = json.Unmarshal(raw, &results)
		if err != nil {
			return nil, nil, fmt.Errorf("unmarshal %s: %w", resultsKey, err)
		}
	}

	return &envelope, results, nil
}

func reverse(items []json.RawMessage) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
