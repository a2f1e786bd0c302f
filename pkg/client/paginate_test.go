package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	json "github.com/goccy/go-json"
)

type pageRecord struct {
	ID string `json:"id"`
}

func collectIDs(t *testing.T, it interface {
	Next(context.Context) bool
	Item() json.RawMessage
	Err() error
}) []string {
	t.Helper()

	var ids []string
	for it.Next(context.Background()) {
		var record pageRecord
		if err := json.Unmarshal(it.Item(), &record); err != nil {
			t.Fatalf("decode item: %v", err)
		}
		ids = append(ids, record.ID)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	return ids
}

func pageBody(ids []string, count int, hasNext bool) []byte {
	records := make([]pageRecord, len(ids))
	for i, id := range ids {
		records[i] = pageRecord{ID: id}
	}
	body, _ := json.Marshal(map[string]any{
		"count":       count,
		"hasNextPage": hasNext,
		"listings":    records,
	})
	return body
}

func TestPageIterator_Forward(t *testing.T) {
	pages := map[int][]string{
		1: {"a", "b"},
		2: {"c", "d"},
		3: {"e"},
	}
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/selling/listings", func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
		if size := r.URL.Query().Get("pageSize"); size != "2" {
			t.Errorf("expected pageSize=2, got %q", size)
		}
		w.Write(pageBody(pages[page], 5, page < 3))
	})

	c := newTestClient(t, mux)
	it := c.Pages(PageQuery{
		Endpoint:   "/selling/listings",
		ResultsKey: "listings",
		PageSize:   2,
	})

	ids := collectIDs(t, it)
	want := []string{"a", "b", "c", "d", "e"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
	if requests != 3 {
		t.Errorf("expected 3 page requests, got %d", requests)
	}
}

func TestPageIterator_LimitStopsMidPage(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/selling/listings", func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pageBody([]string{"a", "b", "c"}, 100, true))
	})

	c := newTestClient(t, mux)
	it := c.Pages(PageQuery{
		Endpoint:   "/selling/listings",
		ResultsKey: "listings",
		PageSize:   3,
		Limit:      2,
	})

	ids := collectIDs(t, it)
	if len(ids) != 2 {
		t.Errorf("expected 2 results, got %v", ids)
	}
	if requests != 1 {
		t.Errorf("expected a single request, got %d", requests)
	}
}

func TestPageIterator_Reverse(t *testing.T) {
	// Five records across pages of two; reverse iteration walks pages
	// 3, 2, 1 and reverses each page, yielding e..a.
	pages := map[int][]string{
		1: {"a", "b"},
		2: {"c", "d"},
		3: {"e"},
	}
	var requested []int

	mux := http.NewServeMux()
	mux.HandleFunc("/selling/listings", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
		requested = append(requested, page)
		w.Write(pageBody(pages[page], 5, page < 3))
	})

	c := newTestClient(t, mux)
	it := c.Pages(PageQuery{
		Endpoint:   "/selling/listings",
		ResultsKey: "listings",
		PageSize:   2,
		Reverse:    true,
	})

	ids := collectIDs(t, it)
	want := []string{"e", "d", "c", "b", "a"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
	// Probe of page 1 for the count, then pages 3, 2, 1.
	wantPages := []int{1, 3, 2, 1}
	if fmt.Sprint(requested) != fmt.Sprint(wantPages) {
		t.Errorf("expected page requests %v, got %v", wantPages, requested)
	}
}

func TestPageIterator_ReverseEmpty(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/selling/listings", func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pageBody(nil, 0, false))
	})

	c := newTestClient(t, mux)
	it := c.Pages(PageQuery{
		Endpoint:   "/selling/listings",
		ResultsKey: "listings",
		PageSize:   2,
		Reverse:    true,
	})

	if it.Next(context.Background()) {
		t.Error("expected no results")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	// The count probe is the only request issued.
	if requests != 1 {
		t.Errorf("expected a single probe request, got %d", requests)
	}
}

func cursorBody(ids []string, next string) []byte {
	records := make([]pageRecord, len(ids))
	for i, id := range ids {
		records[i] = pageRecord{ID: id}
	}
	body, _ := json.Marshal(map[string]any{
		"nextCursor": next,
		"operations": records,
	})
	return body
}

func TestCursorIterator(t *testing.T) {
	t.Run("follows-cursor", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/operations", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("cursor") {
			case "":
				w.Write(cursorBody([]string{"a", "b"}, "c2"))
			case "c2":
				w.Write(cursorBody([]string{"c"}, ""))
			default:
				t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
			}
		})

		c := newTestClient(t, mux)
		it := c.Cursor(PageQuery{
			Endpoint:   "/operations",
			ResultsKey: "operations",
			PageSize:   2,
		})

		ids := collectIDs(t, it)
		want := []string{"a", "b", "c"}
		if fmt.Sprint(ids) != fmt.Sprint(want) {
			t.Errorf("expected %v, got %v", want, ids)
		}
	})

	t.Run("empty-cursor-stops-after-first-page", func(t *testing.T) {
		requests := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/operations", func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write(cursorBody([]string{"a"}, ""))
		})

		c := newTestClient(t, mux)
		it := c.Cursor(PageQuery{
			Endpoint:   "/operations",
			ResultsKey: "operations",
			PageSize:   2,
		})

		ids := collectIDs(t, it)
		if len(ids) != 1 || ids[0] != "a" {
			t.Errorf("expected [a], got %v", ids)
		}
		if requests != 1 {
			t.Errorf("expected a single request, got %d", requests)
		}
	})

	t.Run("limit", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/operations", func(w http.ResponseWriter, r *http.Request) {
			w.Write(cursorBody([]string{"a", "b"}, "more"))
		})

		c := newTestClient(t, mux)
		it := c.Cursor(PageQuery{
			Endpoint:   "/operations",
			ResultsKey: "operations",
			PageSize:   2,
			Limit:      3,
		})

		ids := collectIDs(t, it)
		if len(ids) != 3 {
			t.Errorf("expected 3 results, got %v", ids)
		}
	})
}
