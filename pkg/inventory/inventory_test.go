package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/api"
	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// fakeMarketplace is an in-memory marketplace: it serves a fixed listing set,
// accepts batch submissions and settles every item instantly unless neverDone
// holds the batches queued.
type fakeMarketplace struct {
	t *testing.T

	mu              sync.Mutex
	listings        []types.Listing
	listingRequests []url.Values
	marketData      map[string]types.MarketData // variant id -> snapshot

	batchSeq      int
	createResults map[string][]types.BatchCreateResult
	updateResults map[string][]types.BatchUpdateResult
	deleteResults map[string][]types.BatchDeleteResult

	failUpdates map[string]string // listing id -> error message
	failDeletes map[string]string
	neverDone   bool

	listingSeq int
}

func newFakeMarketplace(t *testing.T) *fakeMarketplace {
	return &fakeMarketplace{
		t:             t,
		marketData:    make(map[string]types.MarketData),
		createResults: make(map[string][]types.BatchCreateResult),
		updateResults: make(map[string][]types.BatchUpdateResult),
		deleteResults: make(map[string][]types.BatchDeleteResult),
		failUpdates:   make(map[string]string),
		failDeletes:   make(map[string]string),
	}
}

func (m *fakeMarketplace) submissions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchSeq
}

func (m *fakeMarketplace) newBatchID() string {
	m.batchSeq++
	return fmt.Sprintf("batch-%d", m.batchSeq)
}

func (m *fakeMarketplace) newListingID() string {
	m.listingSeq++
	return fmt.Sprintf("NEW-%d", m.listingSeq)
}

func (m *fakeMarketplace) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})

	mux.HandleFunc("/selling/listings", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.listingRequests = append(m.listingRequests, r.URL.Query())
		matched := m.matchListings(r.URL.Query())
		m.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":       len(matched),
			"hasNextPage": false,
			"listings":    matched,
		})
	})

	mux.HandleFunc("/selling/batch/create-listing", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []types.BatchCreateInput `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			m.t.Errorf("decode create batch: %v", err)
		}

		m.mu.Lock()
		batchID := m.newBatchID()
		var results []types.BatchCreateResult
		for _, input := range body.Items {
			for i := 0; i < input.Quantity; i++ {
				results = append(results, types.BatchCreateResult{
					ItemID:       m.newListingID() + "-item",
					Status:       types.BatchItemCompleted,
					ListingInput: input,
					Result:       &types.BatchItemOutcome{ListingID: m.newListingID()},
				})
			}
		}
		m.createResults[batchID] = results
		m.mu.Unlock()

		m.writeStatus(w, batchID, len(results))
	})
	mux.HandleFunc("/selling/batch/create-listing/", func(w http.ResponseWriter, r *http.Request) {
		m.serveBatch(w, r, "create-listing")
	})

	mux.HandleFunc("/selling/batch/update-listing", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []types.BatchUpdateInput `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			m.t.Errorf("decode update batch: %v", err)
		}

		m.mu.Lock()
		batchID := m.newBatchID()
		var results []types.BatchUpdateResult
		for _, input := range body.Items {
			result := types.BatchUpdateResult{
				ItemID:       input.ListingID + "-item",
				Status:       types.BatchItemCompleted,
				ListingInput: input,
			}
			if message, ok := m.failUpdates[input.ListingID]; ok {
				result.Status = types.BatchItemFailed
				result.Error = message
			}
			results = append(results, result)
		}
		m.updateResults[batchID] = results
		m.mu.Unlock()

		m.writeStatus(w, batchID, len(results))
	})
	mux.HandleFunc("/selling/batch/update-listing/", func(w http.ResponseWriter, r *http.Request) {
		m.serveBatch(w, r, "update-listing")
	})

	mux.HandleFunc("/selling/batch/delete-listing", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []types.BatchDeleteInput `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			m.t.Errorf("decode delete batch: %v", err)
		}

		m.mu.Lock()
		batchID := m.newBatchID()
		var results []types.BatchDeleteResult
		for _, input := range body.Items {
			result := types.BatchDeleteResult{
				ItemID:       input.ListingID + "-item",
				Status:       types.BatchItemCompleted,
				ListingInput: input,
			}
			if message, ok := m.failDeletes[input.ListingID]; ok {
				result.Status = types.BatchItemFailed
				result.Error = message
			}
			results = append(results, result)
		}
		m.deleteResults[batchID] = results
		m.mu.Unlock()

		m.writeStatus(w, batchID, len(results))
	})
	mux.HandleFunc("/selling/batch/delete-listing/", func(w http.ResponseWriter, r *http.Request) {
		m.serveBatch(w, r, "delete-listing")
	})

	mux.HandleFunc("/catalog/products/", func(w http.ResponseWriter, r *http.Request) {
		// .../variants/{variantId}/market-data
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 5 || parts[len(parts)-1] != "market-data" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		variantID := parts[len(parts)-2]

		m.mu.Lock()
		market, ok := m.marketData[variantID]
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(market)
	})

	return mux
}

func (m *fakeMarketplace) matchListings(params url.Values) []types.Listing {
	allowed := func(csv, value string) bool {
		if csv == "" {
			return true
		}
		for _, candidate := range strings.Split(csv, ",") {
			if candidate == value {
				return true
			}
		}
		return false
	}

	var matched []types.Listing
	for _, listing := range m.listings {
		if !allowed(params.Get("productIds"), listing.Product.ID) {
			continue
		}
		if !allowed(params.Get("variantIds"), listing.Variant.ID) {
			continue
		}
		matched = append(matched, listing)
	}
	return matched
}

func (m *fakeMarketplace) writeStatus(w http.ResponseWriter, batchID string, total int) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"batchId":    batchID,
		"status":     "QUEUED",
		"totalItems": total,
	})
}

// serveBatch handles GET {kind}/{batchId} and GET {kind}/{batchId}/items.
func (m *fakeMarketplace) serveBatch(w http.ResponseWriter, r *http.Request, kind string) {
	rest := strings.TrimPrefix(r.URL.Path, "/selling/batch/"+kind+"/")
	batchID := strings.TrimSuffix(rest, "/items")
	wantItems := strings.HasSuffix(rest, "/items")

	m.mu.Lock()
	defer m.mu.Unlock()

	statuses, payload := m.batchView(kind, batchID, r.URL.Query().Get("status"))
	if statuses == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if wantItems {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": payload})
		return
	}

	total := statuses[types.BatchItemCompleted] + statuses[types.BatchItemFailed] + statuses[types.BatchItemQueued]
	counts := map[string]int{
		"completed": statuses[types.BatchItemCompleted],
		"failed":    statuses[types.BatchItemFailed],
		"queued":    statuses[types.BatchItemQueued],
	}
	if m.neverDone {
		counts = map[string]int{"queued": total}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"batchId":      batchID,
		"status":       "IN_PROGRESS",
		"totalItems":   total,
		"itemStatuses": counts,
	})
}

// batchView returns the per-status counts and the item payload (filtered by
// status) of one batch, or nil when the batch is unknown.
func (m *fakeMarketplace) batchView(kind, batchID string, filter string) (map[types.BatchItemStatus]int, any) {
	statuses := make(map[types.BatchItemStatus]int)

	switch kind {
	case "create-listing":
		results, ok := m.createResults[batchID]
		if !ok {
			return nil, nil
		}
		var filtered []types.BatchCreateResult
		for _, result := range results {
			statuses[result.Status]++
			if filter == "" || string(result.Status) == filter {
				filtered = append(filtered, result)
			}
		}
		return statuses, filtered
	case "update-listing":
		results, ok := m.updateResults[batchID]
		if !ok {
			return nil, nil
		}
		var filtered []types.BatchUpdateResult
		for _, result := range results {
			statuses[result.Status]++
			if filter == "" || string(result.Status) == filter {
				filtered = append(filtered, result)
			}
		}
		return statuses, filtered
	default:
		results, ok := m.deleteResults[batchID]
		if !ok {
			return nil, nil
		}
		var filtered []types.BatchDeleteResult
		for _, result := range results {
			statuses[result.Status]++
			if filter == "" || string(result.Status) == filter {
				filtered = append(filtered, result)
			}
		}
		return statuses, filtered
	}
}

// newTestInventory wires a full client/api stack against the fake marketplace.
func newTestInventory(t *testing.T, fm *fakeMarketplace, batchTimeout time.Duration) *Inventory {
	t.Helper()

	server := httptest.NewServer(fm.mux())
	t.Cleanup(server.Close)

	c := client.New(&client.Config{
		BaseURL:           server.URL,
		APIKey:            "test-api-key",
		TokenURL:          server.URL + "/oauth/token",
		RequestInterval:   time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
		RetryTimeout:      time.Second,
		Logger:            zap.NewNop(),
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize client: %v", err)
	}
	t.Cleanup(c.Close)

	marketplace, err := api.New(c, zap.NewNop())
	if err != nil {
		t.Fatalf("create api: %v", err)
	}

	return New(&Config{
		API:          marketplace,
		Logger:       zap.NewNop(),
		Currency:     "EUR",
		BatchTimeout: batchTimeout,
	})
}

func queryItems(t *testing.T, inv *Inventory) []*ListedItem {
	t.Helper()
	items, err := inv.Items().Get(context.Background())
	if err != nil {
		t.Fatalf("query items: %v", err)
	}
	return items
}

func TestItemsQuery_ServerPushdown(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p2", "v2", "AA0000-001", "10", 90),
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	t.Run("id-constraints-pushed", func(t *testing.T) {
		items, err := inv.Items().
			FilterBy(Selection{ProductIDs: []string{"p1"}}).
			Get(context.Background())
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(items) != 1 || items[0].ProductID() != "p1" {
			t.Errorf("unexpected items %+v", items)
		}

		fm.mu.Lock()
		last := fm.listingRequests[len(fm.listingRequests)-1]
		fm.mu.Unlock()
		if last.Get("productIds") != "p1" {
			t.Errorf("expected productIds pushed to the server, got %q", last.Get("productIds"))
		}
		if last.Get("listingStatuses") != "ACTIVE" {
			t.Errorf("expected an active-only scan, got %q", last.Get("listingStatuses"))
		}
	})

	t.Run("style-constraint-filters-client-side", func(t *testing.T) {
		items, err := inv.Items().
			FilterBy(Selection{StyleIDs: []string{"AA0000-001"}}).
			Get(context.Background())
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(items) != 1 || items[0].StyleID() != "AA0000-001" {
			t.Errorf("unexpected items %+v", items)
		}

		fm.mu.Lock()
		last := fm.listingRequests[len(fm.listingRequests)-1]
		fm.mu.Unlock()
		if last.Get("productIds") != "" {
			t.Errorf("style queries must scan unfiltered, got productIds %q", last.Get("productIds"))
		}
	})

	t.Run("predicate", func(t *testing.T) {
		items, err := inv.Items().
			Filter(func(item *ListedItem) bool { return item.Price() >= 95 }).
			Get(context.Background())
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(items) != 1 || items[0].Price() != 100 {
			t.Errorf("unexpected items %+v", items)
		}
	})
}

func TestInventory_Update_IncreaseQuantity(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p1", "v1", "DD1391-100", "9", 100),
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	items := queryItems(t, inv)
	if len(items) != 1 {
		t.Fatalf("expected 1 aggregated item, got %d", len(items))
	}
	item := items[0]

	if err := item.SetQuantity(4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	results, err := inv.Update(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].Created) != 2 {
		t.Errorf("expected 2 created ids, got %v", results[0].Created)
	}
	if len(item.ListingIDs()) != 4 {
		t.Errorf("expected 4 backing listings, got %v", item.ListingIDs())
	}
	if item.QuantityToSync() != 0 {
		t.Errorf("expected the item in sync, got delta %d", item.QuantityToSync())
	}

	// A clean reconciliation clears the dirty sets.
	quantity, price := inv.snapshotDirty()
	if len(quantity) != 0 || len(price) != 0 {
		t.Error("dirty sets must be cleared after a full success")
	}
}

func TestInventory_Update_DecreaseQuantity(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L3", "p1", "v1", "DD1391-100", "9", 100),
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]
	if err := item.SetQuantity(1); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	results, err := inv.Update(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// The trailing ids are the ones dropped.
	if !reflect.DeepEqual(results[0].Deleted, []string{"L2", "L3"}) {
		t.Errorf("expected [L2 L3] deleted, got %v", results[0].Deleted)
	}
	if !reflect.DeepEqual(item.ListingIDs(), []string{"L1"}) {
		t.Errorf("expected [L1] remaining, got %v", item.ListingIDs())
	}
}

func TestInventory_Update_NothingDirty(t *testing.T) {
	fm := newFakeMarketplace(t)
	inv := newTestInventory(t, fm, 5*time.Second)

	results, err := inv.Update(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
	if fm.submissions() != 0 {
		t.Errorf("expected no batch submissions, got %d", fm.submissions())
	}
}

func TestInventory_Update_Timeout(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.neverDone = true
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
	}
	inv := newTestInventory(t, fm, time.Second)

	item := queryItems(t, inv)[0]
	if err := item.SetQuantity(2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	_, err := inv.Update(context.Background())

	var incomplete *IncompleteOperationError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteOperationError, got %v", err)
	}
	if len(incomplete.TimedOutBatchIDs) != 1 {
		t.Errorf("expected 1 timed-out batch, got %v", incomplete.TimedOutBatchIDs)
	}

	// The drift is still pending; the dirty set survives for a retry.
	quantity, _ := inv.snapshotDirty()
	if len(quantity) != 1 {
		t.Error("dirty set must survive an incomplete reconciliation")
	}
}

func TestInventory_ChangePrice(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p1", "v1", "DD1391-100", "9", 100),
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]

	results, err := inv.ChangePrice(context.Background(), []*ListedItem{item}, FixedAmount(90), nil)
	if err != nil {
		t.Fatalf("change price: %v", err)
	}

	if item.Price() != 90 {
		t.Errorf("expected price 90, got %v", item.Price())
	}
	if !reflect.DeepEqual(results[0].Updated, []string{"L1", "L2"}) {
		t.Errorf("expected both listings updated, got %v", results[0].Updated)
	}

	// ChangePrice pushes immediately; nothing is left pending.
	_, price := inv.snapshotDirty()
	if len(price) != 0 {
		t.Error("repriced items must leave the price-dirty set")
	}
}

func TestInventory_ChangePrice_Condition(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p2", "v2", "AA0000-001", "10", 50),
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	items := queryItems(t, inv)
	expensive := ConditionFunc(func(item *ListedItem) bool { return item.Price() >= 100 })

	results, err := inv.ChangePrice(context.Background(), items, FixedAmount(95), expensive)
	if err != nil {
		t.Fatalf("change price: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 repriced item, got %d", len(results))
	}
	for _, item := range items {
		switch item.VariantID() {
		case "v1":
			if item.Price() != 95 {
				t.Errorf("expected v1 repriced to 95, got %v", item.Price())
			}
		case "v2":
			if item.Price() != 50 {
				t.Errorf("v2 must be untouched, got %v", item.Price())
			}
		}
	}
}

func TestInventory_ChangePrice_PartialFailure(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 100),
		activeListing("L2", "p1", "v1", "DD1391-100", "9", 100),
	}
	fm.failUpdates["L2"] = "listing locked"
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]

	results, err := inv.ChangePrice(context.Background(), []*ListedItem{item}, FixedAmount(90), nil)
	if err != nil {
		t.Fatalf("change price: %v", err)
	}

	r := results[0]
	if !reflect.DeepEqual(r.Updated, []string{"L1"}) {
		t.Errorf("unexpected updated %v", r.Updated)
	}
	if !reflect.DeepEqual(r.Failed, []string{"L2"}) {
		t.Errorf("unexpected failed %v", r.Failed)
	}
	if len(r.ErrorsDetail) != 1 || r.ErrorsDetail[0].Message != "listing locked" {
		t.Errorf("unexpected errors %+v", r.ErrorsDetail)
	}
}

func TestInventory_Sell(t *testing.T) {
	fm := newFakeMarketplace(t)
	inv := newTestInventory(t, fm, 5*time.Second)

	a, _ := NewItem("p1", "v1", 120, 2)
	b, _ := NewItem("p1", "v1", 120, 1)
	c, _ := NewItem("p1", "v2", 90, 1)

	sold, err := inv.Sell(context.Background(), []*Item{a, b, c})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	// a and b coalesce into one create input of quantity 3, attributed to
	// a's ListedItem; c stands alone.
	if len(sold) != 2 {
		t.Fatalf("expected 2 listed items, got %d", len(sold))
	}
	if sold[0].VariantID() != "v1" || len(sold[0].ListingIDs()) != 3 {
		t.Errorf("unexpected first listed item %+v", sold[0])
	}
	if sold[1].VariantID() != "v2" || len(sold[1].ListingIDs()) != 1 {
		t.Errorf("unexpected second listed item %+v", sold[1])
	}
}

func TestInventory_BeatLowestAsk(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 130),
	}
	fm.marketData["v1"] = types.MarketData{
		ProductID:       "p1",
		VariantID:       "v1",
		CurrencyCode:    "EUR",
		LowestAskAmount: 120,
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]

	results, err := inv.BeatLowestAsk(context.Background(), []*ListedItem{item}, FixedAmount(5), false, nil)
	if err != nil {
		t.Fatalf("beat lowest ask: %v", err)
	}

	if item.Price() != 115 {
		t.Errorf("expected 115 (120 - 5), got %v", item.Price())
	}
	if !reflect.DeepEqual(results[0].Updated, []string{"L1"}) {
		t.Errorf("unexpected updated %v", results[0].Updated)
	}
}

func TestInventory_BeatLowestAsk_Percentage(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 130),
	}
	fm.marketData["v1"] = types.MarketData{
		ProductID:       "p1",
		VariantID:       "v1",
		CurrencyCode:    "EUR",
		LowestAskAmount: 200,
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]

	_, err := inv.BeatLowestAsk(context.Background(), []*ListedItem{item}, FixedAmount(0.1), true, nil)
	if err != nil {
		t.Fatalf("beat lowest ask: %v", err)
	}
	if item.Price() != 180 {
		t.Errorf("expected 180 (200 * 0.9), got %v", item.Price())
	}
}

func TestInventory_BeatLowestAsk_NoMarketValue(t *testing.T) {
	fm := newFakeMarketplace(t)
	fm.listings = []types.Listing{
		activeListing("L1", "p1", "v1", "DD1391-100", "9", 130),
	}
	fm.marketData["v1"] = types.MarketData{
		ProductID:    "p1",
		VariantID:    "v1",
		CurrencyCode: "EUR",
		// No lowest ask on the book.
	}
	inv := newTestInventory(t, fm, 5*time.Second)

	item := queryItems(t, inv)[0]

	_, err := inv.BeatLowestAsk(context.Background(), []*ListedItem{item}, FixedAmount(5), false, nil)
	if err != nil {
		t.Fatalf("beat lowest ask: %v", err)
	}
	if item.Price() != 130 {
		t.Errorf("missing market value must keep the current price, got %v", item.Price())
	}
}

func TestIncompleteOperationError_Message(t *testing.T) {
	err := &IncompleteOperationError{TimedOutBatchIDs: []string{"b1", "b2"}}
	if !strings.Contains(err.Error(), "b1") || !strings.Contains(err.Error(), "b2") {
		t.Errorf("expected batch ids in the message, got %q", err.Error())
	}
}
