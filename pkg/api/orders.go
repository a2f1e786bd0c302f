package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stockx-tools/stockroom/pkg/client"
	"github.com/stockx-tools/stockroom/pkg/types"
)

// Orders wraps the seller order endpoints.
type Orders struct {
	client *client.Client
}

// OrdersQuery filters an order-history scan. Zero-valued fields impose no
// constraint.
type OrdersQuery struct {
	FromDate       time.Time
	ToDate         time.Time
	Statuses       []string
	ProductID      string
	VariantID      string
	InventoryTypes []string

	Limit    int
	PageSize int
}

func (q *OrdersQuery) params() map[string]string {
	params := map[string]string{
		"productId": q.ProductID,
		"variantId": q.VariantID,
	}
	if !q.FromDate.IsZero() {
		params["fromDate"] = types.FormatDate(q.FromDate)
	}
	if !q.ToDate.IsZero() {
		params["toDate"] = types.FormatDate(q.ToDate)
	}
	if len(q.Statuses) > 0 {
		params["orderStatus"] = strings.Join(q.Statuses, ",")
	}
	if len(q.InventoryTypes) > 0 {
		params["inventoryTypes"] = strings.Join(q.InventoryTypes, ",")
	}
	return params
}

// GetOrder fetches one order with its shipment by order number.
func (o *Orders) GetOrder(ctx context.Context, orderNumber string) (*types.OrderDetail, error) {
	response, err := o.client.Get(ctx, "/selling/orders/"+orderNumber, nil)
	if err != nil {
		return nil, err
	}

	var detail types.OrderDetail
	err = json.Unmarshal(response.Data, &detail)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &detail, nil
}

// GetOrdersHistory streams historical (completed or canceled) orders.
func (o *Orders) GetOrdersHistory(q *OrdersQuery) *Stream[types.Order] {
	return newStream[types.Order](o.client.Pages(client.PageQuery{
		Endpoint:   "/selling/orders/history",
		ResultsKey: "orders",
		Params:     q.params(),
		Limit:      q.Limit,
		PageSize:   q.PageSize,
	}))
}

// GetActiveOrders streams orders still in flight, oldest first.
func (o *Orders) GetActiveOrders(q *OrdersQuery) *Stream[types.Order] {
	params := q.params()
	params["sortOrder"] = "CREATED_AT"

	return newStream[types.Order](o.client.Pages(client.PageQuery{
		Endpoint:   "/selling/orders/active",
		ResultsKey: "orders",
		Params:     params,
		Limit:      q.Limit,
		PageSize:   q.PageSize,
	}))
}
