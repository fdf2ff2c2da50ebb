// Package tool exposes the fixed toolset the planner can call. The executor
// is built per session with the resolved customer id closed over, so every
// scoped query is filtered by that id regardless of what arguments the
// planner supplies.
package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
	shippingx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/shipping"
)

const (
	ToolLastOrders     = "orders.last"
	ToolOrderByID      = "orders.by_id"
	ToolOrdersInRange  = "orders.in_range"
	ToolDocSearch      = "docs.search"
	ToolProductSearch  = "products.search"
	ToolShippingStatus = "shipping.status"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// StoreGateway is the slice of the data store the tools consume.
type StoreGateway interface {
	LastOrders(ctx context.Context, customerID int64, limit int) ([]dbx.OrderDetail, error)
	OrderByID(ctx context.Context, customerID, orderID int64) (*dbx.OrderDetail, error)
	OrdersInRange(ctx context.Context, customerID int64, from, to time.Time) ([]dbx.OrderDetail, error)
	NearestDocChunks(ctx context.Context, query string, topK int) ([]dbx.DocChunkHit, error)
	NearestProducts(ctx context.Context, query string, topK int, priceMax *float64) ([]dbx.ProductHit, error)
}

type StatusClient interface {
	Status(ctx context.Context, orderStatus, trackingNumber string) (*shippingx.TrackingStatus, error)
}

type Deps struct {
	Store    StoreGateway
	Shipping StatusClient
}

// NewExecutor binds the session's customer id into every scoped tool. The
// id is not part of any tool's argument schema and cannot be overridden by
// the planner.
func NewExecutor(deps Deps, customerID int64) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		var (
			result any
			err    error
		)
		switch tool {
		case ToolLastOrders:
			result, err = execLastOrders(ctx, deps.Store, customerID, args)
		case ToolOrderByID:
			result, err = execOrderByID(ctx, deps.Store, customerID, args)
		case ToolOrdersInRange:
			result, err = execOrdersInRange(ctx, deps.Store, customerID, args)
		case ToolDocSearch:
			result, err = execDocSearch(ctx, deps.Store, args)
		case ToolProductSearch:
			result, err = execProductSearch(ctx, deps.Store, args)
		case ToolShippingStatus:
			result, err = execShippingStatus(ctx, deps.Shipping, args)
		default:
			err = fmt.Errorf("%w: unknown tool %q", contractx.ErrValidation, tool)
		}
		if err != nil {
			return contractx.ToolResult{}, err
		}
		return contractx.ToolResult{Tool: tool, Result: result}, nil
	}
}

// Infos describes the toolset for the planner model. None of the schemas
// carries a customer identifier.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolLastOrders,
			Desc: "Return the customer's most recent orders, newest first, with product name and current status.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"limit": {Type: schema.Integer, Desc: "Max orders to return (default 3, capped at 20)."},
			}),
		},
		{
			Name: ToolOrderByID,
			Desc: "Return full detail for one of the customer's orders (product, date, status, shipment if present).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.Integer, Desc: "Order id", Required: true},
			}),
		},
		{
			Name: ToolOrdersInRange,
			Desc: "Return the customer's orders with order date in [start_date, end_date] inclusive.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD", Required: true},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD", Required: true},
			}),
		},
		{
			Name: ToolDocSearch,
			Desc: "Semantic search over support docs (FAQ, policies, warranty, RMA). Returns the nearest snippets.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Natural-language query", Required: true},
				"top_k": {Type: schema.Integer, Desc: "Snippets to return (default 3, capped at 8)."},
			}),
		},
		{
			Name: ToolProductSearch,
			Desc: "Semantic search over the product catalog. Returns name, category, price, warranty and description.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query":     {Type: schema.String, Desc: "Natural-language query", Required: true},
				"top_k":     {Type: schema.Integer, Desc: "Products to return (default 5, capped at 8)."},
				"price_max": {Type: schema.Number, Desc: "Optional maximum price."},
			}),
		},
		{
			Name: ToolShippingStatus,
			Desc: "Live shipping status for an order: carrier, status, ETA and a timeline of events with locations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_status":    {Type: schema.String, Desc: "Current order status (e.g. 'Shipped')", Required: true},
				"tracking_number": {Type: schema.String, Desc: "Shipment tracking code", Required: true},
			}),
		},
	}
}
