package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
)

const (
	lastOrdersDefaultLimit = 3
	lastOrdersMaxLimit     = 20
)

type OrdersOutput struct {
	Orders []dbx.OrderDetail `json:"orders"`
}

type OrderOutput struct {
	Order *dbx.OrderDetail `json:"order"`
}

func execLastOrders(ctx context.Context, store StoreGateway, customerID int64, args map[string]any) (any, error) {
	limit, err := intArg(args, "limit", lastOrdersDefaultLimit)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", contractx.ErrValidation)
	}
	if limit > lastOrdersMaxLimit {
		limit = lastOrdersMaxLimit
	}

	orders, err := store.LastOrders(ctx, customerID, limit)
	if err != nil {
		return nil, err
	}
	return OrdersOutput{Orders: orders}, nil
}

func execOrderByID(ctx context.Context, store StoreGateway, customerID int64, args map[string]any) (any, error) {
	orderID, err := requiredInt64Arg(args, "order_id")
	if err != nil {
		return nil, err
	}

	order, err := store.OrderByID(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	return OrderOutput{Order: order}, nil
}

func execOrdersInRange(ctx context.Context, store StoreGateway, customerID int64, args map[string]any) (any, error) {
	from, err := dateArg(args, "start_date")
	if err != nil {
		return nil, err
	}
	to, err := dateArg(args, "end_date")
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: start_date is after end_date", contractx.ErrInvalidRange)
	}

	orders, err := store.OrdersInRange(ctx, customerID, from, to)
	if err != nil {
		return nil, err
	}
	return OrdersOutput{Orders: orders}, nil
}
