package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
)

func (c *Client) CustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var customers []Customer
	err := c.db.NewSelect().
		Model(&customers).
		Where("lower(c.email) = lower(?)", strings.TrimSpace(email)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query customers by email: %w", err)
	}
	return customers, nil
}

// LastOrders returns the customer's orders newest first. The caller is
// responsible for clamping limit; customerID must come from the session's
// identity resolver, never from user input.
func (c *Client) LastOrders(ctx context.Context, customerID int64, limit int) ([]OrderDetail, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var rows []OrderDetail
	err := c.scopedOrderQuery(customerID).
		OrderExpr("o.order_date DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("query last orders: %w", err)
	}
	return rows, nil
}

// OrderByID filters by both order id and customer id in one query, so an
// order owned by another customer is indistinguishable from a missing one.
func (c *Client) OrderByID(ctx context.Context, customerID, orderID int64) (*OrderDetail, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var row OrderDetail
	err := c.scopedOrderQuery(customerID).
		Where("o.order_id = ?", orderID).
		Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order id=%d", contractx.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return &row, nil
}

func (c *Client) OrdersInRange(ctx context.Context, customerID int64, from, to time.Time) ([]OrderDetail, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var rows []OrderDetail
	err := c.scopedOrderQuery(customerID).
		Where("o.order_date BETWEEN ? AND ?", from, to).
		OrderExpr("o.order_date DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("query orders in range: %w", err)
	}
	return rows, nil
}

func (c *Client) scopedOrderQuery(customerID int64) *bun.SelectQuery {
	return c.db.NewSelect().
		Model((*Order)(nil)).
		ColumnExpr("o.order_id, o.order_date, o.status").
		ColumnExpr("p.product_id, p.name AS product_name, p.category, p.price, p.warranty_months").
		ColumnExpr("s.carrier, s.tracking_code").
		Join("JOIN products AS p ON p.product_id = o.product_id").
		Join("LEFT JOIN shipments AS s ON s.order_id = o.order_id").
		Where("o.customer_id = ?", customerID)
}
