// Package db is the read-only gateway over the Postgres store: relational
// lookups for customers/orders and nearest-neighbor search over pgvector
// embedding columns. No business logic lives here.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" split_words:"true" default:"5s"`
}

type Client struct {
	db       *bun.DB
	embedder Embedder
	timeout  time.Duration
}

func New(cfg Config, embedder Embedder) (*Client, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(strings.TrimSpace(cfg.DSN))))

	return &Client{
		db:       bun.NewDB(sqldb, pgdialect.New()),
		embedder: embedder,
		timeout:  timeout,
	}, nil
}

func MustNew(cfg Config, embedder Embedder) *Client {
	client, err := New(cfg, embedder)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
