package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
)

const snippetLength = 400

// NearestDocChunks embeds the query text and returns the topK knowledge-base
// chunks ordered nearest first by cosine distance. An empty result set is
// not an error.
func (c *Client) NearestDocChunks(ctx context.Context, query string, topK int) ([]DocChunkHit, error) {
	vec, err := c.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var hits []DocChunkHit
	err = c.db.NewSelect().
		Model((*DocChunk)(nil)).
		ColumnExpr("dc.chunk_id, dc.doc_id, dc.title").
		ColumnExpr("left(dc.chunk_text, ?) AS snippet", snippetLength).
		ColumnExpr("dc.embedding <=> ? AS distance", vec).
		OrderExpr("distance ASC").
		Limit(topK).
		Scan(ctx, &hits)
	if err != nil {
		return nil, fmt.Errorf("%w: doc search: %v", contractx.ErrSearchUnavailable, err)
	}
	return hits, nil
}

// NearestProducts is the same mechanism over product descriptions, with an
// optional inclusive price ceiling.
func (c *Client) NearestProducts(ctx context.Context, query string, topK int, priceMax *float64) ([]ProductHit, error) {
	vec, err := c.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	q := c.db.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("p.product_id, p.name, p.category, p.price, p.warranty_months, p.description").
		ColumnExpr("p.embedding <=> ? AS distance", vec).
		OrderExpr("distance ASC").
		Limit(topK)
	if priceMax != nil {
		q = q.Where("p.price <= ?", *priceMax)
	}

	var hits []ProductHit
	if err := q.Scan(ctx, &hits); err != nil {
		return nil, fmt.Errorf("%w: product search: %v", contractx.ErrSearchUnavailable, err)
	}
	return hits, nil
}

func (c *Client) embedQuery(ctx context.Context, query string) (pgvector.Vector, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return pgvector.Vector{}, fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: embed query: %v", contractx.ErrSearchUnavailable, err)
	}
	return pgvector.NewVector(vec), nil
}
