package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
)

const (
	docSearchDefaultK = 3
	docSearchMaxK     = 8

	productSearchDefaultK = 5
	productSearchMaxK     = 8
)

type DocSearchOutput struct {
	Snippets []dbx.DocChunkHit `json:"snippets"`
}

type ProductSearchOutput struct {
	Products []dbx.ProductHit `json:"products"`
}

func execDocSearch(ctx context.Context, store StoreGateway, args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	topK, err := clampedTopK(args, docSearchDefaultK, docSearchMaxK)
	if err != nil {
		return nil, err
	}

	hits, err := store.NearestDocChunks(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []dbx.DocChunkHit{}
	}
	return DocSearchOutput{Snippets: hits}, nil
}

func execProductSearch(ctx context.Context, store StoreGateway, args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	topK, err := clampedTopK(args, productSearchDefaultK, productSearchMaxK)
	if err != nil {
		return nil, err
	}
	priceMax, err := floatArg(args, "price_max")
	if err != nil {
		return nil, err
	}
	if priceMax != nil && *priceMax < 0 {
		return nil, fmt.Errorf("%w: price_max must not be negative", contractx.ErrValidation)
	}

	hits, err := store.NearestProducts(ctx, query, topK, priceMax)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []dbx.ProductHit{}
	}
	return ProductSearchOutput{Products: hits}, nil
}

func clampedTopK(args map[string]any, fallback, ceiling int) (int, error) {
	topK, err := intArg(args, "top_k", fallback)
	if err != nil {
		return 0, err
	}
	if topK <= 0 {
		return 0, fmt.Errorf("%w: top_k must be a positive integer", contractx.ErrValidation)
	}
	if topK > ceiling {
		topK = ceiling
	}
	return topK, nil
}
