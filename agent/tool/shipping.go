package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	shippingx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/shipping"
)

func execShippingStatus(ctx context.Context, client StatusClient, args map[string]any) (any, error) {
	orderStatus, err := stringArg(args, "order_status", true)
	if err != nil {
		return nil, err
	}
	trackingNumber, err := stringArg(args, "tracking_number", true)
	if err != nil {
		return nil, err
	}

	st, err := client.Status(ctx, orderStatus, trackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, shippingx.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", contractx.ErrUpstreamUnavailable, err)
		case errors.Is(err, shippingx.ErrMalformed):
			return nil, fmt.Errorf("%w: %v", contractx.ErrMalformedResponse, err)
		default:
			return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
		}
	}
	return st, nil
}
