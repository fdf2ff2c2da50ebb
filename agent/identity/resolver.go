// Package identity maps a user-supplied email to the internal customer id.
// This is the sole authorization boundary: every scoped query downstream
// consumes the resolved id, never the raw email or anything parsed from the
// user's message.
package identity

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
)

type CustomerDirectory interface {
	CustomersByEmail(ctx context.Context, email string) ([]dbx.Customer, error)
}

type Resolver struct {
	directory CustomerDirectory
}

func NewResolver(directory CustomerDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve returns the customer id for an email. Email is expected to be
// unique in the store; more than one match is rejected as ambiguous.
func (r *Resolver) Resolve(ctx context.Context, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", contractx.ErrValidation)
	}

	customers, err := r.directory.CustomersByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("resolve identity: %w", err)
	}

	switch len(customers) {
	case 0:
		return 0, fmt.Errorf("%w: no customer for this email", contractx.ErrNotFound)
	case 1:
		return customers[0].ID, nil
	default:
		return 0, fmt.Errorf("%w: %d customers share this email", contractx.ErrAmbiguous, len(customers))
	}
}
