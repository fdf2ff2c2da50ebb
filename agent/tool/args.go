package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
)

const dateLayout = "2006-01-02"

// Planner arguments arrive as decoded JSON, so numbers are usually float64.

func intArg(args map[string]any, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s must be an integer", contractx.ErrValidation, key)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", contractx.ErrValidation, key)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", contractx.ErrValidation, key)
	}
}

func requiredInt64Arg(args map[string]any, key string) (int64, error) {
	if _, ok := args[key]; !ok {
		return 0, fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	n, err := intArg(args, key, 0)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, key)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	return s, nil
}

func floatArg(args map[string]any, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", contractx.ErrValidation, key)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a number", contractx.ErrValidation, key)
	}
}

func dateArg(args map[string]any, key string) (time.Time, error) {
	s, err := stringArg(args, key, true)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", contractx.ErrValidation, key)
	}
	return d, nil
}
