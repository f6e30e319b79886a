// Package kv defines the key-value port the transaction store persists
// through, and hosts its adapters in subpackages.
package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by adapters whose underlying storage cannot be
// reached at all, as opposed to a missing key.
var ErrUnavailable = errors.New("storage unavailable")

// Ports for outbound adapters.
type (
	Getter interface {
		// Get returns the stored value. ok is false when the key has never
		// been written.
		Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	}

	Setter interface {
		// Set replaces the value stored under key in a single step.
		Set(ctx context.Context, key string, value []byte) error
	}

	Backend interface {
		Getter
		Setter
	}
)
