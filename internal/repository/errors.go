// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"agora/internal/observability"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// track opens a span and a latency timer for one store call. The returned
// func must be called with the call's final error.
func track(ctx context.Context, backend, collection, op string) (context.Context, func(error)) {
	ctx, span := observability.StartStoreSpan(ctx, backend, op, collection)
	done := observability.TrackQuery(backend, op)
	return ctx, func(err error) {
		done()
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		observability.EndSpan(span, err)
	}
}
