// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package store provides the pooled-connection and transaction
// discipline over PostgreSQL, plus schema migration management.
package store

import (
	"context"

	"github.com/jackc/puddle/v2"
	"github.com/samber/oops"
)

// PoolConfig configures a Pool.
type PoolConfig[T any] struct {
	// Factory lazily constructs a resource on first demand.
	Factory func(ctx context.Context) (T, error)

	// Reset is called each time a resource returns to the pool. A
	// non-nil error destroys the resource instead of reusing it.
	// Optional.
	Reset func(value T) error

	// Close tears a resource down when it leaves the pool for good.
	Close func(value T)

	// Size is the fixed capacity: the hard upper bound on resources
	// checked out at once.
	Size int32
}

// Pool is a generic fixed-capacity pool of reusable stateful resources
// built on puddle. Acquire blocks the caller until a resource frees up
// when the pool is exhausted; capacity is the backpressure point for
// concurrent store work.
type Pool[T any] struct {
	inner *puddle.Pool[T]
	reset func(value T) error
}

// NewPool creates a pool from the config.
func NewPool[T any](cfg PoolConfig[T]) (*Pool[T], error) {
	if cfg.Factory == nil {
		return nil, oops.Code("POOL_CONFIG_INVALID").Errorf("factory is required")
	}
	if cfg.Size <= 0 {
		return nil, oops.Code("POOL_CONFIG_INVALID").
			With("size", cfg.Size).
			Errorf("pool size must be positive")
	}

	destructor := cfg.Close
	if destructor == nil {
		destructor = func(T) {}
	}

	inner, err := puddle.NewPool(&puddle.Config[T]{
		Constructor: cfg.Factory,
		Destructor:  destructor,
		MaxSize:     cfg.Size,
	})
	if err != nil {
		return nil, oops.Code("POOL_INIT_FAILED").Wrap(err)
	}

	return &Pool[T]{inner: inner, reset: cfg.Reset}, nil
}

// Resource is a checked-out pool entry.
type Resource[T any] struct {
	res   *puddle.Resource[T]
	reset func(value T) error
}

// Value returns the underlying resource.
func (r *Resource[T]) Value() T {
	return r.res.Value()
}

// Release returns the resource for reuse. If the reset hook rejects it,
// the resource is destroyed and the next Acquire constructs a fresh one.
func (r *Resource[T]) Release() {
	if r.reset != nil {
		if err := r.reset(r.res.Value()); err != nil {
			r.res.Destroy()
			return
		}
	}
	r.res.Release()
}

// Destroy removes the resource from the pool permanently.
func (r *Resource[T]) Destroy() {
	r.res.Destroy()
}

// Acquire returns an available resource, blocking until one frees up if
// the pool is exhausted. Acquisition failures are storage errors; they
// are never retried here.
func (p *Pool[T]) Acquire(ctx context.Context) (*Resource[T], error) {
	res, err := p.inner.Acquire(ctx)
	if err != nil {
		return nil, oops.Code("POOL_ACQUIRE_FAILED").Wrap(err)
	}
	return &Resource[T]{res: res, reset: p.reset}, nil
}

// WithResource runs fn with an acquired resource and guarantees release
// on every exit path, including panics.
func (p *Pool[T]) WithResource(ctx context.Context, fn func(value T) error) error {
	res, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer res.Release()
	return fn(res.Value())
}

// Close destroys all idle resources and prevents further acquisition.
// It blocks until checked-out resources are returned.
func (p *Pool[T]) Close() {
	p.inner.Close()
}
