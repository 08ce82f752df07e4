// Package mocks provides testify mocks for the gateway contracts.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketdesk/internal/gateway"
)

// Gateway is a mock for gateway.Gateway.
type Gateway[T, C, P any] struct {
	mock.Mock
}

func (m *Gateway[T, C, P]) List(ctx context.Context, q gateway.Query) (gateway.Page[T], error) {
	args := m.Called(ctx, q)
	if page, ok := args.Get(0).(gateway.Page[T]); ok {
		return page, args.Error(1)
	}
	return gateway.Page[T]{}, args.Error(1)
}

func (m *Gateway[T, C, P]) GetByID(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *Gateway[T, C, P]) Create(ctx context.Context, payload C) (T, error) {
	args := m.Called(ctx, payload)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *Gateway[T, C, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	args := m.Called(ctx, id, patch)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *Gateway[T, C, P]) PatchStatus(ctx context.Context, id, status string) (T, error) {
	args := m.Called(ctx, id, status)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *Gateway[T, C, P]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CompletableGateway is a mock that also implements gateway.Completer and
// gateway.BulkPatcher.
type CompletableGateway[T, C, P any] struct {
	Gateway[T, C, P]
}

func (m *CompletableGateway[T, C, P]) MarkCompleted(ctx context.Context, id string, when time.Time) (T, error) {
	args := m.Called(ctx, id, when)
	if rec, ok := args.Get(0).(T); ok {
		return rec, args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

func (m *CompletableGateway[T, C, P]) BulkPatchStatus(ctx context.Context, ids []string, status string) ([]T, error) {
	args := m.Called(ctx, ids, status)
	if recs, ok := args.Get(0).([]T); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}
