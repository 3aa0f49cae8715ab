package handler

import (
	"context"
	"net/url"
	"sync"

	"github.com/warmebetten/sheltermap/internal/geocode"
	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/shelter"
)

// --- テスト用モック ---

type mockShelterService struct {
	listFn func(ctx context.Context, values url.Values) (*shelter.ListResult, error)
	getFn  func(ctx context.Context, id string) (*shelter.View, error)
}

func (m *mockShelterService) List(ctx context.Context, values url.Values) (*shelter.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, values)
	}
	return &shelter.ListResult{}, nil
}

func (m *mockShelterService) Get(ctx context.Context, id string) (*shelter.View, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewShelterNotFoundError(id)
}

type mockDistrictLocator struct {
	locateFn func(values url.Values, p model.Point) (*shelter.LocateResult, error)
}

func (m *mockDistrictLocator) Locate(values url.Values, p model.Point) (*shelter.LocateResult, error) {
	if m.locateFn != nil {
		return m.locateFn(values, p)
	}
	return &shelter.LocateResult{}, nil
}

type mockGeocoder struct {
	searchFn func(ctx context.Context, query string) ([]geocode.Feature, error)
	calls    int
}

func (m *mockGeocoder) Search(ctx context.Context, query string) ([]geocode.Feature, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return []geocode.Feature{}, nil
}

type mockGeocodeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockGeocodeRecorder) RecordGeocodeRequest(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
