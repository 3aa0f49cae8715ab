package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/shelter"
)

const testDistrictsJSON = `{"type":"FeatureCollection","features":[]}`

func TestDistrictHandler_GetDistricts(t *testing.T) {
	h := NewDistrictHandler(&mockDistrictLocator{}, []byte(testDistrictsJSON))

	w := httptest.NewRecorder()
	h.GetDistricts(w, httptest.NewRequest(http.MethodGet, "/api/districts", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=86400, s-maxage=86400" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/geo+json" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != testDistrictsJSON {
		t.Errorf("body = %q, 元のGeoJSONをそのまま返すべき", w.Body.String())
	}
}

func TestDistrictHandler_GetDistricts_Unavailable(t *testing.T) {
	h := NewDistrictHandler(&mockDistrictLocator{}, nil)

	w := httptest.NewRecorder()
	h.GetDistricts(w, httptest.NewRequest(http.MethodGet, "/api/districts", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var body apiErrorBody
	json.NewDecoder(w.Body).Decode(&body)
	if body.Code != model.ErrCodeDistrictsUnavailable {
		t.Errorf("code = %q", body.Code)
	}
}

func TestDistrictHandler_LocateDistrict_Match(t *testing.T) {
	var gotValues url.Values
	var gotPoint model.Point
	locator := &mockDistrictLocator{
		locateFn: func(values url.Values, p model.Point) (*shelter.LocateResult, error) {
			gotValues, gotPoint = values, p
			d := model.DistrictNeukoelln
			return &shelter.LocateResult{District: &d, Query: "bezirk=neukoelln&q=cafe"}, nil
		},
	}
	h := NewDistrictHandler(locator, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/districts/locate?lng=13.44&lat=52.47&q=cafe", nil)
	w := httptest.NewRecorder()
	h.LocateDistrict(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPoint != (model.Point{Lng: 13.44, Lat: 52.47}) {
		t.Errorf("point = %+v", gotPoint)
	}
	if gotValues.Has("lng") || gotValues.Has("lat") || gotValues.Get("q") != "cafe" {
		t.Errorf("座標を除いた絞り込み条件を渡すべき: %v", gotValues)
	}

	var body locateResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.District == nil || *body.District != "neukoelln" || body.Label == nil || *body.Label != "Neukölln" {
		t.Errorf("body = %+v", body)
	}
	if body.Query != "bezirk=neukoelln&q=cafe" {
		t.Errorf("query = %q", body.Query)
	}
}

func TestDistrictHandler_LocateDistrict_NoMatch(t *testing.T) {
	locator := &mockDistrictLocator{
		locateFn: func(values url.Values, p model.Point) (*shelter.LocateResult, error) {
			return &shelter.LocateResult{Query: "capacity=plenty"}, nil
		},
	}
	h := NewDistrictHandler(locator, nil)

	w := httptest.NewRecorder()
	h.LocateDistrict(w, httptest.NewRequest(http.MethodGet, "/api/districts/locate?lng=10&lat=53.5&capacity=plenty", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, 該当なしはエラーにしないべき", w.Code)
	}
	var raw map[string]any
	json.NewDecoder(w.Body).Decode(&raw)
	if v, ok := raw["district"]; !ok || v != nil {
		t.Errorf("district = %v, want null", v)
	}
	if raw["query"] != "capacity=plenty" {
		t.Errorf("query = %v", raw["query"])
	}
}

func TestDistrictHandler_LocateDistrict_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"lngなし", "lat=52.5"},
		{"latが数値でない", "lng=13.4&lat=abc"},
		{"範囲外", "lng=200&lat=52.5"},
		{"NaN", "lng=NaN&lat=52.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			locator := &mockDistrictLocator{
				locateFn: func(values url.Values, p model.Point) (*shelter.LocateResult, error) {
					called = true
					return &shelter.LocateResult{}, nil
				},
			}
			h := NewDistrictHandler(locator, nil)

			w := httptest.NewRecorder()
			h.LocateDistrict(w, httptest.NewRequest(http.MethodGet, "/api/districts/locate?"+tt.query, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			var body apiErrorBody
			json.NewDecoder(w.Body).Decode(&body)
			if body.Code != model.ErrCodeInvalidCoordinates {
				t.Errorf("code = %q", body.Code)
			}
			if called {
				t.Error("不正な座標では判定を呼ぶべきではない")
			}
		})
	}
}

// TestDistrictHandler_LocateDistrict_WithoutBoundaries は境界データなしでも200で条件をそのまま返すことを検証する。
func TestDistrictHandler_LocateDistrict_WithoutBoundaries(t *testing.T) {
	h := NewDistrictHandler(shelter.NewService(nil, nil, nil), nil)

	w := httptest.NewRecorder()
	h.LocateDistrict(w, httptest.NewRequest(http.MethodGet, "/api/districts/locate?lng=13.4&lat=52.5&q=cafe", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body locateResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.District != nil || body.Label != nil {
		t.Errorf("district = %v, label = %v, want null", body.District, body.Label)
	}
	if body.Query != "q=cafe" {
		t.Errorf("query = %q, want q=cafe", body.Query)
	}
}
