// Package handler は地図APIのHTTPハンドラーとルーティングを提供する。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/warmebetten/sheltermap/internal/metrics"
	"github.com/warmebetten/sheltermap/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	// TrustProxy がtrueの場合、X-Forwarded-For等からクライアントIPを取得する
	TrustProxy bool
	// HSTS がtrueの場合、Strict-Transport-Securityを付与する
	HSTS bool

	HealthChecker HealthChecker

	// 施設・行政区
	ShelterService  ShelterServiceInterface
	DistrictLocator DistrictLocator
	DistrictsJSON   []byte

	// 住所検索
	Geocoder        Geocoder
	GeocodeRecorder GeocodeRecorder

	// Gatherer がnilの場合は/metricsを公開しない
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → (RealIP) → Logging → SecurityHeaders → CORS → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(logger))
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(middleware.NotFoundHandler)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler)

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	shelterHandler := NewShelterHandler(deps.ShelterService)
	districtHandler := NewDistrictHandler(deps.DistrictLocator, deps.DistrictsJSON)
	geocodeHandler := NewGeocodeHandler(deps.Geocoder, deps.GeocodeRecorder)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/shelters", func(r chi.Router) {
			r.Get("/", shelterHandler.ListShelters)
			r.Get("/{id}", shelterHandler.GetShelter)
		})

		r.Route("/districts", func(r chi.Router) {
			r.Get("/", districtHandler.GetDistricts)
			r.Get("/locate", districtHandler.LocateDistrict)
		})

		// 住所検索は外部APIを呼ぶため専用のレート制限を追加する
		r.With(deps.RateLimiter.GeocodeMiddleware()).Get("/geocode/photon", geocodeHandler.SearchPhoton)
	})

	return r
}
