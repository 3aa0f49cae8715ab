// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// スクレイパーやハンドラーから利用する。
type MetricsCollector interface {
	RecordScrapeSuccess()
	RecordScrapeFailure(reason string)
	RecordSourceStatus(statusCode int)
	RecordScrapeLatency(duration time.Duration)
	RecordCapacityMatches(matched, unmatched int)
	RecordGeocodeRequest(outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	scrapeSuccess     prometheus.Counter
	scrapeFail        *prometheus.CounterVec
	sourceStatus      *prometheus.CounterVec
	scrapeLatency     prometheus.Histogram
	capacityMatched   prometheus.Gauge
	capacityUnmatched prometheus.Gauge
	geocodeRequests   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scrapeSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheltermap_scrape_success_total",
			Help: "Kältehilfeスクレイピング成功の合計数",
		}),
		scrapeFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheltermap_scrape_fail_total",
			Help: "Kältehilfeスクレイピング失敗の合計数",
		}, []string{"reason"}),
		sourceStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheltermap_source_http_status_total",
			Help: "取得元のHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		scrapeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheltermap_scrape_latency_seconds",
			Help:    "スクレイピングと反映1回あたりの所要時間（秒）",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		capacityMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sheltermap_capacity_matched",
			Help: "直近の実行でKältehilfeの募集と一致した施設数",
		}),
		capacityUnmatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sheltermap_capacity_unmatched",
			Help: "直近の実行で一致しなかった施設数",
		}),
		geocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheltermap_geocode_requests_total",
			Help: "ジオコーディングプロキシの結果別リクエスト数",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.scrapeSuccess,
		c.scrapeFail,
		c.sourceStatus,
		c.scrapeLatency,
		c.capacityMatched,
		c.capacityUnmatched,
		c.geocodeRequests,
	)

	return c
}

// RecordScrapeSuccess はスクレイピング成功を記録する。
func (c *Collector) RecordScrapeSuccess() {
	c.scrapeSuccess.Inc()
}

// RecordScrapeFailure はスクレイピング失敗を理由別に記録する。
func (c *Collector) RecordScrapeFailure(reason string) {
	c.scrapeFail.WithLabelValues(reason).Inc()
}

// RecordSourceStatus は取得元のHTTPステータスコードを記録する。
func (c *Collector) RecordSourceStatus(statusCode int) {
	c.sourceStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordScrapeLatency はスクレイピングの所要時間を記録する。
func (c *Collector) RecordScrapeLatency(duration time.Duration) {
	c.scrapeLatency.Observe(duration.Seconds())
}

// RecordCapacityMatches は直近の照合結果を記録する。
func (c *Collector) RecordCapacityMatches(matched, unmatched int) {
	c.capacityMatched.Set(float64(matched))
	c.capacityUnmatched.Set(float64(unmatched))
}

// RecordGeocodeRequest はジオコーディングの結果（ok, short, error）を記録する。
func (c *Collector) RecordGeocodeRequest(outcome string) {
	c.geocodeRequests.WithLabelValues(outcome).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// ワーカープロセスのメトリクス用ポートで使う。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
