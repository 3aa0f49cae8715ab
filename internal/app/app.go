// Package app はサブコマンドに応じて依存関係を組み立て、プロセスを起動する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/warmebetten/sheltermap/internal/config"
	"github.com/warmebetten/sheltermap/internal/database"
	"github.com/warmebetten/sheltermap/internal/geo"
	"github.com/warmebetten/sheltermap/internal/geocode"
	"github.com/warmebetten/sheltermap/internal/handler"
	"github.com/warmebetten/sheltermap/internal/kaeltehilfe"
	"github.com/warmebetten/sheltermap/internal/logger"
	"github.com/warmebetten/sheltermap/internal/metrics"
	"github.com/warmebetten/sheltermap/internal/middleware"
	"github.com/warmebetten/sheltermap/internal/repository"
	"github.com/warmebetten/sheltermap/internal/security"
	"github.com/warmebetten/sheltermap/internal/shelter"
	"github.com/warmebetten/sheltermap/internal/worker/backfill"
	"github.com/warmebetten/sheltermap/internal/worker/expiry"
)

// expiryInterval は空き状況の失効ジョブの実行間隔。
const expiryInterval = time.Hour

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if len(args) > 0 && !IsKnownCommand(args[0]) {
		slog.Warn("不明なサブコマンドのためserveで起動します", slog.String("command", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	if err := validateExternalURLs(security.NewSSRFGuard(), map[string]string{"PHOTON_URL": cfg.PhotonURL}); err != nil {
		return err
	}

	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. リポジトリと行政区境界の初期化
	shelterRepo := repository.NewPostgresShelterRepo(db)
	boundaries := loadBoundaries(cfg.DistrictsGeoJSONPath)

	// 3. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 4. ドメインサービスの初期化
	geocoder := newGeocoder(cfg, ssrfGuard)
	shelterService := shelter.NewService(shelterRepo, sanitizer, districtResolver(boundaries))

	// 5. メトリクスの初期化
	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitGeocode),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TrustProxy:        cfg.TrustProxy,
		HSTS:              strings.HasPrefix(cfg.BaseURL, "https://"),
		HealthChecker:     db,
		ShelterService:    shelterService,
		DistrictLocator:   shelterService,
		DistrictsJSON:     rawDistricts(boundaries),
		Geocoder:          geocoder,
		GeocodeRecorder:   collector,
		Gatherer:          reg,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// Kältehilfeの空き状況取得、空き状況の失効、座標補完の各ジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	if err := validateExternalURLs(security.NewSSRFGuard(), map[string]string{
		"KAELTEHILFE_LIST_URL": cfg.KaeltehilfeListURL,
		"PHOTON_URL":           cfg.PhotonURL,
	}); err != nil {
		return err
	}

	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. リポジトリの初期化
	shelterRepo := repository.NewPostgresShelterRepo(db)

	// 3. メトリクスの初期化とメトリクス用ポートの公開
	reg := newRegistry()
	collector := metrics.NewCollector(reg)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.SetupMetricsRoute(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// 4. スクレイパーの初期化（取得先ホスト以外への接続は拒否する）
	ssrfGuard := security.NewSSRFGuard()
	scraperClient := ssrfGuard.NewSafeClient(cfg.ScrapeTimeout, security.HostOf(cfg.KaeltehilfeListURL))
	scraper, err := kaeltehilfe.NewScraper(scraperClient, slog.Default(), kaeltehilfe.ScraperConfig{
		ListURL:  cfg.KaeltehilfeListURL,
		PageSize: cfg.ScrapePageSize,
		MaxPages: cfg.ScrapeMaxPages,
		Sleep:    cfg.ScrapeSleep,
	})
	if err != nil {
		return fmt.Errorf("failed to create scraper: %w", err)
	}

	overrides := kaeltehilfe.LoadOverrides(cfg.KaeltehilfeOverridesPath, slog.Default())
	capacityJob := kaeltehilfe.NewJob(scraper, shelterRepo, overrides, slog.Default(), kaeltehilfe.JobConfig{
		Commit: cfg.ScrapeCommit,
	})
	scheduler := kaeltehilfe.NewScheduler(capacityJob, collector, slog.Default())

	// 5. 失効ジョブと座標補完ジョブの初期化
	expiryJob := expiry.NewExpiryJob(db, slog.Default(), cfg.CapacityTTL)

	boundaries := loadBoundaries(cfg.DistrictsGeoJSONPath)
	var backfillDistricts backfill.DistrictResolver
	if boundaries != nil {
		backfillDistricts = boundaries
	}
	backfillJob := backfill.NewJob(shelterRepo, newGeocoder(cfg, ssrfGuard), backfillDistricts, slog.Default(), backfill.Config{
		Interval:    cfg.BackfillInterval,
		APIInterval: cfg.BackfillAPIInterval,
		MaxPerCycle: cfg.BackfillMaxPerCycle,
		Commit:      cfg.BackfillCommit,
	})

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("scrape_interval", cfg.ScrapeInterval),
		slog.Bool("scrape_commit", cfg.ScrapeCommit),
		slog.Int("overrides", len(overrides)),
		slog.Duration("capacity_ttl", expiryJob.TTL),
		slog.String("metrics_addr", metricsServer.Addr),
	)

	go expiryJob.Start(ctx, expiryInterval)
	go backfillJob.Start(ctx)

	// 空き状況のスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.ScrapeInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(context.Background(), db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// loadBoundaries は行政区境界を読み込む。
// 読み込めない場合は警告を出してnilを返し、行政区判定なしで起動を続ける。
func loadBoundaries(path string) *geo.Boundaries {
	b, err := geo.LoadFile(path)
	if err != nil {
		slog.Warn("行政区境界を読み込めません。行政区判定は無効になります",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil
	}
	slog.Info("行政区境界を読み込みました",
		slog.String("path", path),
		slog.Int("districts", len(b.Districts())),
	)
	return b
}

// districtResolver はnilの*geo.Boundariesをnilインターフェースとして渡すための変換。
func districtResolver(b *geo.Boundaries) shelter.DistrictResolver {
	if b == nil {
		return nil
	}
	return b
}

func rawDistricts(b *geo.Boundaries) []byte {
	if b == nil {
		return nil
	}
	return b.Raw()
}

// newGeocoder はPhotonのホストにのみ接続できるジオコーダーを生成する。
// validateExternalURLs は外部接続先として設定されたURLを検証する。
// キーは環境変数名で、エラーメッセージに使う。
func validateExternalURLs(guard security.SSRFGuardService, urls map[string]string) error {
	for name, raw := range urls {
		if err := guard.ValidateURL(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func newGeocoder(cfg *config.Config, guard security.SSRFGuardService) *geocode.Client {
	client := guard.NewSafeClient(cfg.GeocodeTimeout, security.HostOf(cfg.PhotonURL))
	return geocode.NewClient(client, slog.Default(), cfg.PhotonURL)
}

// newRegistry はGoランタイムとプロセスの標準メトリクスを登録したレジストリを返す。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
