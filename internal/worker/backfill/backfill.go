// Package backfill は座標のない施設をPhotonでジオコーディングして補完するジョブを提供する。
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/repository"
)

// Geocoder は住所から座標を引くインターフェース。テスト時にモックに差し替え可能。
type Geocoder interface {
	Lookup(ctx context.Context, query string) (model.Point, bool, error)
}

// DistrictResolver は座標から行政区を判定するインターフェース。
type DistrictResolver interface {
	Resolve(p model.Point) (model.District, bool)
}

// Config は補完ジョブの設定パラメータ。
type Config struct {
	// Interval はジョブの実行間隔（デフォルト: 6時間）。
	Interval time.Duration
	// APIInterval はPhoton呼び出しの最低間隔（デフォルト: 150ミリ秒）。
	APIInterval time.Duration
	// MaxPerCycle は1サイクルで処理する施設の上限（デフォルト: 200）。
	MaxPerCycle int
	// Commit がfalseの場合はDBに書き込まずログのみ出力する。
	Commit bool
}

// DefaultConfig はデフォルトの設定を返す。
func DefaultConfig() Config {
	return Config{
		Interval:    6 * time.Hour,
		APIInterval: 150 * time.Millisecond,
		MaxPerCycle: 200,
	}
}

// Result は1サイクルの処理結果。
type Result struct {
	Targets int
	Updated int
	Skipped int
	Failed  int
}

// Job は座標補完ジョブ。
type Job struct {
	repo              repository.CoordinateRepository
	geocoder          Geocoder
	districts         DistrictResolver
	logger            *slog.Logger
	config            Config
	consecutiveErrors int
	backoffUntil      time.Time
}

// NewJob はJobを生成する。districtsがnilの場合は行政区を補完しない。
func NewJob(
	repo repository.CoordinateRepository,
	geocoder Geocoder,
	districts DistrictResolver,
	logger *slog.Logger,
	config Config,
) *Job {
	return &Job{
		repo:      repo,
		geocoder:  geocoder,
		districts: districts,
		logger:    logger,
		config:    config,
	}
}

// Start はジョブをティッカーで定期実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.logger.Info("座標補完ジョブを開始しました",
		slog.Duration("interval", j.config.Interval),
		slog.Duration("api_interval", j.config.APIInterval),
		slog.Int("max_per_cycle", j.config.MaxPerCycle),
		slog.Bool("commit", j.config.Commit),
	)

	// 起動直後に1回実行
	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("座標補完サイクルの実行に失敗しました", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("座標補完ジョブを停止しました")
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.logger.Error("座標補完サイクルの実行に失敗しました", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce は1回の補完サイクルを実行する。
// 候補クエリを順に試し、最初に座標が得られたものを採用する。
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	start := time.Now()

	if !j.backoffUntil.IsZero() && time.Now().Before(j.backoffUntil) {
		j.logger.Info("座標補完ジョブはバックオフ中のためスキップします",
			slog.Time("backoff_until", j.backoffUntil),
		)
		return res, nil
	}

	shelters, err := j.repo.ListMissingCoordinates(ctx, j.config.MaxPerCycle)
	if err != nil {
		return res, fmt.Errorf("座標補完対象の取得に失敗しました: %w", err)
	}
	res.Targets = len(shelters)
	if len(shelters) == 0 {
		j.logger.Info("座標補完の対象施設はありません")
		return res, nil
	}

	var calls int
	var hadError bool

targets:
	for i, s := range shelters {
		candidates := QueryCandidates(s)
		if len(candidates) == 0 {
			res.Skipped++
			j.logger.Warn("住所がないためスキップします",
				slog.String("shelter_id", s.ID),
				slog.String("name", s.Name),
			)
			continue
		}

		var point model.Point
		var found bool
		var usedQuery string
		for _, q := range candidates {
			// 呼び出し間隔（初回は待たない）
			if calls > 0 {
				select {
				case <-ctx.Done():
					return res, ctx.Err()
				case <-time.After(j.config.APIInterval):
				}
			}
			calls++

			p, ok, err := j.geocoder.Lookup(ctx, q)
			if err != nil {
				hadError = true
				j.consecutiveErrors++
				j.logger.Error("ジオコーディングに失敗しました",
					slog.String("shelter_id", s.ID),
					slog.String("query", q),
					slog.String("error", err.Error()),
				)
				if backoff := calculateErrorBackoff(j.consecutiveErrors); backoff > 0 {
					j.backoffUntil = time.Now().Add(backoff)
					j.logger.Warn("連続エラーによりバックオフを適用します",
						slog.Int("consecutive_errors", j.consecutiveErrors),
						slog.Duration("backoff_duration", backoff),
					)
					res.Failed++
					break targets
				}
				continue
			}
			if ok {
				point, found, usedQuery = p, true, q
				break
			}
		}

		if !found {
			res.Skipped++
			j.logger.Warn("座標が見つかりませんでした",
				slog.String("shelter_id", s.ID),
				slog.String("name", s.Name),
				slog.Any("tried", candidates),
			)
			continue
		}

		var district *model.District
		if j.districts != nil {
			if d, ok := j.districts.Resolve(point); ok {
				district = &d
			}
		}

		j.logger.Info("座標を取得しました",
			slog.Int("index", i+1),
			slog.Int("total", len(shelters)),
			slog.String("shelter_id", s.ID),
			slog.String("name", s.Name),
			slog.Float64("lat", point.Lat),
			slog.Float64("lng", point.Lng),
			slog.String("query", usedQuery),
		)

		if !j.config.Commit {
			res.Updated++
			continue
		}
		if err := j.repo.UpdateLocation(ctx, s.ID, point, district); err != nil {
			res.Failed++
			j.logger.Error("座標の更新に失敗しました",
				slog.String("shelter_id", s.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Updated++
	}

	if !hadError {
		j.consecutiveErrors = 0
		j.backoffUntil = time.Time{}
	}

	j.logger.Info("座標補完サイクルが完了しました",
		slog.Int("targets", res.Targets),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
		slog.Bool("commit", j.config.Commit),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return res, nil
}

// QueryCandidates は住所欄から検索クエリの候補を優先順に組み立てる。
// 住所欄には備考（"|"以降）や複数の場所が含まれることがあるため、
// 先頭部分と", Berlin"を補ったものを順に試す。
func QueryCandidates(s model.Shelter) []string {
	var candidates []string
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		for _, c := range candidates {
			if c == q {
				return
			}
		}
		candidates = append(candidates, q)
	}

	if s.Address != nil {
		if raw := strings.TrimSpace(*s.Address); raw != "" {
			first, _, _ := strings.Cut(raw, "|")
			first, _, _ = strings.Cut(strings.TrimSpace(first), "\n")
			first = strings.TrimSpace(first)
			add(first)

			if strings.Contains(first, ",") && !strings.Contains(first, "Berlin") {
				head, _, _ := strings.Cut(first, ",")
				add(strings.TrimSpace(head) + ", Berlin")
			}
		}
	}

	if s.Street != nil {
		if street := strings.TrimSpace(*s.Street); street != "" {
			add(street)
			if !strings.Contains(street, "Berlin") && strings.Contains(street, ",") {
				add(street + ", Berlin")
			}
		}
	}

	return candidates
}

// calculateErrorBackoff は連続エラー回数に基づくバックオフ時間を計算する。
// 3回連続: 30分、5回連続: 1時間、10回連続: 6時間。
func calculateErrorBackoff(consecutiveErrors int) time.Duration {
	switch {
	case consecutiveErrors >= 10:
		return 6 * time.Hour
	case consecutiveErrors >= 5:
		return 1 * time.Hour
	case consecutiveErrors >= 3:
		return 30 * time.Minute
	default:
		return 0
	}
}
