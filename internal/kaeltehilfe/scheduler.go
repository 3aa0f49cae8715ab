package kaeltehilfe

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// MetricsRecorder はスクレイピングのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordScrapeSuccess()
	RecordScrapeFailure(reason string)
	RecordSourceStatus(statusCode int)
	RecordScrapeLatency(duration time.Duration)
	RecordCapacityMatches(matched, unmatched int)
}

// Runner は1回分の反映処理。通常は*Job。
type Runner interface {
	RunOnce(ctx context.Context) (Result, error)
}

// Scheduler はRunnerを定期実行し、取得元のエラーに応じて次回実行を遅らせる。
type Scheduler struct {
	runner            Runner
	metrics           MetricsRecorder
	logger            *slog.Logger
	consecutiveErrors int
	backoffUntil      time.Time
	now               func() time.Time
}

// NewScheduler はSchedulerを生成する。metricsはnilでもよい。
func NewScheduler(runner Runner, metrics MetricsRecorder, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Start は起動直後に1回実行し、その後interval間隔で実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("空き状況スクレイパーを開始しました", slog.Duration("interval", interval))

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("空き状況スクレイパーを停止しました")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("空き状況スクレイピングに失敗しました", slog.String("error", err.Error()))
	}
}

// RunOnce はバックオフ中でなければRunnerを1回実行する。
// 429/5xxと通信エラーは指数バックオフ、404/403などは次回の定期実行まで待つ。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.backoffUntil.IsZero() && s.now().Before(s.backoffUntil) {
		s.logger.Info("バックオフ中のためスキップします", slog.Time("backoff_until", s.backoffUntil))
		return nil
	}

	start := s.now()
	res, err := s.runner.RunOnce(ctx)
	if s.metrics != nil {
		s.metrics.RecordScrapeLatency(s.now().Sub(start))
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		reason := "request"
		var se *StatusError
		if errors.As(err, &se) {
			reason = se.Disposition().String()
			if s.metrics != nil {
				s.metrics.RecordSourceStatus(se.StatusCode)
			}
		}
		if s.metrics != nil {
			s.metrics.RecordScrapeFailure(reason)
		}

		if se == nil || se.Disposition() == DispositionBackoff {
			delay := RetryDelay(s.consecutiveErrors)
			s.consecutiveErrors++
			s.backoffUntil = s.now().Add(delay)
			s.logger.Warn("取得元のエラーによりバックオフを適用します",
				slog.Int("consecutive_errors", s.consecutiveErrors),
				slog.Duration("backoff_duration", delay),
			)
		}
		return err
	}

	s.consecutiveErrors = 0
	s.backoffUntil = time.Time{}
	if s.metrics != nil {
		s.metrics.RecordSourceStatus(200)
		s.metrics.RecordScrapeSuccess()
		s.metrics.RecordCapacityMatches(res.Matched, res.Unmatched)
	}
	return nil
}
