// Package expiry は古くなったKältehilfeの空き状況を失効させるジョブを提供する。
// 確認日時がTTLより古い施設の信号機ステータスをNULLに戻し、
// 古い情報が最新の空き状況として表示されないようにする。
package expiry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DefaultTTL は空き状況の有効期間。スクレイパーは1日1回動くため2日分の猶予を持たせる。
const DefaultTTL = 48 * time.Hour

// ExpiryJob は空き状況の失効ジョブ。何度実行しても結果は変わらない。
type ExpiryJob struct {
	db     Executor
	logger *slog.Logger
	TTL    time.Duration
}

// NewExpiryJob はExpiryJobを生成する。ttlが0以下の場合はDefaultTTLを使う。
func NewExpiryJob(db Executor, logger *slog.Logger, ttl time.Duration) *ExpiryJob {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ExpiryJob{
		db:     db,
		logger: logger,
		TTL:    ttl,
	}
}

// Run は確認日時がTTLより古い施設の4つのステータスをNULLにする。
// 取得元URLと確認日時は最後の確認の記録として残す。
func (j *ExpiryJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d seconds", int64(j.TTL.Seconds()))

	query := `UPDATE unterkuenfte SET
	    kaeltehilfe_capacity_status = NULL,
	    kaeltehilfe_capacity_status_men = NULL,
	    kaeltehilfe_capacity_status_women = NULL,
	    kaeltehilfe_capacity_status_diverse = NULL,
	    updated_at = now()
	 WHERE kaeltehilfe_capacity_checked_at < now() - $1::interval
	   AND (kaeltehilfe_capacity_status IS NOT NULL
	     OR kaeltehilfe_capacity_status_men IS NOT NULL
	     OR kaeltehilfe_capacity_status_women IS NOT NULL
	     OR kaeltehilfe_capacity_status_diverse IS NOT NULL)`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("空き状況の失効ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("ttl", j.TTL),
		)
		return fmt.Errorf("空き状況の失効処理に失敗: %w", err)
	}

	expired, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}

	j.logger.Info("空き状況の失効ジョブが完了しました",
		slog.Int64("expired_count", expired),
		slog.Duration("ttl", j.TTL),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// Start はRunを起動直後とinterval毎に実行する。ctxがキャンセルされるまでブロックする。
func (j *ExpiryJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("expiry job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("expiry job failed", slog.String("error", err.Error()))
			}
		}
	}
}
