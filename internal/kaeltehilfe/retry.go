package kaeltehilfe

import (
	"fmt"
	"net/http"
	"time"
)

// Disposition は一覧ページの応答ステータスに対するスケジューラーの扱い。
type Disposition int

const (
	// DispositionOK は正常に取得できた。
	DispositionOK Disposition = iota
	// DispositionRejected は取得元が拒否またはページ削除を返した。
	// 再試行しても変わらないため、次の定期実行まで待つ。
	DispositionRejected
	// DispositionBackoff は取得元の過負荷または障害。間隔を空けて再試行する。
	DispositionBackoff
	// DispositionUnexpected はリダイレクトなど想定外の応答。
	DispositionUnexpected
)

var dispositionLabels = [...]string{
	DispositionOK:         "ok",
	DispositionRejected:   "rejected",
	DispositionBackoff:    "backoff",
	DispositionUnexpected: "unexpected",
}

// String はメトリクスのreasonラベルに使う。
func (d Disposition) String() string {
	if d < 0 || int(d) >= len(dispositionLabels) {
		return "unexpected"
	}
	return dispositionLabels[d]
}

// DispositionFor はステータスコードをスケジューラーの扱いに変換する。
func DispositionFor(statusCode int) Disposition {
	switch statusCode {
	case http.StatusOK:
		return DispositionOK
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return DispositionRejected
	case http.StatusTooManyRequests:
		return DispositionBackoff
	}
	if statusCode >= 500 {
		return DispositionBackoff
	}
	return DispositionUnexpected
}

// 一覧の取り込みは日次なので、再試行も分単位ではなく時間単位で空ける。
const (
	firstRetryDelay = 30 * time.Minute
	maxRetryDelay   = 12 * time.Hour
)

// RetryDelay は連続失敗回数failuresに対する待ち時間を返す。
// 0回目は30分で、以降1回ごとに倍になり12時間で頭打ちになる。
func RetryDelay(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	// 30分を5回倍にすると12時間を超える
	if failures >= 5 {
		return maxRetryDelay
	}
	return min(firstRetryDelay<<failures, maxRetryDelay)
}

// StatusError は一覧ページが200以外を返したことを表す。
type StatusError struct {
	StatusCode int
	// Start はページングのstartパラメーター
	Start int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kaeltehilfe listing returned status %d (start=%d)", e.StatusCode, e.Start)
}

// Disposition はステータスコードに対する扱いを返す。
func (e *StatusError) Disposition() Disposition {
	return DispositionFor(e.StatusCode)
}
