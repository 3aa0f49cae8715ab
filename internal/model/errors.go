// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, shelter, geo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidShelterID     = "INVALID_SHELTER_ID"
	ErrCodeShelterNotFound      = "SHELTER_NOT_FOUND"
	ErrCodeInvalidCoordinates   = "INVALID_COORDINATES"
	ErrCodeDistrictsUnavailable = "DISTRICTS_UNAVAILABLE"
	ErrCodeGeocodeFailed        = "GEOCODE_FAILED"
	ErrCodeRateLimited          = "RATE_LIMITED"
)

// NewInvalidShelterIDError は不正な施設IDエラーを生成する。
func NewInvalidShelterIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidShelterID,
		Message:  fmt.Sprintf("Ungültige Unterkunfts-ID: %s", id),
		Category: "validation",
		Action:   "Bitte eine gültige ID (UUID) angeben.",
	}
}

// NewShelterNotFoundError は施設未検出エラーを生成する。
func NewShelterNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeShelterNotFound,
		Message:  fmt.Sprintf("Unterkunft nicht gefunden: %s", id),
		Category: "shelter",
		Action:   "Bitte die Karte neu laden.",
	}
}

// NewInvalidCoordinatesError は座標パラメータが不正な場合のエラーを生成する。
func NewInvalidCoordinatesError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCoordinates,
		Message:  fmt.Sprintf("Ungültige Koordinaten: %s", reason),
		Category: "validation",
		Action:   "lng und lat als Dezimalzahlen angeben.",
	}
}

// NewDistrictsUnavailableError は地区境界データを読み込めない場合のエラーを生成する。
func NewDistrictsUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeDistrictsUnavailable,
		Message:  "Bezirksgrenzen sind nicht verfügbar.",
		Category: "geo",
		Action:   "Bitte später erneut versuchen.",
	}
}

// NewGeocodeFailedError はジオコーディング上流のエラーを生成する。
func NewGeocodeFailedError(status int) *APIError {
	return &APIError{
		Code:     ErrCodeGeocodeFailed,
		Message:  fmt.Sprintf("Photon-Fehler (%d)", status),
		Category: "geo",
		Action:   "Adresse manuell eingeben oder später erneut versuchen.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Zu viele Anfragen.",
		Category: "system",
		Action:   "Bitte kurz warten und erneut versuchen.",
	}
}

// ルーティングで使用するエラーコード
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewNotFoundError は存在しないエンドポイントへのアクセスエラーを生成する。
func NewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  "Seite nicht gefunden.",
		Category: "system",
		Action:   "Adresse der Anfrage prüfen.",
	}
}

// NewMethodNotAllowedError は許可されていないHTTPメソッドのエラーを生成する。
// APIは読み取り専用のため、GET以外は受け付けない。
func NewMethodNotAllowedError() *APIError {
	return &APIError{
		Code:     ErrCodeMethodNotAllowed,
		Message:  "Methode nicht erlaubt.",
		Category: "system",
		Action:   "Nur GET-Anfragen verwenden.",
	}
}

// NewInternalError は内部エラーを生成する。詳細は利用者に返さない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Interner Fehler.",
		Category: "system",
		Action:   "Bitte später erneut versuchen.",
	}
}
