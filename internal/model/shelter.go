// Package model はドメインモデルを定義する。
package model

import "time"

// CapacityStatus はKältehilfeの信号機形式の空き状況を表す。
// 空文字列は「不明」（未設定）を意味する。
type CapacityStatus string

const (
	// StatusUnknown は空き状況が不明であることを示す。
	StatusUnknown CapacityStatus = ""
	// StatusPlenty は空きが多い状態（緑）。
	StatusPlenty CapacityStatus = "plenty"
	// StatusLittle は空きが少ない状態（オレンジ）。
	StatusLittle CapacityStatus = "little"
	// StatusNone は空きがない状態（赤）。
	StatusNone CapacityStatus = "none"
)

// ParseCapacityStatus は文字列をCapacityStatusに変換する。
// 未知の値はStatusUnknownとfalseを返す。
func ParseCapacityStatus(s string) (CapacityStatus, bool) {
	switch CapacityStatus(s) {
	case StatusPlenty, StatusLittle, StatusNone:
		return CapacityStatus(s), true
	default:
		return StatusUnknown, false
	}
}

// Point は経度・緯度の組を表す。GeoJSONと同じ[lng, lat]の順序で扱う。
type Point struct {
	Lng float64
	Lat float64
}

// Shelter は地図に表示する支援施設（Unterkunft）を表す。
// コアロジックからは読み取り専用として扱う。
type Shelter struct {
	ID       string
	Name     string
	Address  *string
	Street   *string
	District *District
	Category *Category
	Lat      *float64
	Lng      *float64
	IsMobile bool

	// 提供サービス
	OffersMeals       bool
	OffersShower      bool
	OffersMedical     bool
	OffersClothing    bool
	OffersSupervision bool
	Accessible        bool

	// ハウスルール
	NoDrugs    bool
	NoPets     bool
	NoViolence bool

	// 開館時間（DBのtime型 "HH:MM:SS"）
	OpenFrom      *string
	OpenTo        *string
	LastAdmission *string

	// 連絡先
	Phones   []string
	Emails   []string
	Website  *string
	Metadata *string

	// 旧スキーマの定員情報
	BedsFree    *bool
	FreeNow     int
	MaxCapacity int

	// Kältehilfeの空き状況（全体・男性・女性・ダイバース）
	CapacityOverall   CapacityStatus
	CapacityMen       CapacityStatus
	CapacityWomen     CapacityStatus
	CapacityDiverse   CapacityStatus
	CapacityCheckedAt *time.Time
	CapacitySourceURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location は座標が揃っている場合にPointとtrueを返す。
// 座標がない施設は地図配置や地区判定の対象外となる。
func (s Shelter) Location() (Point, bool) {
	if s.Lat == nil || s.Lng == nil {
		return Point{}, false
	}
	return Point{Lng: *s.Lng, Lat: *s.Lat}, true
}

// CapacityUpdate はスクレイパーが書き込むKältehilfeの空き状況を表す。
type CapacityUpdate struct {
	Overall   CapacityStatus
	Men       CapacityStatus
	Women     CapacityStatus
	Diverse   CapacityStatus
	SourceURL string
	CheckedAt time.Time
}
