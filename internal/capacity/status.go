// Package capacity は施設の空き状況を信号機形式の単一ステータスに集約する。
// 旧スキーマ（betten_frei / plaetze_frei_aktuell）はアダプタ経由で同じ型に変換し、
// 評価側は常にmodel.CapacityStatusのみを扱う。
package capacity

import "github.com/warmebetten/sheltermap/internal/model"

// Fields はKältehilfe由来の4つの空き状況フィールドを表す。
type Fields struct {
	Overall model.CapacityStatus
	Men     model.CapacityStatus
	Women   model.CapacityStatus
	Diverse model.CapacityStatus
}

// LegacyFields は旧スキーマの定員情報を表す。
type LegacyFields struct {
	BedsFree    *bool
	FreeNow     int
	MaxCapacity int
}

// Derive は4つのフィールドから単一のステータスを導出する。
//
// 優先順位: いずれかがplenty → plenty、いずれかがlittle → little、
// 設定値が1つ以上あれば none、すべて未設定なら StatusUnknown。
func Derive(f Fields) model.CapacityStatus {
	set := 0
	hasLittle := false
	for _, v := range []model.CapacityStatus{f.Overall, f.Men, f.Women, f.Diverse} {
		if v == model.StatusUnknown {
			continue
		}
		set++
		switch v {
		case model.StatusPlenty:
			return model.StatusPlenty
		case model.StatusLittle:
			hasLittle = true
		}
	}
	if set == 0 {
		return model.StatusUnknown
	}
	if hasLittle {
		return model.StatusLittle
	}
	return model.StatusNone
}

// FromLegacy は旧スキーマの定員情報をステータスに変換する。
// 最大定員が0の施設は定員の概念がないものとして StatusUnknown を返す。
// betten_frei が未設定の場合も空き情報なしとして StatusUnknown を返す。
func FromLegacy(f LegacyFields) model.CapacityStatus {
	if f.MaxCapacity == 0 {
		return model.StatusUnknown
	}
	// betten_frei未設定は空き情報なし
	if f.BedsFree == nil {
		return model.StatusUnknown
	}
	if *f.BedsFree {
		return model.StatusPlenty
	}
	return model.StatusNone
}

// ForShelter は施設のステータスを返す。
// Kältehilfeのフィールドが1つでも設定されていればそちらを優先し、
// なければ旧スキーマのアダプタにフォールバックする。
func ForShelter(s model.Shelter) model.CapacityStatus {
	f := Fields{
		Overall: s.CapacityOverall,
		Men:     s.CapacityMen,
		Women:   s.CapacityWomen,
		Diverse: s.CapacityDiverse,
	}
	if status := Derive(f); status != model.StatusUnknown {
		return status
	}
	return FromLegacy(LegacyFields{
		BedsFree:    s.BedsFree,
		FreeNow:     s.FreeNow,
		MaxCapacity: s.MaxCapacity,
	})
}

// Label はUI表示用のラベルを返す。
func Label(status model.CapacityStatus) string {
	switch status {
	case model.StatusPlenty:
		return "Viele Plätze"
	case model.StatusLittle:
		return "Wenige Plätze"
	case model.StatusNone:
		return "Keine Plätze"
	default:
		return "Kapazität unbekannt"
	}
}

// Color は地図マーカーの色を返す。不明の場合は空文字列（種別の色を使う）。
func Color(status model.CapacityStatus) string {
	switch status {
	case model.StatusPlenty:
		return "#22c55e"
	case model.StatusLittle:
		return "#f97316"
	case model.StatusNone:
		return "#ef4444"
	default:
		return ""
	}
}
