// Package filter は地図の絞り込み条件（URLクエリと相互変換される）と
// 施設一覧への適用ロジックを提供する。
//
// Stateは値として扱い、更新は常に新しいStateを返す。
// URLクエリが唯一の正であり、StateはDecodeで都度組み立て直す派生値である。
package filter

import (
	"slices"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/openhours"
)

// CapacityFilter は空き状況フィルタの選択値。
type CapacityFilter string

const (
	CapacityAny     CapacityFilter = "any"
	CapacityPlenty  CapacityFilter = "plenty"
	CapacityLittle  CapacityFilter = "little"
	CapacityNone    CapacityFilter = "none"
	CapacityUnknown CapacityFilter = "unknown"
)

// ParseCapacityFilter は文字列をCapacityFilterに変換する。未知の値はfalseを返す。
func ParseCapacityFilter(s string) (CapacityFilter, bool) {
	switch CapacityFilter(s) {
	case CapacityAny, CapacityPlenty, CapacityLittle, CapacityNone, CapacityUnknown:
		return CapacityFilter(s), true
	default:
		return CapacityAny, false
	}
}

// target はフィルタ値に対応する施設ステータスを返す。
func (c CapacityFilter) target() model.CapacityStatus {
	switch c {
	case CapacityPlenty:
		return model.StatusPlenty
	case CapacityLittle:
		return model.StatusLittle
	case CapacityNone:
		return model.StatusNone
	default:
		return model.StatusUnknown
	}
}

// Offers は提供サービスのフィルタ。trueの項目のみ条件として扱う。
type Offers struct {
	Meals       bool
	Shower      bool
	Supervision bool
	Clothing    bool
	Medical     bool
}

// IsZero はいずれのサービスも選択されていない場合にtrueを返す。
func (o Offers) IsZero() bool {
	return o == Offers{}
}

// State は地図の絞り込み条件を表す。
// 空のスライスは常にnilで表現し、Default()と構造的に比較できるようにする。
type State struct {
	Query      string
	Categories []model.Category
	Districts  []model.District
	Capacity   CapacityFilter
	Window     openhours.Window
	ShowMobile bool
	Offers     Offers
}

// Default は初期状態を返す。
func Default() State {
	return State{Capacity: CapacityAny}
}

// IsDirty はURLにエンコードした結果が初期状態と異なる場合にtrueを返す。
func IsDirty(s State) bool {
	return EncodeQuery(s) != EncodeQuery(Default())
}

// Equal は2つのStateが構造的に等しいかを返す。
func Equal(a, b State) bool {
	return a.Query == b.Query &&
		slices.Equal(a.Categories, b.Categories) &&
		slices.Equal(a.Districts, b.Districts) &&
		a.Capacity == b.Capacity &&
		a.Window == b.Window &&
		a.ShowMobile == b.ShowMobile &&
		a.Offers == b.Offers
}

// WithDistricts は行政区を追加したStateを返す。既に含まれる行政区は無視する。
func (s State) WithDistricts(districts ...model.District) State {
	next := s
	next.Districts = dedupe(append(slices.Clone(s.Districts), districts...))
	return next
}

// WithoutDistricts は指定した行政区を除いたStateを返す。
func (s State) WithoutDistricts(districts ...model.District) State {
	next := s
	var kept []model.District
	for _, d := range s.Districts {
		if !slices.Contains(districts, d) {
			kept = append(kept, d)
		}
	}
	next.Districts = kept
	return next
}

// WithDefaultDistrict は行政区が未選択の場合に限り、指定した行政区を選択したStateを返す。
// 利用者が既に選択している場合は変更しない。
func (s State) WithDefaultDistrict(d model.District) State {
	if len(s.Districts) > 0 || !d.Valid() {
		return s
	}
	return s.WithDistricts(d)
}

// WithCapacity は空き状況フィルタを変更したStateを返す。
func (s State) WithCapacity(c CapacityFilter) State {
	next := s
	next.Capacity = c
	return next
}

// Reset は初期状態を返す。
func (s State) Reset() State {
	return Default()
}

// dedupe は最初の出現順を保って重複を取り除く。空の場合はnilを返す。
func dedupe[T comparable](in []T) []T {
	var out []T
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
