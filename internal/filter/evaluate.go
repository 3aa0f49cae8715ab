package filter

import (
	"slices"
	"strings"

	"github.com/warmebetten/sheltermap/internal/capacity"
	"github.com/warmebetten/sheltermap/internal/model"
)

// Apply は条件に一致する施設を元の順序のまま返す。
// テキスト・種別・行政区・空き状況・提供サービス・時間帯の各条件はすべてANDで評価する。
func Apply(shelters []model.Shelter, s State) []model.Shelter {
	m := newMatcher(s)
	out := make([]model.Shelter, 0, len(shelters))
	for _, sh := range shelters {
		if m.match(sh) {
			out = append(out, sh)
		}
	}
	return out
}

// ApplyMobile は移動支援（IsMobile）の施設のみを対象に、行政区条件を除いて評価する。
// ShowMobileがfalseの場合は空を返す。
func ApplyMobile(shelters []model.Shelter, s State) []model.Shelter {
	if !s.ShowMobile {
		return []model.Shelter{}
	}
	mobile := make([]model.Shelter, 0)
	for _, sh := range shelters {
		if sh.IsMobile {
			mobile = append(mobile, sh)
		}
	}
	stripped := s
	stripped.Districts = nil
	return Apply(mobile, stripped)
}

// Matches は単一の施設が条件に一致するかを返す。
func Matches(sh model.Shelter, s State) bool {
	return newMatcher(s).match(sh)
}

// matcher は一覧評価の間で使い回す正規化済みの条件。
type matcher struct {
	state State
	query string
}

func newMatcher(s State) matcher {
	return matcher{
		state: s,
		query: strings.ToLower(strings.TrimSpace(s.Query)),
	}
}

func (m matcher) match(sh model.Shelter) bool {
	s := m.state

	if m.query != "" && !strings.Contains(haystack(sh), m.query) {
		return false
	}

	if len(s.Categories) > 0 && (sh.Category == nil || !slices.Contains(s.Categories, *sh.Category)) {
		return false
	}
	if len(s.Districts) > 0 && (sh.District == nil || !slices.Contains(s.Districts, *sh.District)) {
		return false
	}

	if s.Capacity != CapacityAny && s.Capacity != "" {
		// 空き状況は緊急宿泊のみが対象
		if sh.Category == nil || *sh.Category != model.CategoryEmergencyOvernight {
			return false
		}
		if capacity.ForShelter(sh) != s.Capacity.target() {
			return false
		}
	}

	if !matchOffers(sh, s.Offers) {
		return false
	}

	if s.Window.Active() && !s.Window.Matches(sh.OpenFrom, sh.OpenTo) {
		return false
	}
	return true
}

func matchOffers(sh model.Shelter, o Offers) bool {
	if o.Meals && !sh.OffersMeals {
		return false
	}
	if o.Shower && !sh.OffersShower {
		return false
	}
	if o.Supervision && !sh.OffersSupervision {
		return false
	}
	if o.Clothing && !sh.OffersClothing {
		return false
	}
	if o.Medical && !sh.OffersMedical {
		return false
	}
	return true
}

// haystack はテキスト検索の対象文字列（名前・住所・行政区・種別）を組み立てる。
func haystack(sh model.Shelter) string {
	parts := []string{sh.Name, "", "", ""}
	if sh.Address != nil {
		parts[1] = *sh.Address
	}
	if sh.District != nil {
		parts[2] = string(*sh.District)
	}
	if sh.Category != nil {
		parts[3] = string(*sh.Category)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
