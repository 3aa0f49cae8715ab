package filter

import (
	"net/url"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/openhours"
)

// クエリパラメータのキー
const (
	keyQuery       = "q"
	keyCapacity    = "capacity"
	keyLegacyBeds  = "betten"
	keyOpenFrom    = "openFrom"
	keyOpenTo      = "openTo"
	keyMobile      = "mobile"
	keyCategory    = "typ"
	keyDistrict    = "bezirk"
	keyMeals       = "bietet_essen"
	keyShower      = "bietet_dusche"
	keySupervision = "bietet_betreuung"
	keyClothing    = "bietet_kleidung"
	keyMedical     = "bietet_medizin"
)

// Decode はクエリパラメータからStateを組み立てる。
// 不正な値はエラーにせず、各項目の初期値にフォールバックする。
func Decode(values url.Values) State {
	s := Default()

	// qは入力途中の空白を保つためtrimしない
	s.Query = values.Get(keyQuery)

	if raw, ok := values[keyCapacity]; ok && len(raw) > 0 {
		if c, ok := ParseCapacityFilter(raw[0]); ok {
			s.Capacity = c
		}
	} else {
		s.Capacity = decodeLegacyBeds(values.Get(keyLegacyBeds))
	}

	s.Window = openhours.Window{
		From: decodeClock(values.Get(keyOpenFrom)),
		To:   decodeClock(values.Get(keyOpenTo)),
	}
	s.ShowMobile = values.Get(keyMobile) == "1"

	var categories []model.Category
	for _, v := range values[keyCategory] {
		if c, ok := model.ParseCategory(v); ok {
			categories = append(categories, c)
		}
	}
	s.Categories = dedupe(categories)

	var districts []model.District
	for _, v := range values[keyDistrict] {
		if d, ok := model.ParseDistrict(v); ok {
			districts = append(districts, d)
		}
	}
	s.Districts = dedupe(districts)

	s.Offers = Offers{
		Meals:       values.Get(keyMeals) == "1",
		Shower:      values.Get(keyShower) == "1",
		Supervision: values.Get(keySupervision) == "1",
		Clothing:    values.Get(keyClothing) == "1",
		Medical:     values.Get(keyMedical) == "1",
	}
	return s
}

// decodeLegacyBeds は旧形式の betten=free|full を変換する。
func decodeLegacyBeds(v string) CapacityFilter {
	switch v {
	case "free":
		return CapacityPlenty
	case "full":
		return CapacityNone
	default:
		return CapacityAny
	}
}

// decodeClock は解釈可能な時刻のみを残す。
func decodeClock(v string) string {
	if _, ok := openhours.ParseClockTime(v); !ok {
		return ""
	}
	return v
}

// Encode はStateをクエリパラメータに変換する。初期値の項目は出力しない。
func Encode(s State) url.Values {
	values := url.Values{}
	if s.Query != "" {
		values.Set(keyQuery, s.Query)
	}
	if s.Capacity != CapacityAny && s.Capacity != "" {
		values.Set(keyCapacity, string(s.Capacity))
	}
	if s.Window.From != "" {
		values.Set(keyOpenFrom, s.Window.From)
	}
	if s.Window.To != "" {
		values.Set(keyOpenTo, s.Window.To)
	}
	if s.ShowMobile {
		values.Set(keyMobile, "1")
	}
	for _, c := range s.Categories {
		values.Add(keyCategory, string(c))
	}
	for _, d := range s.Districts {
		values.Add(keyDistrict, string(d))
	}

	flags := []struct {
		key string
		on  bool
	}{
		{keyMeals, s.Offers.Meals},
		{keyShower, s.Offers.Shower},
		{keySupervision, s.Offers.Supervision},
		{keyClothing, s.Offers.Clothing},
		{keyMedical, s.Offers.Medical},
	}
	for _, f := range flags {
		if f.on {
			values.Set(f.key, "1")
		}
	}
	return values
}

// EncodeQuery はStateをURLクエリ文字列に変換する。
func EncodeQuery(s State) string {
	return Encode(s).Encode()
}
