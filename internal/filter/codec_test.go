package filter

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/openhours"
)

// TestDefaultRoundTrip は初期状態のエンコード結果が空であり、空のクエリが初期状態に戻ることをテストする。
func TestDefaultRoundTrip(t *testing.T) {
	if got := Encode(Default()); len(got) != 0 {
		t.Errorf("Encode(Default()) = %v, want empty", got)
	}
	if got := Decode(url.Values{}); !reflect.DeepEqual(got, Default()) {
		t.Errorf("Decode({}) = %+v, want %+v", got, Default())
	}
	if IsDirty(Decode(url.Values{})) {
		t.Error("空のクエリは dirty ではないべき")
	}
}

func TestDecode_AllKeys(t *testing.T) {
	values := url.Values{
		"q":                {"Stadtmission "},
		"capacity":         {"little"},
		"openFrom":         {"22:00"},
		"openTo":           {"06:00"},
		"mobile":           {"1"},
		"typ":              {"notuebernachtung", "nachtcafe"},
		"bezirk":           {"neukoelln"},
		"bietet_essen":     {"1"},
		"bietet_dusche":    {"true"},
		"bietet_betreuung": {"1"},
		"bietet_kleidung":  {"0"},
		"bietet_medizin":   {"1"},
	}

	got := Decode(values)
	want := State{
		Query:      "Stadtmission ",
		Categories: []model.Category{model.CategoryEmergencyOvernight, model.CategoryNightCafe},
		Districts:  []model.District{model.DistrictNeukoelln},
		Capacity:   CapacityLittle,
		Window:     openhours.Window{From: "22:00", To: "06:00"},
		ShowMobile: true,
		Offers:     Offers{Meals: true, Supervision: true, Medical: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
	if !IsDirty(got) {
		t.Error("条件付きの State は dirty であるべき")
	}
}

// TestDecode_GarbageFallsBack は不正な値が初期値にフォールバックすることをテストする。
func TestDecode_GarbageFallsBack(t *testing.T) {
	values := url.Values{
		"capacity": {"lots"},
		"openFrom": {"25:00"},
		"mobile":   {"yes"},
		"typ":      {"hotel", "hygiene"},
		"bezirk":   {"potsdam"},
	}

	got := Decode(values)
	if got.Capacity != CapacityAny {
		t.Errorf("Capacity = %q, want %q", got.Capacity, CapacityAny)
	}
	if got.Window.From != "" {
		t.Errorf("Window.From = %q, want empty", got.Window.From)
	}
	if got.ShowMobile {
		t.Error("mobile=yes は false であるべき")
	}
	if !reflect.DeepEqual(got.Categories, []model.Category{model.CategoryHygiene}) {
		t.Errorf("Categories = %v, want [hygiene]", got.Categories)
	}
	if got.Districts != nil {
		t.Errorf("Districts = %v, want nil", got.Districts)
	}
}

func TestDecode_DedupesKeepingFirstOccurrence(t *testing.T) {
	values := url.Values{
		"bezirk": {"pankow", "mitte", "pankow", "spandau", "mitte"},
	}
	want := []model.District{model.DistrictPankow, model.DistrictMitte, model.DistrictSpandau}
	if got := Decode(values).Districts; !reflect.DeepEqual(got, want) {
		t.Errorf("Districts = %v, want %v", got, want)
	}
}

// TestDecode_LegacyBeds は旧形式の betten パラメータの変換と優先順位をテストする。
func TestDecode_LegacyBeds(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   CapacityFilter
	}{
		{"free", url.Values{"betten": {"free"}}, CapacityPlenty},
		{"full", url.Values{"betten": {"full"}}, CapacityNone},
		{"any", url.Values{"betten": {"any"}}, CapacityAny},
		{"不正値", url.Values{"betten": {"maybe"}}, CapacityAny},
		{"capacityが優先", url.Values{"betten": {"free"}, "capacity": {"unknown"}}, CapacityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.values).Capacity; got != tt.want {
				t.Errorf("Capacity = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestDecode_Idempotent は decode(encode(decode(qp))) == decode(qp) をテストする。
func TestDecode_Idempotent(t *testing.T) {
	inputs := []url.Values{
		{},
		{"q": {"  Bahnhof  "}},
		{"betten": {"full"}, "typ": {"beratung", "beratung", "xyz"}},
		{"openTo": {" 7:30 "}, "mobile": {"1"}, "bietet_medizin": {"1"}},
		{"bezirk": {"lichtenberg", "", "mitte"}, "capacity": {"none"}, "openFrom": {"aa"}},
		{"unrelated": {"1"}, "q": {""}},
	}

	for _, qp := range inputs {
		first := Decode(qp)
		second := Decode(Encode(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("idempotence violated for %v: %+v != %+v", qp, first, second)
		}
	}
}

func TestEncode_OmitsDefaults(t *testing.T) {
	s := Default()
	s.Offers.Shower = true
	s.Districts = []model.District{model.DistrictMitte, model.DistrictPankow}

	got := Encode(s)
	want := url.Values{
		"bietet_dusche": {"1"},
		"bezirk":        {"mitte", "pankow"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncode_QueryNotTrimmed(t *testing.T) {
	s := Default()
	s.Query = "foo "
	if got := Encode(s).Get("q"); got != "foo " {
		t.Errorf("q = %q, want %q", got, "foo ")
	}
}
