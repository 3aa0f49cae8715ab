package model

import "testing"

func TestDistricts_AllValidWithLabels(t *testing.T) {
	all := Districts()
	if len(all) != 12 {
		t.Fatalf("len(Districts()) = %d, want 12", len(all))
	}
	for _, d := range all {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
		back, ok := DistrictFromLabel(d.Label())
		if !ok || back != d {
			t.Errorf("DistrictFromLabel(%q) = (%q, %v), want (%q, true)", d.Label(), back, ok, d)
		}
	}
}

func TestParseDistrict(t *testing.T) {
	if d, ok := ParseDistrict("tempelhof_schoeneberg"); !ok || d != DistrictTempelhofSchoeneberg {
		t.Errorf("ParseDistrict() = (%q, %v)", d, ok)
	}
	if _, ok := ParseDistrict("Mitte"); ok {
		t.Error("表示名はパースできないべき")
	}
	if got := District("potsdam").Label(); got != "potsdam" {
		t.Errorf("未知の行政区の Label() = %q, want potsdam", got)
	}
}

func TestDistrictFromLabel_GeoJSONNames(t *testing.T) {
	d, ok := DistrictFromLabel("Friedrichshain-Kreuzberg")
	if !ok || d != DistrictFriedrichshainKreuzberg {
		t.Errorf("DistrictFromLabel() = (%q, %v)", d, ok)
	}
	if _, ok := DistrictFromLabel("Potsdam"); ok {
		t.Error("未知の地区名は false を返すべき")
	}
}

func TestCategories(t *testing.T) {
	all := Categories()
	if len(all) != 9 {
		t.Fatalf("len(Categories()) = %d, want 9", len(all))
	}
	for _, c := range all {
		if _, ok := ParseCategory(string(c)); !ok {
			t.Errorf("ParseCategory(%q) failed", c)
		}
	}
	if CategoryEmergencyOvernight.Label() != "Notübernachtung" {
		t.Errorf("Label() = %q", CategoryEmergencyOvernight.Label())
	}
	if _, ok := ParseCategory("hotel"); ok {
		t.Error("未知の種別はパースできないべき")
	}
}

func TestParseCapacityStatus(t *testing.T) {
	for _, s := range []string{"plenty", "little", "none"} {
		if got, ok := ParseCapacityStatus(s); !ok || string(got) != s {
			t.Errorf("ParseCapacityStatus(%q) = (%q, %v)", s, got, ok)
		}
	}
	if got, ok := ParseCapacityStatus("full"); ok || got != StatusUnknown {
		t.Errorf("ParseCapacityStatus(full) = (%q, %v), want (\"\", false)", got, ok)
	}
}

func TestShelterLocation(t *testing.T) {
	lat, lng := 52.52, 13.40
	if _, ok := (Shelter{Lat: &lat}).Location(); ok {
		t.Error("経度がない施設は false を返すべき")
	}
	p, ok := (Shelter{Lat: &lat, Lng: &lng}).Location()
	if !ok || p.Lat != lat || p.Lng != lng {
		t.Errorf("Location() = (%+v, %v)", p, ok)
	}
}
