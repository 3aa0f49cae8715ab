package model

// District はベルリンの12の行政区（Bezirk）を表す。
type District string

const (
	DistrictMitte                     District = "mitte"
	DistrictFriedrichshainKreuzberg   District = "friedrichshain_kreuzberg"
	DistrictPankow                    District = "pankow"
	DistrictCharlottenburgWilmersdorf District = "charlottenburg_wilmersdorf"
	DistrictSpandau                   District = "spandau"
	DistrictSteglitzZehlendorf        District = "steglitz_zehlendorf"
	DistrictTempelhofSchoeneberg      District = "tempelhof_schoeneberg"
	DistrictNeukoelln                 District = "neukoelln"
	DistrictTreptowKoepenick          District = "treptow_koepenick"
	DistrictMarzahnHellersdorf        District = "marzahn_hellersdorf"
	DistrictLichtenberg               District = "lichtenberg"
	DistrictReinickendorf             District = "reinickendorf"
)

// Districts は全行政区を表示順で返す。
func Districts() []District {
	return []District{
		DistrictMitte,
		DistrictFriedrichshainKreuzberg,
		DistrictPankow,
		DistrictCharlottenburgWilmersdorf,
		DistrictSpandau,
		DistrictSteglitzZehlendorf,
		DistrictTempelhofSchoeneberg,
		DistrictNeukoelln,
		DistrictTreptowKoepenick,
		DistrictMarzahnHellersdorf,
		DistrictLichtenberg,
		DistrictReinickendorf,
	}
}

// districtLabels はUI表示名。GeoJSONのGemeinde_nameとも一致する。
var districtLabels = map[District]string{
	DistrictMitte:                     "Mitte",
	DistrictFriedrichshainKreuzberg:   "Friedrichshain-Kreuzberg",
	DistrictPankow:                    "Pankow",
	DistrictCharlottenburgWilmersdorf: "Charlottenburg-Wilmersdorf",
	DistrictSpandau:                   "Spandau",
	DistrictSteglitzZehlendorf:        "Steglitz-Zehlendorf",
	DistrictTempelhofSchoeneberg:      "Tempelhof-Schöneberg",
	DistrictNeukoelln:                 "Neukölln",
	DistrictTreptowKoepenick:          "Treptow-Köpenick",
	DistrictMarzahnHellersdorf:        "Marzahn-Hellersdorf",
	DistrictLichtenberg:               "Lichtenberg",
	DistrictReinickendorf:             "Reinickendorf",
}

// ParseDistrict は文字列をDistrictに変換する。未知の値はfalseを返す。
func ParseDistrict(s string) (District, bool) {
	d := District(s)
	if _, ok := districtLabels[d]; !ok {
		return "", false
	}
	return d, true
}

// Valid は定義済みの行政区かどうかを返す。
func (d District) Valid() bool {
	_, ok := districtLabels[d]
	return ok
}

// Label は表示名を返す。未知の値はそのまま返す。
func (d District) Label() string {
	if l, ok := districtLabels[d]; ok {
		return l
	}
	return string(d)
}

// DistrictFromLabel はGeoJSONの地区名（例: "Neukölln"）からDistrictを逆引きする。
func DistrictFromLabel(label string) (District, bool) {
	for d, l := range districtLabels {
		if l == label {
			return d, true
		}
	}
	return "", false
}

// Category は支援施設の種別（Unterkunft-Typ）を表す。
type Category string

const (
	// CategoryEmergencyOvernight は緊急宿泊（Notübernachtung）。空き状況フィルタの対象。
	CategoryEmergencyOvernight Category = "notuebernachtung"
	CategoryNightCafe          Category = "nachtcafe"
	CategoryDayServices        Category = "tagesangebote"
	CategoryMeals              Category = "essen_verpflegung"
	CategoryMedicalAid         Category = "medizinische_hilfen"
	CategoryAddiction          Category = "suchtangebote"
	CategoryCounseling         Category = "beratung"
	CategoryHygiene            Category = "hygiene"
	CategoryClothingBank       Category = "kleiderkammer"
)

// Categories は全種別を表示順で返す。
func Categories() []Category {
	return []Category{
		CategoryEmergencyOvernight,
		CategoryNightCafe,
		CategoryDayServices,
		CategoryMeals,
		CategoryMedicalAid,
		CategoryAddiction,
		CategoryCounseling,
		CategoryHygiene,
		CategoryClothingBank,
	}
}

var categoryLabels = map[Category]string{
	CategoryEmergencyOvernight: "Notübernachtung",
	CategoryNightCafe:          "Nachtcafé",
	CategoryDayServices:        "Tagesangebote",
	CategoryMeals:              "Essen / Verpflegung",
	CategoryMedicalAid:         "Medizinische Hilfen",
	CategoryAddiction:          "Suchtangebote",
	CategoryCounseling:         "Beratung",
	CategoryHygiene:            "Hygiene",
	CategoryClothingBank:       "Kleiderkammer",
}

// ParseCategory は文字列をCategoryに変換する。未知の値はfalseを返す。
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", false
	}
	return c, true
}

// Valid は定義済みの種別かどうかを返す。
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label は表示名を返す。
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}
