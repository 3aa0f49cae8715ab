package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/warmebetten/sheltermap/internal/model"
)

// NameProperty は行政区名を保持するGeoJSONプロパティのキー。
const NameProperty = "Gemeinde_name"

// ParseDistricts はGeoJSONのFeatureCollectionから行政区の境界を読み込む。
// 名前またはポリゴン形状を持たないFeatureは読み飛ばす。
func ParseDistricts(data []byte) ([]District, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse district geojson: %w", err)
	}

	districts := make([]District, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		name, ok := f.Properties[NameProperty].(string)
		if !ok || name == "" {
			continue
		}

		var polygons orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			polygons = g
		default:
			continue
		}
		districts = append(districts, NewDistrict(name, polygons))
	}
	return districts, nil
}

// Boundaries は読み込んだ行政区境界と元のGeoJSONを保持する。
// 読み込み後は不変であり、並行して参照してよい。
type Boundaries struct {
	raw       []byte
	districts []District
}

// NewBoundaries はGeoJSONのバイト列からBoundariesを生成する。
func NewBoundaries(data []byte) (*Boundaries, error) {
	districts, err := ParseDistricts(data)
	if err != nil {
		return nil, err
	}
	return &Boundaries{raw: data, districts: districts}, nil
}

// LoadFile はGeoJSONファイルを読み込む。
func LoadFile(path string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read district geojson %s: %w", path, err)
	}
	return NewBoundaries(data)
}

// Raw は元のGeoJSONを返す。
func (b *Boundaries) Raw() []byte {
	return b.raw
}

// Districts は読み込んだ行政区の一覧を返す。
func (b *Boundaries) Districts() []District {
	return b.districts
}

// Resolve は点を含む行政区を列挙値として返す。
// 該当なし、または名前が既知の行政区に対応しない場合はfalseを返す。
func (b *Boundaries) Resolve(p model.Point) (model.District, bool) {
	if b == nil {
		return "", false
	}
	name, ok := Locate(p, b.districts)
	if !ok {
		return "", false
	}
	return model.DistrictFromLabel(name)
}
