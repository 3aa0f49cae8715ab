// Package geo はベルリン行政区の境界データ（GeoJSON）を読み込み、
// 座標がどの行政区に含まれるかを判定する。
package geo

import (
	"github.com/paulmach/orb"

	"github.com/warmebetten/sheltermap/internal/model"
)

// PointInRing はレイキャスティング（偶奇規則）で点がリング内にあるかを判定する。
// 境界上の点の扱いは規定しない。
func PointInRing(p model.Point, ring orb.Ring) bool {
	x, y := p.Lng, p.Lat
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PointInPolygon は点が外周リング内にあり、かついずれの穴にも含まれない場合にtrueを返す。
func PointInPolygon(p model.Point, polygon orb.Polygon) bool {
	if len(polygon) == 0 {
		return false
	}
	if !PointInRing(p, polygon[0]) {
		return false
	}
	for _, hole := range polygon[1:] {
		if PointInRing(p, hole) {
			return false
		}
	}
	return true
}

// District は1つの行政区の境界を表す。
type District struct {
	Name     string
	Polygons orb.MultiPolygon
	bound    orb.Bound
}

// NewDistrict は境界の外接矩形を事前計算したDistrictを生成する。
func NewDistrict(name string, polygons orb.MultiPolygon) District {
	return District{Name: name, Polygons: polygons, bound: polygons.Bound()}
}

// Contains は点が行政区のいずれかのポリゴンに含まれるかを返す。
func (d District) Contains(p model.Point) bool {
	if len(d.Polygons) == 0 {
		return false
	}
	bound := d.bound
	if bound == (orb.Bound{}) {
		// リテラルで生成された場合は外接矩形が未計算
		bound = d.Polygons.Bound()
	}
	if !bound.Contains(orb.Point{p.Lng, p.Lat}) {
		return false
	}
	for _, poly := range d.Polygons {
		if PointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

// Locate は点を含む最初の行政区の名前を返す。該当なしの場合はfalseを返す。
func Locate(p model.Point, districts []District) (string, bool) {
	for _, d := range districts {
		if d.Contains(p) {
			return d.Name, true
		}
	}
	return "", false
}
