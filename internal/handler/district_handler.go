package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/warmebetten/sheltermap/internal/middleware"
	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/shelter"
)

// districtCacheControl は行政区境界のキャッシュ指定。境界は年単位でしか変わらない。
const districtCacheControl = "public, max-age=86400, s-maxage=86400"

// DistrictLocator は座標から行政区を判定するインターフェース。
type DistrictLocator interface {
	Locate(values url.Values, p model.Point) (*shelter.LocateResult, error)
}

// DistrictHandler は行政区境界と行政区判定のHTTPハンドラー。
type DistrictHandler struct {
	locator DistrictLocator
	geojson []byte
}

// NewDistrictHandler はDistrictHandlerを生成する。
// geojsonが空の場合、境界の配信は503を返す。
func NewDistrictHandler(locator DistrictLocator, geojson []byte) *DistrictHandler {
	return &DistrictHandler{locator: locator, geojson: geojson}
}

// locateResponse は行政区判定のAPIレスポンス。該当なしの場合districtはnull。
type locateResponse struct {
	District *string `json:"district"`
	Label    *string `json:"label"`
	Query    string  `json:"query"`
}

// GetDistricts は行政区境界のGeoJSONをそのまま返す。
// GET /api/districts
func (h *DistrictHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	if len(h.geojson) == 0 {
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewDistrictsUnavailableError())
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", districtCacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(h.geojson)
}

// LocateDistrict は座標を含む行政区を判定し、絞り込み条件に反映したクエリを返す。
// GET /api/districts/locate?lng=&lat=
func (h *DistrictHandler) LocateDistrict(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	p, apiErr := parsePoint(values.Get("lng"), values.Get("lat"))
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	// 座標は絞り込み条件ではないため除いてから渡す
	values.Del("lng")
	values.Del("lat")

	res, err := h.locator.Locate(values, p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := locateResponse{Query: res.Query}
	if res.District != nil {
		d, label := string(*res.District), res.District.Label()
		resp.District, resp.Label = &d, &label
	}
	writeJSON(w, http.StatusOK, resp)
}

func parsePoint(rawLng, rawLat string) (model.Point, *model.APIError) {
	lng, err := parseCoordinate(rawLng)
	if err != nil {
		return model.Point{}, model.NewInvalidCoordinatesError("lng")
	}
	lat, err := parseCoordinate(rawLat)
	if err != nil {
		return model.Point{}, model.NewInvalidCoordinatesError("lat")
	}
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return model.Point{}, model.NewInvalidCoordinatesError("außerhalb des gültigen Bereichs")
	}
	return model.Point{Lng: lng, Lat: lat}, nil
}

func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
