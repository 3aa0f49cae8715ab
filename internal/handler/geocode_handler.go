package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/warmebetten/sheltermap/internal/geocode"
	"github.com/warmebetten/sheltermap/internal/middleware"
	"github.com/warmebetten/sheltermap/internal/model"
)

// 住所検索の結果区分（メトリクスのラベル）
const (
	geocodeOutcomeOK    = "ok"
	geocodeOutcomeShort = "short"
	geocodeOutcomeError = "error"
)

// Geocoder は住所検索のインターフェース。
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Feature, error)
}

// GeocodeRecorder は住所検索の結果を記録するインターフェース。
type GeocodeRecorder interface {
	RecordGeocodeRequest(outcome string)
}

// GeocodeHandler はPhotonへの住所検索を中継するHTTPハンドラー。
type GeocodeHandler struct {
	geocoder Geocoder
	recorder GeocodeRecorder
}

// NewGeocodeHandler はGeocodeHandlerを生成する。recorderはnilでもよい。
func NewGeocodeHandler(geocoder Geocoder, recorder GeocodeRecorder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder, recorder: recorder}
}

type geocodeResponse struct {
	Features []geocode.Feature `json:"features"`
}

// SearchPhoton はベルリン範囲内の住所候補を返す。
// GET /api/geocode/photon?q=
func (h *GeocodeHandler) SearchPhoton(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if geocode.IsShortQuery(q) {
		h.record(geocodeOutcomeShort)
		writeJSON(w, http.StatusOK, geocodeResponse{Features: []geocode.Feature{}})
		return
	}

	features, err := h.geocoder.Search(r.Context(), q)
	if err != nil {
		h.record(geocodeOutcomeError)

		status := 0
		var se *geocode.StatusError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewGeocodeFailedError(status))
		return
	}

	h.record(geocodeOutcomeOK)
	writeJSON(w, http.StatusOK, geocodeResponse{Features: features})
}

func (h *GeocodeHandler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordGeocodeRequest(outcome)
	}
}
