package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warmebetten/sheltermap/internal/middleware"
	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/shelter"
)

// ShelterServiceInterface は施設ハンドラーが必要とするサービスインターフェース。
type ShelterServiceInterface interface {
	// List はクエリパラメータの絞り込み条件を施設一覧に適用する。
	List(ctx context.Context, values url.Values) (*shelter.ListResult, error)
	// Get は施設の詳細を返す。
	Get(ctx context.Context, id string) (*shelter.View, error)
}

// ShelterHandler は施設一覧・詳細のHTTPハンドラー。
type ShelterHandler struct {
	service ShelterServiceInterface
}

// NewShelterHandler はShelterHandlerを生成する。
func NewShelterHandler(service ShelterServiceInterface) *ShelterHandler {
	return &ShelterHandler{service: service}
}

type offersResponse struct {
	Meals       bool `json:"meals"`
	Shower      bool `json:"shower"`
	Medical     bool `json:"medical"`
	Clothing    bool `json:"clothing"`
	Supervision bool `json:"supervision"`
	Accessible  bool `json:"accessible"`
}

type rulesResponse struct {
	NoDrugs    bool `json:"no_drugs"`
	NoPets     bool `json:"no_pets"`
	NoViolence bool `json:"no_violence"`
}

type openingResponse struct {
	From          *string `json:"from"`
	To            *string `json:"to"`
	LastAdmission *string `json:"last_admission"`
}

// capacityResponse はKältehilfeの空き状況の生データ。未設定はnull。
type capacityResponse struct {
	Overall   *string    `json:"overall"`
	Men       *string    `json:"men"`
	Women     *string    `json:"women"`
	Diverse   *string    `json:"diverse"`
	CheckedAt *time.Time `json:"checked_at"`
	SourceURL *string    `json:"source_url"`
}

// shelterResponse は施設1件のAPIレスポンス。
type shelterResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Address       *string          `json:"address"`
	Street        *string          `json:"street"`
	District      *string          `json:"district"`
	DistrictLabel *string          `json:"district_label"`
	Category      *string          `json:"category"`
	CategoryLabel *string          `json:"category_label"`
	Lat           *float64         `json:"lat"`
	Lng           *float64         `json:"lng"`
	IsMobile      bool             `json:"is_mobile"`
	Offers        offersResponse   `json:"offers"`
	Rules         rulesResponse    `json:"rules"`
	Opening       openingResponse  `json:"opening"`
	Phones        []string         `json:"phones"`
	Emails        []string         `json:"emails"`
	Website       *string          `json:"website"`
	Metadata      *string          `json:"metadata,omitempty"`
	BedsFree      *bool            `json:"beds_free"`
	FreeNow       int              `json:"free_now"`
	MaxCapacity   int              `json:"max_capacity"`
	Capacity      capacityResponse `json:"capacity"`

	CapacityStatus string  `json:"capacity_status"`
	CapacityLabel  string  `json:"capacity_label"`
	CapacityColor  string  `json:"capacity_color"`
	HasLocation    bool    `json:"has_location"`
	DirectionsURL  *string `json:"directions_url"`
}

// listResponse は施設一覧のAPIレスポンス。
type listResponse struct {
	Shelters []shelterResponse `json:"shelters"`
	Mobile   []shelterResponse `json:"mobile"`
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
	Dirty    bool              `json:"dirty"`
	Query    string            `json:"query"`
}

// ListShelters は絞り込み条件に一致する施設一覧を返す。
// GET /api/shelters
func (h *ShelterHandler) ListShelters(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Shelters: toShelterResponses(res.Shelters),
		Mobile:   toShelterResponses(res.Mobile),
		Total:    res.Total,
		Filtered: res.Filtered,
		Dirty:    res.Dirty,
		Query:    res.Query,
	})
}

// GetShelter は施設の詳細を返す。
// GET /api/shelters/{id}
func (h *ShelterHandler) GetShelter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidShelterIDError(id))
		return
	}

	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toShelterResponse(*v))
}

func toShelterResponses(views []shelter.View) []shelterResponse {
	out := make([]shelterResponse, len(views))
	for i, v := range views {
		out[i] = toShelterResponse(v)
	}
	return out
}

func toShelterResponse(v shelter.View) shelterResponse {
	resp := shelterResponse{
		ID:       v.ID,
		Name:     v.Name,
		Address:  v.Address,
		Street:   v.Street,
		Lat:      v.Lat,
		Lng:      v.Lng,
		IsMobile: v.IsMobile,
		Offers: offersResponse{
			Meals:       v.OffersMeals,
			Shower:      v.OffersShower,
			Medical:     v.OffersMedical,
			Clothing:    v.OffersClothing,
			Supervision: v.OffersSupervision,
			Accessible:  v.Accessible,
		},
		Rules: rulesResponse{
			NoDrugs:    v.NoDrugs,
			NoPets:     v.NoPets,
			NoViolence: v.NoViolence,
		},
		Opening: openingResponse{
			From:          v.OpenFrom,
			To:            v.OpenTo,
			LastAdmission: v.LastAdmission,
		},
		Phones:      nonNil(v.Phones),
		Emails:      nonNil(v.Emails),
		Metadata:    v.Metadata,
		BedsFree:    v.BedsFree,
		FreeNow:     v.FreeNow,
		MaxCapacity: v.MaxCapacity,
		Capacity: capacityResponse{
			Overall:   statusPtr(v.CapacityOverall),
			Men:       statusPtr(v.CapacityMen),
			Women:     statusPtr(v.CapacityWomen),
			Diverse:   statusPtr(v.CapacityDiverse),
			CheckedAt: v.CapacityCheckedAt,
			SourceURL: v.CapacitySourceURL,
		},
		CapacityStatus: string(v.Status),
		CapacityLabel:  v.StatusLabel,
		CapacityColor:  v.StatusColor,
		HasLocation:    v.HasLocation,
	}

	if v.District != nil {
		d, label := string(*v.District), v.District.Label()
		resp.District, resp.DistrictLabel = &d, &label
	}
	if v.Category != nil {
		c, label := string(*v.Category), v.Category.Label()
		resp.Category, resp.CategoryLabel = &c, &label
	}
	if v.WebsiteURL != "" {
		site := v.WebsiteURL
		resp.Website = &site
	}
	if v.DirectionsURL != "" {
		dir := v.DirectionsURL
		resp.DirectionsURL = &dir
	}
	if resp.CapacityStatus == "" {
		resp.CapacityStatus = "unknown"
	}
	return resp
}

func statusPtr(s model.CapacityStatus) *string {
	if s == model.StatusUnknown {
		return nil
	}
	v := string(s)
	return &v
}

// nonNil はJSONでnullではなく空配列を返すために使う。
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
