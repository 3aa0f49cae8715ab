// Package shelter は地図API向けの施設一覧・詳細・行政区判定のユースケースを提供する。
package shelter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/warmebetten/sheltermap/internal/capacity"
	"github.com/warmebetten/sheltermap/internal/filter"
	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/repository"
)

// Sanitizer は運営者メモのHTMLを無害化するインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// DistrictResolver は座標から行政区を判定するインターフェース。
type DistrictResolver interface {
	Resolve(p model.Point) (model.District, bool)
}

// View は施設にAPIで返す派生値を付加したもの。
type View struct {
	model.Shelter
	Status        model.CapacityStatus
	StatusLabel   string
	StatusColor   string
	HasLocation   bool
	DirectionsURL string
	WebsiteURL    string
}

// ListResult は絞り込み後の施設一覧。
type ListResult struct {
	Shelters []View
	Mobile   []View
	// Total は読み込んだ全施設数、Filteredは条件に一致した施設数。
	Total    int
	Filtered int
	Dirty    bool
	// Query は正規化した絞り込み条件のクエリ文字列。
	Query string
}

// LocateResult は座標から判定した行政区と、それを既定値として反映した絞り込み条件。
type LocateResult struct {
	District *model.District
	Query    string
}

// Service は施設のユースケースを提供する。
type Service struct {
	repo      repository.ShelterRepository
	sanitizer Sanitizer
	districts DistrictResolver
}

// NewService はServiceを生成する。districtsがnilの場合はLocateがエラーを返す。
func NewService(repo repository.ShelterRepository, sanitizer Sanitizer, districts DistrictResolver) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		districts: districts,
	}
}

// List はクエリパラメータの絞り込み条件を施設一覧に適用する。
// 不正なパラメータは既定値として扱い、エラーにしない。
func (s *Service) List(ctx context.Context, values url.Values) (*ListResult, error) {
	state := filter.Decode(values)

	all, err := s.repo.ListForMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("施設一覧の取得に失敗しました: %w", err)
	}

	matched := filter.Apply(all, state)
	mobile := filter.ApplyMobile(all, state)

	return &ListResult{
		Shelters: toViews(matched),
		Mobile:   toViews(mobile),
		Total:    len(all),
		Filtered: len(matched),
		Dirty:    filter.IsDirty(state),
		Query:    filter.EncodeQuery(state),
	}, nil
}

// Get は施設の詳細を返す。運営者メモは無害化して返す。
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("施設の取得に失敗しました: %w", err)
	}
	if sh == nil {
		return nil, model.NewShelterNotFoundError(id)
	}

	v := newView(*sh)
	if v.Metadata != nil && s.sanitizer != nil {
		clean := s.sanitizer.Sanitize(*v.Metadata)
		v.Metadata = &clean
	}
	return &v, nil
}

// Locate は座標を含む行政区を判定し、行政区が未選択の場合に限り既定値として反映する。
// どの行政区にも含まれない場合や境界データがない場合はDistrictがnilで、条件は変更しない。
func (s *Service) Locate(values url.Values, p model.Point) (*LocateResult, error) {
	state := filter.Decode(values)
	res := &LocateResult{}
	if s.districts == nil {
		res.Query = filter.EncodeQuery(state)
		return res, nil
	}
	if d, ok := s.districts.Resolve(p); ok {
		res.District = &d
		state = state.WithDefaultDistrict(d)
	}
	res.Query = filter.EncodeQuery(state)
	return res, nil
}

// toViews は一覧用のViewを作る。一覧では運営者メモを返さない。
func toViews(shelters []model.Shelter) []View {
	views := make([]View, len(shelters))
	for i, sh := range shelters {
		views[i] = newView(sh)
		views[i].Metadata = nil
	}
	return views
}

func newView(sh model.Shelter) View {
	status := capacity.ForShelter(sh)
	v := View{
		Shelter:     sh,
		Status:      status,
		StatusLabel: capacity.Label(status),
		StatusColor: capacity.Color(status),
	}
	if p, ok := sh.Location(); ok {
		v.HasLocation = true
		v.DirectionsURL = DirectionsURL(p)
	}
	if sh.Website != nil {
		v.WebsiteURL = NormalizeWebsiteURL(*sh.Website)
	}
	return v
}
