// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/warmebetten/sheltermap/internal/model"
)

// ShelterRepository は地図表示用の施設データの読み取りインターフェース。
type ShelterRepository interface {
	// ListForMap は地図に表示する全施設を名前順で取得する。
	ListForMap(ctx context.Context) ([]model.Shelter, error)

	// FindByID は指定IDの施設を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Shelter, error)
}

// CapacityRepository はKältehilfeの空き状況の更新インターフェース。
// スクレイパーが使用する。
type CapacityRepository interface {
	// ListByCategory は指定種別の施設を名前順で取得する。
	ListByCategory(ctx context.Context, category model.Category) ([]model.Shelter, error)

	// UpdateCapacity は施設のKältehilfe空き状況・取得元URL・確認日時を更新する。
	UpdateCapacity(ctx context.Context, id string, update model.CapacityUpdate) error
}

// CoordinateRepository は座標補完ジョブのためのインターフェース。
type CoordinateRepository interface {
	// ListMissingCoordinates は座標がなく移動支援でもない施設を最大limit件取得する。
	ListMissingCoordinates(ctx context.Context, limit int) ([]model.Shelter, error)

	// UpdateLocation は施設の座標を更新する。districtがnilでない場合、
	// 行政区が未設定の施設に限り行政区も設定する。
	UpdateLocation(ctx context.Context, id string, p model.Point, district *model.District) error
}
