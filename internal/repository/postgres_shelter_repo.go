package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/warmebetten/sheltermap/internal/model"
)

// shelterColumns は施設の読み取りに使う共通カラム。scanShelterと順序を合わせること。
const shelterColumns = `id, name, adresse, strasse, bezirk, typ, lat, lng, is_mobile,
	bietet_essen, bietet_dusche, bietet_medizin, bietet_kleidung, bietet_betreuung, behindertengerecht,
	keine_drogen, keine_tiere, keine_gewalt,
	oeffnung_von, oeffnung_bis, letzter_einlass,
	telefon, email, website, metadata,
	betten_frei, plaetze_frei_aktuell, kapazitaet_max_allgemein,
	kaeltehilfe_capacity_status, kaeltehilfe_capacity_status_men,
	kaeltehilfe_capacity_status_women, kaeltehilfe_capacity_status_diverse,
	kaeltehilfe_capacity_checked_at, kaeltehilfe_capacity_url,
	created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PostgresShelterRepo はPostgreSQLを使用した施設リポジトリ。
type PostgresShelterRepo struct {
	db *sql.DB
}

// NewPostgresShelterRepo はPostgresShelterRepoを生成する。
func NewPostgresShelterRepo(db *sql.DB) *PostgresShelterRepo {
	return &PostgresShelterRepo{db: db}
}

// ListForMap は地図に表示する全施設を名前順で取得する。
func (r *PostgresShelterRepo) ListForMap(ctx context.Context) ([]model.Shelter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shelterColumns+` FROM unterkuenfte ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("施設一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectShelters(rows)
}

// FindByID は指定IDの施設を取得する。見つからない場合はnilを返す。
func (r *PostgresShelterRepo) FindByID(ctx context.Context, id string) (*model.Shelter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shelterColumns+` FROM unterkuenfte WHERE id = $1`,
		id,
	)
	s, err := scanShelter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("施設の取得に失敗しました: %w", err)
	}
	return &s, nil
}

// ListByCategory は指定種別の施設を名前順で取得する。
func (r *PostgresShelterRepo) ListByCategory(ctx context.Context, category model.Category) ([]model.Shelter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shelterColumns+` FROM unterkuenfte WHERE typ = $1 ORDER BY name ASC`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("種別による施設一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectShelters(rows)
}

// UpdateCapacity は施設のKältehilfe空き状況・取得元URL・確認日時を更新する。
func (r *PostgresShelterRepo) UpdateCapacity(ctx context.Context, id string, u model.CapacityUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE unterkuenfte SET
		    kaeltehilfe_capacity_status = $2,
		    kaeltehilfe_capacity_status_men = $3,
		    kaeltehilfe_capacity_status_women = $4,
		    kaeltehilfe_capacity_status_diverse = $5,
		    kaeltehilfe_capacity_url = $6,
		    kaeltehilfe_capacity_checked_at = $7,
		    updated_at = now()
		 WHERE id = $1`,
		id,
		nullStatus(u.Overall), nullStatus(u.Men), nullStatus(u.Women), nullStatus(u.Diverse),
		nullString(u.SourceURL), u.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("空き状況の更新に失敗しました: %w", err)
	}
	return nil
}

// ListMissingCoordinates は座標がなく移動支援でもない施設を最大limit件取得する。
func (r *PostgresShelterRepo) ListMissingCoordinates(ctx context.Context, limit int) ([]model.Shelter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shelterColumns+` FROM unterkuenfte
		 WHERE is_mobile = false AND (lat IS NULL OR lng IS NULL)
		 ORDER BY name ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("座標未設定の施設の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectShelters(rows)
}

// UpdateLocation は施設の座標を更新する。
// 行政区は未設定の場合のみ上書きする（手入力の値を優先する）。
func (r *PostgresShelterRepo) UpdateLocation(ctx context.Context, id string, p model.Point, district *model.District) error {
	var bezirk sql.NullString
	if district != nil {
		bezirk = sql.NullString{String: string(*district), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE unterkuenfte SET
		    lat = $2,
		    lng = $3,
		    bezirk = COALESCE(bezirk, $4::berlin_bezirk),
		    updated_at = now()
		 WHERE id = $1`,
		id, p.Lat, p.Lng, bezirk,
	)
	if err != nil {
		return fmt.Errorf("座標の更新に失敗しました: %w", err)
	}
	return nil
}

func collectShelters(rows *sql.Rows) ([]model.Shelter, error) {
	var shelters []model.Shelter
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, fmt.Errorf("施設のスキャンに失敗しました: %w", err)
		}
		shelters = append(shelters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("施設一覧の読み取りに失敗しました: %w", err)
	}
	return shelters, nil
}

// scanShelter はshelterColumnsの順序で1行を読み取る。
func scanShelter(row rowScanner) (model.Shelter, error) {
	var s model.Shelter
	var (
		address, street, district, category sql.NullString
		openFrom, openTo, lastAdmission     sql.NullString
		website, metadata, sourceURL        sql.NullString
		overall, men, women, diverse        sql.NullString
		lat, lng                            sql.NullFloat64
		bedsFree                            sql.NullBool
		checkedAt                           sql.NullTime
		phones, emails                      pq.StringArray
	)

	err := row.Scan(
		&s.ID, &s.Name, &address, &street, &district, &category, &lat, &lng, &s.IsMobile,
		&s.OffersMeals, &s.OffersShower, &s.OffersMedical, &s.OffersClothing, &s.OffersSupervision, &s.Accessible,
		&s.NoDrugs, &s.NoPets, &s.NoViolence,
		&openFrom, &openTo, &lastAdmission,
		&phones, &emails, &website, &metadata,
		&bedsFree, &s.FreeNow, &s.MaxCapacity,
		&overall, &men, &women, &diverse,
		&checkedAt, &sourceURL,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.Shelter{}, err
	}

	s.Address = nullStringPtr(address)
	s.Street = nullStringPtr(street)
	if d, ok := model.ParseDistrict(district.String); district.Valid && ok {
		s.District = &d
	}
	if c, ok := model.ParseCategory(category.String); category.Valid && ok {
		s.Category = &c
	}
	if lat.Valid {
		s.Lat = &lat.Float64
	}
	if lng.Valid {
		s.Lng = &lng.Float64
	}
	s.OpenFrom = nullStringPtr(openFrom)
	s.OpenTo = nullStringPtr(openTo)
	s.LastAdmission = nullStringPtr(lastAdmission)
	s.Phones = []string(phones)
	s.Emails = []string(emails)
	s.Website = nullStringPtr(website)
	s.Metadata = nullStringPtr(metadata)
	if bedsFree.Valid {
		s.BedsFree = &bedsFree.Bool
	}
	s.CapacityOverall, _ = model.ParseCapacityStatus(overall.String)
	s.CapacityMen, _ = model.ParseCapacityStatus(men.String)
	s.CapacityWomen, _ = model.ParseCapacityStatus(women.String)
	s.CapacityDiverse, _ = model.ParseCapacityStatus(diverse.String)
	if checkedAt.Valid {
		s.CapacityCheckedAt = &checkedAt.Time
	}
	s.CapacitySourceURL = nullStringPtr(sourceURL)

	return s, nil
}

// nullString は空文字列をNULLとして扱うsql.NullStringを返す。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringPtr はsql.NullStringを*stringに変換する。NULLの場合はnilを返す。
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// nullStatus は不明（空文字列）をNULLとして書き込む。
func nullStatus(s model.CapacityStatus) sql.NullString {
	return nullString(string(s))
}
