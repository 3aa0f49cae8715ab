package kaeltehilfe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warmebetten/sheltermap/internal/model"
	"github.com/warmebetten/sheltermap/internal/repository"
)

// OfferSource は募集情報の取得元。通常は*Scraper。
type OfferSource interface {
	ScrapeAll(ctx context.Context) ([]Offer, error)
}

// JobConfig は空き状況反映ジョブの設定。
type JobConfig struct {
	// Commit がfalseの場合はDBに書き込まずログのみ出力する。
	Commit bool
	// Limit は処理する施設数の上限。0以下は無制限。
	Limit int
}

// Result は1回の反映処理の結果。
type Result struct {
	Offers    int
	Targets   int
	Matched   int
	Updated   int
	Unmatched int
	Failed    int
}

// Job はスクレイピング結果をNotübernachtungの施設に照合して空き状況を書き込む。
type Job struct {
	source    OfferSource
	repo      repository.CapacityRepository
	overrides map[string]string
	logger    *slog.Logger
	config    JobConfig
	now       func() time.Time
}

// NewJob はJobを生成する。overridesは施設IDからKältehilfe URLへの対応表。
func NewJob(
	source OfferSource,
	repo repository.CapacityRepository,
	overrides map[string]string,
	logger *slog.Logger,
	config JobConfig,
) *Job {
	if overrides == nil {
		overrides = map[string]string{}
	}
	return &Job{
		source:    source,
		repo:      repo,
		overrides: overrides,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// RunOnce は一覧を取得し、対象施設ごとに照合して空き状況を反映する。
// checked_atは1回の実行で共通の時刻を使う。
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	// 1. 一覧の取得
	offers, err := j.source.ScrapeAll(ctx)
	if err != nil {
		return res, fmt.Errorf("Kältehilfe一覧の取得に失敗しました: %w", err)
	}
	res.Offers = len(offers)
	j.logger.Info("Kältehilfe一覧を取得しました", slog.Int("offers", len(offers)))

	idx := NewIndex(offers)
	if idx.Duplicates > 0 {
		j.logger.Warn("正規化後の名前が重複する募集があります（最初の1件を採用）",
			slog.Int("duplicates", idx.Duplicates),
		)
	}
	if len(j.overrides) > 0 {
		j.logger.Info("手動対応表を使用します", slog.Int("overrides", len(j.overrides)))
	}

	// 2. 対象施設の取得
	rows, err := j.repo.ListByCategory(ctx, model.CategoryEmergencyOvernight)
	if err != nil {
		return res, fmt.Errorf("対象施設の取得に失敗しました: %w", err)
	}
	if j.config.Limit > 0 && len(rows) > j.config.Limit {
		rows = rows[:j.config.Limit]
	}
	res.Targets = len(rows)

	checkedAt := j.now().UTC()

	// 3. 照合と反映
	for i, s := range rows {
		if s.ID == "" || s.Name == "" {
			continue
		}

		offer, kind, ok := j.match(idx, s, i, len(rows))
		if !ok {
			res.Unmatched++
			j.logger.Warn("Kältehilfeの募集と一致しませんでした",
				slog.Int("index", i+1),
				slog.Int("total", len(rows)),
				slog.String("name", s.Name),
				slog.String("normalized", NormalizeName(s.Name)),
			)
			continue
		}
		res.Matched++
		if kind != "direct" {
			j.logger.Info("名前以外の方法で一致しました",
				slog.Int("index", i+1),
				slog.String("match", kind),
				slog.String("name", s.Name),
				slog.String("offer", offer.Name),
			)
		}

		update := offer.Update()
		update.CheckedAt = checkedAt

		j.logger.Info("空き状況",
			slog.String("name", s.Name),
			slog.String("overall", string(offer.Overall)),
			slog.String("men", string(offer.Men)),
			slog.String("women", string(offer.Women)),
			slog.String("diverse", string(offer.Diverse)),
		)

		if !j.config.Commit {
			res.Updated++
			continue
		}
		if err := j.repo.UpdateCapacity(ctx, s.ID, update); err != nil {
			res.Failed++
			j.logger.Error("空き状況の更新に失敗しました",
				slog.String("shelter_id", s.ID),
				slog.String("name", s.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Updated++
	}

	j.logger.Info("空き状況の反映が完了しました",
		slog.Int("targets", res.Targets),
		slog.Int("matched", res.Matched),
		slog.Int("updated", res.Updated),
		slog.Int("unmatched", res.Unmatched),
		slog.Int("failed", res.Failed),
		slog.Bool("commit", j.config.Commit),
	)
	return res, nil
}

// match は手動対応表を優先し、見つからなければ名前で照合する。
func (j *Job) match(idx *Index, s model.Shelter, i, total int) (Offer, string, bool) {
	if u, ok := j.overrides[s.ID]; ok {
		if offer, found := idx.ByURL(u); found {
			return offer, "override", true
		}
		j.logger.Warn("手動対応表のURLが一覧にありません",
			slog.Int("index", i+1),
			slog.Int("total", total),
			slog.String("shelter_id", s.ID),
			slog.String("name", s.Name),
			slog.String("url", u),
		)
	}
	return idx.Match(s.Name)
}
