package kaeltehilfe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultListURL はNotübernachtungの一覧ページ。
	DefaultListURL = "https://kaeltehilfe-berlin.de/angebote/filter/1"

	userAgent   = "warmebetten.berlin (kaeltehilfe capacity scraper; once daily)"
	maxBodySize = 5 << 20
)

// ScraperConfig は一覧ページの巡回設定。
type ScraperConfig struct {
	ListURL  string
	PageSize int
	MaxPages int
	Sleep    time.Duration
}

// DefaultScraperConfig はデフォルトの巡回設定を返す。
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		ListURL:  DefaultListURL,
		PageSize: 10,
		MaxPages: 200,
		Sleep:    200 * time.Millisecond,
	}
}

// Scraper はKältehilfeの一覧ページを取得してOfferを集める。
type Scraper struct {
	client  *http.Client
	logger  *slog.Logger
	listURL *url.URL
	base    *url.URL
	config  ScraperConfig
}

// NewScraper はScraperを生成する。clientはSSRFガード済みのものを渡す。
func NewScraper(client *http.Client, logger *slog.Logger, config ScraperConfig) (*Scraper, error) {
	if config.ListURL == "" {
		config.ListURL = DefaultListURL
	}
	u, err := url.Parse(config.ListURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid kaeltehilfe list url %q", config.ListURL)
	}
	if config.PageSize < 1 {
		config.PageSize = 1
	}
	if config.MaxPages < 1 {
		config.MaxPages = 1
	}
	if config.Sleep < 0 {
		config.Sleep = 0
	}

	return &Scraper{
		client:  client,
		logger:  logger,
		listURL: u,
		base:    &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		config:  config,
	}, nil
}

// FetchPage はオフセットstartの一覧ページを1件取得してパースする。
// 200以外のステータスは*StatusErrorを返す。
func (s *Scraper) FetchPage(ctx context.Context, start int) ([]Offer, error) {
	u := *s.listURL
	q := u.Query()
	q.Set("start", strconv.Itoa(start))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "de")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kaeltehilfe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, Start: start}
	}

	return ParsePage(io.LimitReader(resp.Body, maxBodySize), s.base)
}

// ScrapeAll はstartを増やしながら一覧を巡回し、重複を除いたOfferを返す。
// 空ページ、直前と同一のページ、新規のないページ、MaxPagesのいずれかで終了する。
func (s *Scraper) ScrapeAll(ctx context.Context) ([]Offer, error) {
	var offers []Offer
	seen := make(map[string]struct{})
	var prevSignature string
	hasPrev := false
	start := 0

	for page := 0; page < s.config.MaxPages; page++ {
		pageOffers, err := s.FetchPage(ctx, start)
		if err != nil {
			return nil, err
		}
		if len(pageOffers) == 0 {
			s.logger.Info("一覧の巡回を終了しました（カードなし）", slog.Int("start", start))
			break
		}
		s.logger.Debug("一覧ページを取得しました",
			slog.Int("start", start),
			slog.Int("offers", len(pageOffers)),
		)

		keys := make([]string, len(pageOffers))
		for i, o := range pageOffers {
			keys[i] = o.key()
		}
		signature := strings.Join(keys, "\n")
		if hasPrev && signature == prevSignature {
			s.logger.Info("一覧の巡回を終了しました（直前のページと同一）", slog.Int("start", start))
			break
		}

		newCount := 0
		for i, o := range pageOffers {
			k := keys[i]
			if k != "" {
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			offers = append(offers, o)
			newCount++
		}
		if newCount == 0 {
			s.logger.Info("一覧の巡回を終了しました（新規の募集なし）", slog.Int("start", start))
			break
		}

		prevSignature = signature
		hasPrev = true
		start += s.config.PageSize

		if err := sleepContext(ctx, s.config.Sleep); err != nil {
			return nil, err
		}
	}

	return offers, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
