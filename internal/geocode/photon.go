// Package geocode はPhotonジオコーダーのクライアントを提供する。
// 住所検索の中継APIと座標補完ジョブの両方から使用される。
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/warmebetten/sheltermap/internal/model"
)

const (
	// DefaultEndpoint は公開PhotonインスタンスのAPI。
	DefaultEndpoint = "https://photon.komoot.io/api/"
	// BerlinBBox はベルリンの範囲（minLon,minLat,maxLon,maxLat）。
	BerlinBBox = "13.0884,52.3383,13.7611,52.6755"

	minQueryLength = 3
	resultLimit    = 6
	userAgent      = "warmebetten.berlin (photon geocoding)"
	maxBodySize    = 1 << 20
)

// labelProperties はラベルを組み立てるプロパティの順序。
var labelProperties = []string{"name", "street", "housenumber", "postcode", "city", "country"}

// Feature は検索結果の1件。
type Feature struct {
	Label      string         `json:"label"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Properties map[string]any `json:"properties"`
}

// Point はFeatureの座標を返す。
func (f Feature) Point() model.Point {
	return model.Point{Lng: f.Lng, Lat: f.Lat}
}

// StatusError はPhotonが200以外を返した場合のエラー。
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("photon returned status %d", e.StatusCode)
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// Client はPhoton APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewClient はClientを生成する。endpointが空の場合は公開インスタンスを使用する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
	}
}

// Search はベルリン範囲内で住所を検索する。
// 前後の空白を除いたクエリが3文字未満の場合はリクエストせず空の結果を返す。
func (c *Client) Search(ctx context.Context, query string) ([]Feature, error) {
	q := strings.TrimSpace(query)
	if IsShortQuery(q) {
		return []Feature{}, nil
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	params := reqURL.Query()
	params.Set("q", q)
	params.Set("lang", "de")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("bbox", BerlinBBox)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "de")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Photonの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("photon request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Photonがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var parsed photonResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	features := make([]Feature, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		// 座標は[lng, lat]の順
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		features = append(features, Feature{
			Label:      buildLabel(props, q),
			Lng:        f.Geometry.Coordinates[0],
			Lat:        f.Geometry.Coordinates[1],
			Properties: props,
		})
	}
	return features, nil
}

// IsShortQuery は前後の空白を除いたクエリが検索に満たない長さかを返す。
func IsShortQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < minQueryLength
}

// Lookup は最初の検索結果の座標を返す。該当なしの場合はfalseを返す。
func (c *Client) Lookup(ctx context.Context, query string) (model.Point, bool, error) {
	features, err := c.Search(ctx, query)
	if err != nil {
		return model.Point{}, false, err
	}
	if len(features) == 0 {
		return model.Point{}, false, nil
	}
	return features[0].Point(), true, nil
}

// buildLabel は文字列プロパティを空白区切りで連結して表示名を作る。
func buildLabel(props map[string]any, query string) string {
	parts := make([]string, 0, len(labelProperties))
	for _, key := range labelProperties {
		s, ok := props[key].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if label := strings.Join(parts, " "); label != "" {
		return label
	}
	if name, ok := props["name"].(string); ok {
		return name
	}
	return query
}
