package shelter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/warmebetten/sheltermap/internal/model"
)

const directionsBaseURL = "https://www.google.com/maps/dir/?api=1&destination="

// NormalizeWebsiteURL はスキームのないWebサイトURLにhttps://を補う。
// 空または空白のみの場合は空文字列を返す。
func NormalizeWebsiteURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

// DirectionsURL はGoogle Mapsの経路案内URLを返す。
func DirectionsURL(p model.Point) string {
	dest := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
	return directionsBaseURL + url.QueryEscape(dest)
}
