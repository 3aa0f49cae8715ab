// Package security は外部通信と表示データの安全性に関する機能を提供する。
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService は外部HTTP通信の安全性を確保するインターフェース。
// Photonへのジオコーディング中継とKältehilfe一覧の取得で使用される。
type SSRFGuardService interface {
	// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// allowedHostsを指定した場合、それ以外のホストへの接続は拒否される。
	NewSafeClient(timeout time.Duration, allowedHosts ...string) *http.Client

	// ValidateURL は設定された外部URLをDNS解決なしで検証する。
	ValidateURL(rawURL string) error
}

var allowedSchemes = []string{"http", "https"}

// cgnat は100.64.0.0/10。netip.AddrのIsPrivateでは判定されない。
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

type ssrfGuard struct{}

// NewSSRFGuard はSSRFGuardServiceの新しいインスタンスを生成する。
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient はsafeurlのクライアントを返す。
// 接続先IPの検査はDNS解決後にDialerで行われるため、DNS再バインディングも防げる。
// ポートは80と443に限定する。
func (g *ssrfGuard) NewSafeClient(timeout time.Duration, allowedHosts ...string) *http.Client {
	builder := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443)
	if len(allowedHosts) > 0 {
		builder = builder.SetAllowedHosts(allowedHosts...)
	}
	return safeurl.Client(builder.Build()).Client
}

// ValidateURL は起動時にPHOTON_URLやKAELTEHILFE_LIST_URLを検査する。
// ホスト名の場合はlocalhost以外を許可し、IPリテラルの場合は公開アドレスのみ許可する。
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if scheme := strings.ToLower(parsed.Scheme); !slices.Contains(allowedSchemes, scheme) {
		return fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	switch {
	case host == "":
		return fmt.Errorf("empty host in URL: %s", rawURL)
	case strings.EqualFold(host, "localhost"), strings.HasSuffix(strings.ToLower(host), ".localhost"):
		return fmt.Errorf("blocked host: %s", host)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// ホスト名。実際の接続先はNewSafeClientが検査する
		return nil
	}
	if !isPublicAddr(addr) {
		return fmt.Errorf("blocked IP address: %s", addr)
	}
	return nil
}

// isPublicAddr はループバック、プライベート、リンクローカル（クラウドメタデータを含む）、
// 未指定アドレスのいずれでもない場合にtrueを返す。
func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return false
	}
	if addr.Is4() && (addr.As4()[0] == 0 || cgnat.Contains(addr)) {
		return false
	}
	return true
}

// HostOf はURLのホスト名を小文字で返す。解析できない場合は空文字列を返す。
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
