package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は施設の備考（metadata）をサニタイズするインターフェース。
// 備考は運営者が入力する自由記述で、簡単な書式とリンクのみを許可する。
type ContentSanitizerService interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーは並行利用可能。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer は備考向けのポリシーを構築する。
//   - 許可タグ: p, br, ul, ol, li, strong, em, b, i, a
//   - aのhref: http, https, mailto, tel のみ
//   - 外部リンクには target="_blank" と rel="noopener noreferrer" を付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "b", "i")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(false)
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{policy: p}
}

// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
