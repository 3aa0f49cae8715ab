package kaeltehilfe

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/warmebetten/sheltermap/internal/model"
)

// Offer はKältehilfe一覧の1件（Notübernachtung）を表す。
// ステータスが画像で示されていない項目はStatusUnknownのまま。
type Offer struct {
	Name    string
	URL     string
	Overall model.CapacityStatus
	Men     model.CapacityStatus
	Women   model.CapacityStatus
	Diverse model.CapacityStatus
}

// Update はOfferを書き込み用のCapacityUpdateに変換する。
func (o Offer) Update() model.CapacityUpdate {
	return model.CapacityUpdate{
		Overall:   o.Overall,
		Men:       o.Men,
		Women:     o.Women,
		Diverse:   o.Diverse,
		SourceURL: o.URL,
	}
}

// key はページ間の重複検出に使うキー。URLがなければ正規化名を使う。
func (o Offer) key() string {
	if k := urlKey(o.URL); k != "" {
		return k
	}
	return NormalizeName(o.Name)
}

// ParsePage は一覧ページのHTMLから募集情報を抽出する。
// カードはclassに"el-item"と"uk-card"の両方を持つdiv、名前とリンクは
// "h3.el-title a"、空き状況は"div.fs-grid-nested-2 img"のalt属性から読み取る。
// 相対リンクはbaseを基準に解決する。
func ParsePage(r io.Reader, base *url.URL) ([]Offer, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing html: %w", err)
	}

	var offers []Offer
	walk(doc, func(n *html.Node) {
		if n.DataAtom != atom.Div || !hasClasses(n, "el-item", "uk-card") {
			return
		}
		if o, ok := parseCard(n, base); ok {
			offers = append(offers, o)
		}
	})
	return offers, nil
}

func parseCard(card *html.Node, base *url.URL) (Offer, bool) {
	link := findFirst(card, func(n *html.Node) bool {
		return n.DataAtom == atom.A && hasAncestor(n, card, func(p *html.Node) bool {
			return p.DataAtom == atom.H3 && hasClasses(p, "el-title")
		})
	})
	if link == nil {
		return Offer{}, false
	}

	o := Offer{Name: textContent(link)}
	if href := attr(link, "href"); href != "" {
		if ref, err := url.Parse(href); err == nil {
			o.URL = base.ResolveReference(ref).String()
		}
	}

	walk(card, func(n *html.Node) {
		if n.DataAtom != atom.Img {
			return
		}
		inGrid := hasAncestor(n, card, func(p *html.Node) bool {
			return p.DataAtom == atom.Div && hasClasses(p, "fs-grid-nested-2")
		})
		if !inGrid {
			return
		}

		alt := attr(n, "alt")
		status, ok := statusFromAlt(alt)
		if !ok {
			return
		}

		lower := strings.ToLower(alt)
		switch {
		case strings.Contains(lower, "männer") || strings.Contains(lower, "maenner"):
			o.Men = status
		case strings.Contains(lower, "frauen"):
			o.Women = status
		case strings.Contains(lower, "divers"):
			o.Diverse = status
		default:
			o.Overall = status
		}
	})

	return o, true
}

// statusFromAlt は画像のalt属性を空き状況に変換する。
func statusFromAlt(alt string) (model.CapacityStatus, bool) {
	a := strings.ToLower(strings.TrimSpace(alt))
	switch {
	case a == "":
		return model.StatusUnknown, false
	case strings.Contains(a, "keine plätze"):
		return model.StatusNone, true
	case strings.Contains(a, "wenige plätze"):
		return model.StatusLittle, true
	case strings.Contains(a, "viele plätze"):
		return model.StatusPlenty, true
	default:
		return model.StatusUnknown, false
	}
}

// walk はnとその子孫を文書順に訪問する。
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// hasAncestor はnからstop（含まない）までの祖先にmatchするものがあるかを返す。
func hasAncestor(n, stop *html.Node, match func(*html.Node) bool) bool {
	for p := n.Parent; p != nil && p != stop; p = p.Parent {
		if p.Type == html.ElementNode && match(p) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClasses(n *html.Node, want ...string) bool {
	classes := strings.Fields(attr(n, "class"))
	for _, w := range want {
		found := false
		for _, c := range classes {
			if c == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// textContent はテキストノードを前後の空白を除いて空白区切りで連結する。
func textContent(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}
