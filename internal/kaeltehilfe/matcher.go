package kaeltehilfe

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// fuzzyThreshold はあいまい一致を採用する類似度の下限。
const fuzzyThreshold = 0.78

// Index はスクレイピングした募集情報を名前とURLで引けるようにしたもの。
type Index struct {
	offers     []Offer
	normalized []string
	tokens     []map[string]struct{}
	byName     map[string]int
	byURL      map[string]int
	// Duplicates は正規化後の名前が重複して最初の1件のみ採用した件数。
	Duplicates int
}

// NewIndex はOfferの一覧からIndexを構築する。
func NewIndex(offers []Offer) *Index {
	idx := &Index{
		offers:     offers,
		normalized: make([]string, len(offers)),
		tokens:     make([]map[string]struct{}, len(offers)),
		byName:     make(map[string]int),
		byURL:      make(map[string]int),
	}

	for i, o := range offers {
		idx.normalized[i] = NormalizeName(o.Name)
		idx.tokens[i] = matchTokens(o.Name)

		if u := urlKey(o.URL); u != "" {
			if _, ok := idx.byURL[u]; !ok {
				idx.byURL[u] = i
			}
		}

		k := idx.normalized[i]
		if k == "" {
			continue
		}
		if _, ok := idx.byName[k]; ok {
			idx.Duplicates++
			continue
		}
		idx.byName[k] = i
	}
	return idx
}

// Len は募集情報の件数を返す。
func (idx *Index) Len() int {
	return len(idx.offers)
}

// ByURL はURL（大文字小文字を区別しない）で募集情報を引く。
func (idx *Index) ByURL(rawURL string) (Offer, bool) {
	i, ok := idx.byURL[urlKey(rawURL)]
	if !ok {
		return Offer{}, false
	}
	return idx.offers[i], true
}

// Match はDBの施設名に対応する募集情報を探す。
// 照合順は 正規化名の完全一致、ストップワードを除いたトークンの包含、類似度0.78以上のあいまい一致。
// 2つ目の戻り値は一致の種類（direct, tokens, tokens_ambiguous, fuzzy:0.85, none, empty）。
func (idx *Index) Match(dbName string) (Offer, string, bool) {
	dbNorm := NormalizeName(dbName)
	if dbNorm == "" {
		return Offer{}, "empty", false
	}

	if i, ok := idx.byName[dbNorm]; ok {
		return idx.offers[i], "direct", true
	}

	if dbTokens := matchTokens(dbName); len(dbTokens) > 0 {
		var candidates []int
		for i, tokens := range idx.tokens {
			if isSubset(dbTokens, tokens) {
				candidates = append(candidates, i)
			}
		}
		switch len(candidates) {
		case 0:
		case 1:
			return idx.offers[candidates[0]], "tokens", true
		default:
			best := candidates[0]
			bestRatio := ratio(dbNorm, idx.normalized[best])
			for _, i := range candidates[1:] {
				if r := ratio(dbNorm, idx.normalized[i]); r > bestRatio {
					best, bestRatio = i, r
				}
			}
			return idx.offers[best], "tokens_ambiguous", true
		}
	}

	best := -1
	var bestRatio float64
	for i, n := range idx.normalized {
		if r := ratio(dbNorm, n); r > bestRatio {
			best, bestRatio = i, r
		}
	}
	if best >= 0 && bestRatio >= fuzzyThreshold {
		return idx.offers[best], fmt.Sprintf("fuzzy:%.2f", bestRatio), true
	}

	return Offer{}, "none", false
}

// ratio は2つの文字列の類似度（0〜1）を文字単位で計算する。
func ratio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func urlKey(rawURL string) string {
	return strings.ToLower(strings.TrimSpace(rawURL))
}
