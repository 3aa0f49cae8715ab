// Package kaeltehilfe はKältehilfe Berlinの一覧ページから空き状況を取得し、施設に反映する。
package kaeltehilfe

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	umlautReplacer = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
)

// matchStopwords は施設名に頻出し照合の手がかりにならない語。
var matchStopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"notuebernachtung", "notubernaechtiung", "notubernachtung",
		"nachtcafe", "tagesangebote", "beratung", "hygiene", "medizinische", "hilfen",
		"essen", "verpflegung", "kleiderkammer", "suchtangebote",
		"fuer", "fur", "in", "am", "an", "im", "bei", "auf",
		"der", "die", "das", "und", "oder", "vom", "von", "zum", "zur", "des", "den",
		"mit", "ohne", "nur", "alle",
		"frauen", "maenner", "manner", "divers", "geschlechter", "familien",
		"wohnungslose", "wohnungslosem", "obdachlose", "obdachlosen",
	} {
		matchStopwords[w] = struct{}{}
	}
}

// NormalizeName はDBとKältehilfe一覧の施設名を照合用に正規化する。
// 小文字化してウムラウトを展開し、残りのダイアクリティカルマークを除去したうえで
// 英数字以外を単一の空白にまとめる。
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	s = umlautReplacer.Replace(s)

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// matchTokens は正規化した名前からストップワードを除いたトークン集合を返す。
func matchTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(NormalizeName(name)) {
		if _, stop := matchStopwords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// isSubset はaの全要素がbに含まれるかを返す。
func isSubset(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
