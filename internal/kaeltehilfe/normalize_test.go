package kaeltehilfe

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ウムラウトとß", "  Notübernachtung Straße  ", "notuebernachtung strasse"},
		{"アクセント記号", "Café Crème", "cafe creme"},
		{"記号と括弧", "St. Marien-Haus (Frauen)", "st marien haus frauen"},
		{"全角英数字", "ＡＢＣ 12", "abc 12"},
		{"連続する空白", "Haus\t\n  am   See", "haus am see"},
		{"空文字列", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchTokens_RemovesStopwords(t *testing.T) {
	got := matchTokens("Notübernachtung für Frauen in Mitte")
	want := map[string]struct{}{"mitte": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matchTokens() = %v, want %v", got, want)
	}

	if len(matchTokens("")) != 0 {
		t.Error("空の名前はトークンを持たないべき")
	}
}

func TestIsSubset(t *testing.T) {
	a := map[string]struct{}{"lehrter": {}}
	b := map[string]struct{}{"lehrter": {}, "strasse": {}}

	if !isSubset(a, b) {
		t.Error("a は b の部分集合であるべき")
	}
	if isSubset(b, a) {
		t.Error("b は a の部分集合ではないべき")
	}
}
