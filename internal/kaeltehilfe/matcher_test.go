package kaeltehilfe

import (
	"testing"
)

func testOffers() []Offer {
	return []Offer{
		{Name: "Notübernachtung Lehrter Straße", URL: "https://kaeltehilfe-berlin.de/angebote/lehrter"},
		{Name: "Haus Schöneberg Männer", URL: "https://kaeltehilfe-berlin.de/angebote/schoeneberg-m"},
		{Name: "Haus Schöneberg Frauen", URL: "https://kaeltehilfe-berlin.de/angebote/schoeneberg-f"},
	}
}

func TestIndexMatch(t *testing.T) {
	idx := NewIndex(testOffers())

	tests := []struct {
		name      string
		dbName    string
		wantOffer string
		wantKind  string
		wantOK    bool
	}{
		{"正規化名の完全一致", "Notuebernachtung Lehrter Strasse", "Notübernachtung Lehrter Straße", "direct", true},
		{"トークンの包含", "Lehrter Straße", "Notübernachtung Lehrter Straße", "tokens", true},
		{"複数候補は類似度で選ぶ", "Haus Schöneberg", "Haus Schöneberg Frauen", "tokens_ambiguous", true},
		{"あいまい一致", "Notübernachtung Lehrter Str", "Notübernachtung Lehrter Straße", "fuzzy:0.93", true},
		{"一致なし", "Zentrum Kreuzberg", "", "none", false},
		{"空の名前", "  ", "", "empty", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, kind, ok := idx.Match(tt.dbName)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
			if offer.Name != tt.wantOffer {
				t.Errorf("offer = %q, want %q", offer.Name, tt.wantOffer)
			}
		})
	}
}

// TestNewIndex_Duplicates は正規化名が重複する場合に最初の1件を採用することを検証する。
func TestNewIndex_Duplicates(t *testing.T) {
	offers := append(testOffers(), Offer{
		Name: "Notuebernachtung  Lehrter Strasse",
		URL:  "https://kaeltehilfe-berlin.de/angebote/lehrter-2",
	})
	idx := NewIndex(offers)

	if idx.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", idx.Duplicates)
	}
	if idx.Len() != 4 {
		t.Errorf("Len() = %d, want 4", idx.Len())
	}

	offer, kind, ok := idx.Match("Notübernachtung Lehrter Straße")
	if !ok || kind != "direct" {
		t.Fatalf("Match() = (%v, %q)", ok, kind)
	}
	if offer.URL != "https://kaeltehilfe-berlin.de/angebote/lehrter" {
		t.Errorf("URL = %q, 最初の1件が採用されるべき", offer.URL)
	}
}

func TestIndexByURL(t *testing.T) {
	idx := NewIndex(testOffers())

	offer, ok := idx.ByURL("  HTTPS://kaeltehilfe-berlin.de/angebote/SCHOENEBERG-F ")
	if !ok {
		t.Fatal("URLは大文字小文字と前後の空白を無視して一致するべき")
	}
	if offer.Name != "Haus Schöneberg Frauen" {
		t.Errorf("offer = %q", offer.Name)
	}

	if _, ok := idx.ByURL("https://kaeltehilfe-berlin.de/angebote/unbekannt"); ok {
		t.Error("未知のURLは false を返すべき")
	}
}

func TestRatio(t *testing.T) {
	if got := ratio("abc", "abc"); got != 1 {
		t.Errorf("ratio(abc, abc) = %v, want 1", got)
	}
	if got := ratio("abcd", "wxyz"); got != 0 {
		t.Errorf("ratio(abcd, wxyz) = %v, want 0", got)
	}
}
