package kaeltehilfe

import (
	"net/url"
	"strings"
	"testing"

	"github.com/warmebetten/sheltermap/internal/model"
)

const listingHTML = `<!DOCTYPE html>
<html><body>
<div class="uk-grid">
  <div class="el-item uk-card uk-card-default">
    <h3 class="el-title"><a href="/angebote/notuebernachtung-lehrter-strasse">  Notübernachtung
      <span>Lehrter Straße</span></a></h3>
    <div class="fs-grid-nested-2">
      <img alt="Viele Plätze frei" src="gruen.png">
      <img alt="Männer: wenige Plätze" src="orange.png">
      <img alt="Frauen: keine Plätze" src="rot.png">
      <img alt="Divers: viele Plätze" src="gruen.png">
      <img alt="" src="leer.png">
    </div>
    <img alt="keine Plätze" src="ausserhalb.png">
  </div>
  <div class="el-item uk-card"><h3 class="el-title"><a>Ohne Link</a></h3></div>
  <div class="el-item"><h3 class="el-title"><a href="/x">Keine Karte</a></h3></div>
  <div class="el-item uk-card"><h3>Kein Titel</h3></div>
</div>
</body></html>`

func TestParsePage(t *testing.T) {
	base, _ := url.Parse("https://kaeltehilfe-berlin.de/")

	offers, err := ParsePage(strings.NewReader(listingHTML), base)
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("len(offers) = %d, want 2", len(offers))
	}

	want := Offer{
		Name:    "Notübernachtung Lehrter Straße",
		URL:     "https://kaeltehilfe-berlin.de/angebote/notuebernachtung-lehrter-strasse",
		Overall: model.StatusPlenty,
		Men:     model.StatusLittle,
		Women:   model.StatusNone,
		Diverse: model.StatusPlenty,
	}
	if offers[0] != want {
		t.Errorf("offers[0] = %+v, want %+v", offers[0], want)
	}

	second := offers[1]
	if second.Name != "Ohne Link" || second.URL != "" {
		t.Errorf("offers[1] = %+v", second)
	}
	if second.Overall != model.StatusUnknown {
		t.Errorf("画像のないカードは不明であるべき: %q", second.Overall)
	}
}

func TestParsePage_Empty(t *testing.T) {
	base, _ := url.Parse("https://kaeltehilfe-berlin.de/")

	offers, err := ParsePage(strings.NewReader("<html><body><p>Keine Angebote</p></body></html>"), base)
	if err != nil {
		t.Fatalf("ParsePage() error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("len(offers) = %d, want 0", len(offers))
	}
}

func TestStatusFromAlt(t *testing.T) {
	tests := []struct {
		alt    string
		want   model.CapacityStatus
		wantOK bool
	}{
		{"Keine Plätze", model.StatusNone, true},
		{"  wenige Plätze verfügbar ", model.StatusLittle, true},
		{"VIELE PLÄTZE", model.StatusPlenty, true},
		{"Logo", model.StatusUnknown, false},
		{"", model.StatusUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.alt, func(t *testing.T) {
			got, ok := statusFromAlt(tt.alt)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("statusFromAlt(%q) = (%q, %v), want (%q, %v)", tt.alt, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOfferUpdate(t *testing.T) {
	o := Offer{Name: "A", URL: "https://example.org/a", Overall: model.StatusLittle, Women: model.StatusNone}
	u := o.Update()
	if u.Overall != model.StatusLittle || u.Women != model.StatusNone || u.SourceURL != "https://example.org/a" {
		t.Errorf("Update() = %+v", u)
	}
	if !u.CheckedAt.IsZero() {
		t.Error("CheckedAt は呼び出し側で設定するべき")
	}
}
