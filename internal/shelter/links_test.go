package shelter

import (
	"testing"

	"github.com/warmebetten/sheltermap/internal/model"
)

func TestNormalizeWebsiteURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"example.org", "https://example.org"},
		{"  www.stadtmission.de/angebote ", "https://www.stadtmission.de/angebote"},
		{"http://example.org", "http://example.org"},
		{"HTTPS://Example.org", "HTTPS://Example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeWebsiteURL(tt.in); got != tt.want {
				t.Errorf("NormalizeWebsiteURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirectionsURL(t *testing.T) {
	got := DirectionsURL(model.Point{Lat: 52.5, Lng: 13.4051})
	want := "https://www.google.com/maps/dir/?api=1&destination=52.5%2C13.4051"
	if got != want {
		t.Errorf("DirectionsURL() = %q, want %q", got, want)
	}
}
