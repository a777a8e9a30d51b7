package l10n

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestBrand(t *testing.T) {
	tests := []struct {
		releaseType string
		product     string
		want        string
	}{
		{"nightly", "firefox", "nightly"},
		{"release", "firefox", "official"},
		{"release-rc", "firefox", "official"},
		{"beta", "firefox", "official"},
		{"beta", "devedition", "aurora"},
		{"esr115", "firefox", "official"},
		{"esr128", "firefox", "official"},
		{"unofficial", "firefox", "unofficial"},
	}

	for _, tt := range tests {
		got, err := Brand(tt.releaseType, tt.product)
		if err != nil {
			t.Fatalf("Brand(%q, %q) failed: %v", tt.releaseType, tt.product, err)
		}
		if got != tt.want {
			t.Errorf("Brand(%q, %q) = %q, want %q", tt.releaseType, tt.product, got, tt.want)
		}
	}
}

func TestBrandUnknownCombination(t *testing.T) {
	for _, tt := range [][2]string{{"beta", "thunderbird"}, {"aurora", "firefox"}, {"", ""}} {
		_, err := Brand(tt[0], tt[1])
		if !errors.Is(err, ErrUnknownBranding) {
			t.Errorf("Brand(%q, %q) error = %v, want ErrUnknownBranding", tt[0], tt[1], err)
		}
	}
}

func TestBrandFile(t *testing.T) {
	got, err := BrandFile("beta", "devedition")
	if err != nil {
		t.Fatalf("BrandFile failed: %v", err)
	}
	want := filepath.Join("browser", "branding", "aurora", "locales", "en-US", "brand.ftl")
	if got != want {
		t.Errorf("BrandFile = %s, want %s", got, want)
	}
}
