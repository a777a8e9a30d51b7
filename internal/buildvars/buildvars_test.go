package buildvars

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/debrepack/internal/models"
)

func firefoxMetadata() *models.ApplicationMetadata {
	return &models.ApplicationMetadata{
		Name:          "Firefox",
		DisplayName:   "Firefox",
		Vendor:        "Mozilla",
		RemotingName:  "firefox",
		BuildID:       "20240101000000",
		Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DebPkgVersion: "121.0~build1",
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		arch    string
		depends string
		opts    Options
		want    models.BuildVariables
	}{
		{
			name:    "firefox",
			arch:    "x86_64",
			depends: "${shlibs:Depends},",
			opts:    Options{ReleaseProduct: "firefox"},
			want: models.BuildVariables{
				"DEB_DESCRIPTION":      "Mozilla Firefox",
				"DEB_PKG_INSTALL_PATH": "usr/lib/firefox",
				"DEB_PKG_NAME":         "firefox",
				"DEB_PKG_VERSION":      "121.0~build1",
				"DEB_CHANGELOG_DATE":   "Mon, 01 Jan 2024 00:00:00 -0000",
				"DEB_ARCH_NAME":        "amd64",
				"DEB_DEPENDS":          "${shlibs:Depends},",
			},
		},
		{
			name:    "devedition langpack",
			arch:    "all",
			depends: "firefox-devedition (= 121.0~build1)",
			opts: Options{
				ReleaseProduct:    "devedition",
				PackageNameSuffix: "-l10n-fr",
				DescriptionSuffix: " - Language pack for Firefox for fr",
			},
			want: models.BuildVariables{
				"DEB_DESCRIPTION":      "Mozilla Firefox - Language pack for Firefox for fr",
				"DEB_PKG_INSTALL_PATH": "usr/lib/firefox-devedition",
				"DEB_PKG_NAME":         "firefox-devedition-l10n-fr",
				"DEB_PKG_VERSION":      "121.0~build1",
				"DEB_CHANGELOG_DATE":   "Mon, 01 Jan 2024 00:00:00 -0000",
				"DEB_ARCH_NAME":        "all",
				"DEB_DEPENDS":          "firefox-devedition (= 121.0~build1)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Get(firefoxMetadata(), tt.arch, tt.depends, tt.opts)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetUnknownArch(t *testing.T) {
	if _, err := Get(firefoxMetadata(), "sparc", "", Options{}); err == nil {
		t.Fatalf("Get succeeded for an unknown architecture")
	}
}
