package appini

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/archive/archivetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxINI = `[App]
Vendor=Mozilla
Name=Firefox
RemotingName=firefox
CodeName=Firefox
BuildID=20240101000000

[Gecko]
MinVersion=121.0
`

func writeTarball(t *testing.T, files ...archivetest.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firefox.tar.gz")
	require.NoError(t, archivetest.WriteTarball(path, files, archive.CompressionGzip))
	return path
}

func TestExtract(t *testing.T) {
	tarball := writeTarball(t,
		archivetest.File{Name: "firefox/application.ini", Body: firefoxINI},
		archivetest.File{Name: "firefox/firefox", Body: "bin", Mode: 0755},
	)

	values, err := Extract(tarball)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"name":          "Firefox",
		"display_name":  "Firefox",
		"vendor":        "Mozilla",
		"remoting_name": "firefox",
		"build_id":      "20240101000000",
	}, values)
}

func TestExtractCodeNameFallsBackToName(t *testing.T) {
	tarball := writeTarball(t, archivetest.File{
		Name: "firefox/application.ini",
		Body: "[App]\nVendor=Mozilla\nName=Firefox\nRemotingName=Firefox\nBuildID=20240101000000\n",
	})

	values, err := Extract(tarball)
	require.NoError(t, err)
	assert.Equal(t, "Firefox", values["display_name"])
}

func TestExtractCountMismatch(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		tarball := writeTarball(t, archivetest.File{Name: "firefox/firefox", Body: "bin"})
		_, err := Extract(tarball)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot find any application.ini")
	})

	t.Run("many", func(t *testing.T) {
		tarball := writeTarball(t,
			archivetest.File{Name: "firefox/application.ini", Body: firefoxINI},
			archivetest.File{Name: "firefox/browser/application.ini", Body: firefoxINI},
		)
		_, err := Extract(tarball)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many application.ini")
	})
}

func TestExtractMissingKey(t *testing.T) {
	tarball := writeTarball(t, archivetest.File{
		Name: "firefox/application.ini",
		Body: "[App]\nName=Firefox\nBuildID=20240101000000\n",
	})

	_, err := Extract(tarball)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Vendor")
}

func TestLoad(t *testing.T) {
	tarball := writeTarball(t, archivetest.File{Name: "firefox/application.ini", Body: firefoxINI})

	meta, err := Load(tarball, "121.0", "1")
	require.NoError(t, err)

	assert.Equal(t, "Firefox", meta.Name)
	assert.Equal(t, "firefox", meta.RemotingName)
	assert.Equal(t, "121.0~build1", meta.DebPkgVersion)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), meta.Timestamp)
}

func TestParseRejectsBadBuildID(t *testing.T) {
	_, err := Parse(map[string]string{"build_id": "yesterday"}, "121.0", "1")
	assert.Error(t, err)
}

func TestParseLowercasesRemotingName(t *testing.T) {
	meta, err := Parse(map[string]string{
		"name":          "Firefox",
		"display_name":  "Nightly",
		"vendor":        "Mozilla",
		"remoting_name": "Firefox-Nightly",
		"build_id":      "20240101000000",
	}, "122.0a1", "1")
	require.NoError(t, err)
	assert.Equal(t, "firefox-nightly", meta.RemotingName)
	assert.Equal(t, "122.0a1~20240101000000", meta.DebPkgVersion)
}
