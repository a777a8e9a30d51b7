package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/debrepack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePackagedMarker(t *testing.T) {
	sourceDir := t.TempDir()
	require.NoError(t, WritePackagedMarker(sourceDir, "Firefox"))

	data, err := os.ReadFile(filepath.Join(sourceDir, "firefox", "is-packaged-app"))
	require.NoError(t, err)
	assert.Equal(t, "This is a packaged app.\n", string(data))
}

func TestInjectPrefs(t *testing.T) {
	templateDir := t.TempDir()
	prefs := "pref(\"intl.locale.requested\", \"\");\n"
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, PrefsFileName), []byte(prefs), 0644))

	sourceDir := t.TempDir()
	require.NoError(t, InjectPrefs(sourceDir, "Firefox", templateDir))

	data, err := os.ReadFile(filepath.Join(sourceDir, "firefox", "defaults", "pref", "package-prefs.js"))
	require.NoError(t, err)
	assert.Equal(t, prefs, string(data))
}

func TestInjectPrefsMissingTemplate(t *testing.T) {
	err := InjectPrefs(t.TempDir(), "Firefox", t.TempDir())

	var repackErr *models.RepackError
	require.ErrorAs(t, err, &repackErr)
	assert.Equal(t, models.ErrFileOp, repackErr.Type)
}

func TestInjectLangpack(t *testing.T) {
	xpi := filepath.Join(t.TempDir(), "langpack.xpi")
	require.NoError(t, os.WriteFile(xpi, []byte("PK"), 0644))

	sourceDir := t.TempDir()
	require.NoError(t, InjectLangpack(sourceDir, xpi, "langpack-de@firefox.mozilla.org"))

	assert.FileExists(t, filepath.Join(sourceDir, "firefox", "distribution", "extensions", "langpack-de@firefox.mozilla.org.xpi"))
}
