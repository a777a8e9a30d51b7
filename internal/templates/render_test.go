package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/debrepack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vars = models.BuildVariables{
	"DEB_PKG_NAME":    "firefox",
	"DEB_PKG_VERSION": "121.0~build1",
	"DEB_DEPENDS":     "${shlibs:Depends},",
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Package: ${DEB_PKG_NAME}", "Package: firefox"},
		{"Package: $DEB_PKG_NAME\n", "Package: firefox\n"},
		{"Depends: ${DEB_DEPENDS} libc6", "Depends: ${shlibs:Depends}, libc6"},
		{"cost: $$5", "cost: $5"},
		{"$(MAKE) is $$(MAKE)", ""},
		{"no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		got, err := Substitute(tt.in, vars)
		if tt.want == "" {
			var invalid *InvalidPlaceholderError
			require.ErrorAs(t, err, &invalid, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSubstituteMissingVariable(t *testing.T) {
	_, err := Substitute("line one\nVersion: ${DEB_MISSING}\n", vars)

	var missing *MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "DEB_MISSING", missing.Name)
	assert.Equal(t, 2, missing.Line)
}

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		mode := os.FileMode(0644)
		if name == "rules" {
			mode = 0755
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), mode))
	}
	return dir
}

func TestCopyPlainAndRender(t *testing.T) {
	templateDir := writeTemplates(t, map[string]string{
		"control.in":       "Package: ${DEB_PKG_NAME}\nDepends: ${DEB_DEPENDS}\n",
		"changelog.in":     "${DEB_PKG_NAME} (${DEB_PKG_VERSION}) unstable; urgency=medium\n",
		"rules":            "#!/usr/bin/make -f\n%:\n\tdh $@\n",
		"compat":           "10\n",
		"package-prefs.js": "pref(\"intl.locale.requested\", \"\");\n",
	})
	sourceDir := t.TempDir()

	require.NoError(t, CopyPlain(templateDir, sourceDir))
	require.NoError(t, Render(templateDir, sourceDir, vars))

	debianDir := filepath.Join(sourceDir, "debian")
	entries, err := os.ReadDir(debianDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"changelog", "compat", "control", "rules"}, names)

	control, err := os.ReadFile(filepath.Join(debianDir, "control"))
	require.NoError(t, err)
	assert.Equal(t, "Package: firefox\nDepends: ${shlibs:Depends},\n", string(control))

	rules, err := os.Stat(filepath.Join(debianDir, "rules"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), rules.Mode().Perm())
}

func TestRenderIsIdempotent(t *testing.T) {
	templateDir := writeTemplates(t, map[string]string{
		"control.in": "Package: ${DEB_PKG_NAME}\nVersion: ${DEB_PKG_VERSION}\n",
	})
	first, second := t.TempDir(), t.TempDir()

	require.NoError(t, Render(templateDir, first, vars))
	require.NoError(t, Render(templateDir, second, vars))
	require.NoError(t, Render(templateDir, second, vars))

	a, err := os.ReadFile(filepath.Join(first, "debian", "control"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(second, "debian", "control"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderExcludesAndFailsLoudly(t *testing.T) {
	templateDir := writeTemplates(t, map[string]string{
		"control.in": "Package: ${DEB_PKG_NAME}\n",
		"broken.in":  "Homepage: ${DEB_HOMEPAGE}\n",
	})

	err := Render(templateDir, t.TempDir(), vars)
	var repackErr *models.RepackError
	require.True(t, errors.As(err, &repackErr))
	assert.Equal(t, models.ErrTemplate, repackErr.Type)
	assert.Contains(t, err.Error(), "DEB_HOMEPAGE")

	sourceDir := t.TempDir()
	require.NoError(t, Render(templateDir, sourceDir, vars, "broken.in"))
	assert.NoFileExists(t, filepath.Join(sourceDir, "debian", "broken"))
	assert.FileExists(t, filepath.Join(sourceDir, "debian", "control"))
}
