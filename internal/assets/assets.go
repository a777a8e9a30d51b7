// Package assets places the extra files a packaged build carries into the
// application directory of a source tree.
package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// PackagedMarkerName tells the browser it was installed by a package manager
	PackagedMarkerName = "is-packaged-app"

	packagedMarkerBody = "This is a packaged app.\n"

	// PrefsFileName is the preference file shipped with the packaging templates
	PrefsFileName = "package-prefs.js"
)

// AppDir returns the application directory of appName inside sourceDir
func AppDir(sourceDir, appName string) string {
	return filepath.Join(sourceDir, strings.ToLower(appName))
}

// WritePackagedMarker writes the packaged-app marker file
func WritePackagedMarker(sourceDir, appName string) error {
	path := filepath.Join(AppDir(sourceDir, appName), PackagedMarkerName)
	if err := utils.WriteFile(path, []byte(packagedMarkerBody), 0644); err != nil {
		return models.Wrap(models.ErrFileOp, path, fmt.Errorf("failed to write packaged marker: %w", err))
	}
	logrus.Debugf("Wrote %s", path)
	return nil
}

// InjectPrefs copies the packaging preference file into the default prefs directory
func InjectPrefs(sourceDir, appName, templateDir string) error {
	src := filepath.Join(templateDir, PrefsFileName)
	dst := filepath.Join(AppDir(sourceDir, appName), "defaults", "pref", PrefsFileName)
	if err := utils.CopyFile(src, dst); err != nil {
		return models.Wrap(models.ErrFileOp, src, fmt.Errorf("failed to copy prefs: %w", err))
	}
	logrus.Debugf("Copied %s to %s", src, dst)
	return nil
}

// InjectLangpack copies a language pack into the distribution extensions
// directory, named after its extension id
func InjectLangpack(sourceDir, xpi, extensionID string) error {
	dst := filepath.Join(sourceDir, "firefox", "distribution", "extensions", extensionID+".xpi")
	if err := utils.CopyFile(xpi, dst); err != nil {
		return models.Wrap(models.ErrFileOp, xpi, fmt.Errorf("failed to copy language pack: %w", err))
	}
	logrus.Debugf("Copied %s to %s", xpi, dst)
	return nil
}
