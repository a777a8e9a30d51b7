// Package desktop generates the freedesktop.org desktop entry shipped with
// the browser package.
package desktop

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ralt/debrepack/internal/buildvars"
	"github.com/ralt/debrepack/internal/l10n"
	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/utils"
)

var mimeTypes = []string{
	"application/json",
	"application/pdf",
	"application/rdf+xml",
	"application/rss+xml",
	"application/x-xpinstall",
	"application/xhtml+xml",
	"application/xml",
	"audio/flac",
	"audio/ogg",
	"audio/webm",
	"image/avif",
	"image/gif",
	"image/jpeg",
	"image/png",
	"image/svg+xml",
	"image/webp",
	"text/html",
	"text/xml",
	"video/ogg",
	"video/webm",
	"x-scheme-handler/chrome",
	"x-scheme-handler/http",
	"x-scheme-handler/https",
	"x-scheme-handler/mailto",
}

var categories = []string{"GNOME", "GTK", "Network", "WebBrowser"}

// Attribute is one key of a desktop entry section. Localized attributes hold
// a message id and are emitted once per locale.
type Attribute struct {
	Key       string
	Value     string
	Localized bool
}

// Section is a [header] group of attributes
type Section struct {
	Header     string
	Attributes []Attribute
}

type action struct {
	name    string
	message string
	command string
}

// Sections describes the browser desktop entry for the package in vars
func Sections(vars models.BuildVariables, releaseProduct string) []Section {
	pkgName := vars.PkgName()

	wmClass := pkgName
	if releaseProduct == buildvars.ProductDevedition {
		wmClass = "firefox-aurora"
	}

	actions := []action{
		{"new-window", "desktop-action-new-window-name", pkgName + " --new-window %u"},
		{"new-private-window", "desktop-action-new-private-window-name", pkgName + " --private-window %u"},
		{"open-profile-manager", "desktop-action-open-profile-manager", pkgName + " --ProfileManager"},
	}
	actionNames := make([]string, 0, len(actions))
	for _, a := range actions {
		actionNames = append(actionNames, a.name)
	}

	sections := []Section{{
		Header: "Desktop Entry",
		Attributes: []Attribute{
			{Key: "Version", Value: "1.0"},
			{Key: "Type", Value: "Application"},
			{Key: "Exec", Value: pkgName + " %u"},
			{Key: "Terminal", Value: "false"},
			{Key: "X-MultipleArgs", Value: "false"},
			{Key: "Icon", Value: pkgName},
			{Key: "StartupWMClass", Value: wmClass},
			{Key: "Categories", Value: list(categories)},
			{Key: "MimeType", Value: list(mimeTypes)},
			{Key: "StartupNotify", Value: "true"},
			{Key: "Actions", Value: list(actionNames)},
			{Key: "Name", Value: "desktop-entry-name", Localized: true},
			{Key: "Comment", Value: "desktop-entry-comment", Localized: true},
			{Key: "GenericName", Value: "desktop-entry-generic-name", Localized: true},
			{Key: "Keywords", Value: "desktop-entry-keywords", Localized: true},
			{Key: "X-GNOME-FullName", Value: "desktop-entry-x-gnome-full-name", Localized: true},
		},
	}}

	for _, a := range actions {
		sections = append(sections, Section{
			Header: "Desktop Action " + a.name,
			Attributes: []Attribute{
				{Key: "Name", Value: a.message, Localized: true},
				{Key: "Exec", Value: a.command},
			},
		})
	}
	return sections
}

// Render returns the lines of sections. Plain attributes come first, then
// every localized attribute once per locale.
func Render(sections []Section, locs *l10n.Localizations) []string {
	var lines []string
	for _, s := range sections {
		lines = append(lines, fmt.Sprintf("[%s]", s.Header))
		for _, attr := range s.Attributes {
			if !attr.Localized {
				lines = append(lines, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
			}
		}
		for _, attr := range s.Attributes {
			if !attr.Localized {
				continue
			}
			for _, locale := range locs.Locales() {
				loc, ok := locs.Get(locale)
				if !ok {
					continue
				}
				lines = append(lines, localized(attr.Key, locale, loc.FormatValue(attr.Value)))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

func localized(key, locale, value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	if locale == l10n.DefaultLocale {
		return fmt.Sprintf("%s=%s", key, value)
	}
	return fmt.Sprintf("%s[%s]=%s", key, strings.ReplaceAll(locale, "-", "_"), value)
}

func list(items []string) string {
	return strings.Join(items, ";") + ";"
}

// Generate returns the lines of the desktop entry for the package in vars
func Generate(vars models.BuildVariables, releaseProduct string, locs *l10n.Localizations) []string {
	return Render(Sections(vars, releaseProduct), locs)
}

// Text renders the complete desktop entry file
func Text(vars models.BuildVariables, releaseProduct string, locs *l10n.Localizations) string {
	return strings.Join(Generate(vars, releaseProduct, locs), "\n")
}

// FileName returns the desktop entry file name for the package
func FileName(vars models.BuildVariables) string {
	return vars.PkgName() + ".desktop"
}

// Inject writes the desktop entry into sourceDir/debian
func Inject(sourceDir string, vars models.BuildVariables, releaseProduct string, locs *l10n.Localizations) error {
	path := filepath.Join(sourceDir, "debian", FileName(vars))
	return utils.WriteFile(path, []byte(Text(vars, releaseProduct, locs)), 0644)
}
