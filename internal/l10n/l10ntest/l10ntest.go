// Package l10ntest writes the localization files of a source checkout for tests.
package l10ntest

import (
	"os"
	"path/filepath"
)

// DesktopEntryFTL is a default locale desktop entry resource
const DesktopEntryFTL = `### Desktop entry strings

desktop-entry-name = { -brand-shortcut-name }
desktop-entry-comment = Browse the World Wide Web
desktop-entry-generic-name = Web Browser
desktop-entry-keywords = Internet;WWW;Browser;Web;Explorer;
desktop-entry-x-gnome-full-name = { -brand-full-name }

desktop-action-new-window-name = New Window
desktop-action-new-private-window-name = New Private Window
desktop-action-open-profile-manager = Open Profile Manager
`

// GermanDesktopEntryFTL lacks the keywords message to exercise fallback
const GermanDesktopEntryFTL = `desktop-entry-name = { -brand-shortcut-name }
desktop-entry-comment = Im Internet surfen
desktop-entry-generic-name = Webbrowser
desktop-entry-x-gnome-full-name = { -brand-full-name }
desktop-action-new-window-name = Neues Fenster
desktop-action-new-private-window-name = Neues privates Fenster
desktop-action-open-profile-manager = Profilverwaltung öffnen
`

// Brands maps a branding set to its brand.ftl content
var Brands = map[string]string{
	"official":   "-brand-shortcut-name = Firefox\n-brand-full-name = Mozilla Firefox\n",
	"nightly":    "-brand-shortcut-name = Firefox Nightly\n-brand-full-name = Firefox Nightly\n",
	"aurora":     "-brand-shortcut-name = Firefox Developer Edition\n-brand-full-name = Firefox Developer Edition\n",
	"unofficial": "-brand-shortcut-name = Nightly\n-brand-full-name = Nightly\n",
}

// WriteCheckout lays out changesets, the default locale resource and every
// branding set under dir
func WriteCheckout(dir, changesets string) error {
	files := map[string]string{
		filepath.Join("browser", "locales", "l10n-changesets.json"):                      changesets,
		filepath.Join("browser", "locales", "en-US", "browser", "linuxDesktopEntry.ftl"): DesktopEntryFTL,
	}
	for brand, body := range Brands {
		files[filepath.Join("browser", "branding", brand, "locales", "en-US", "brand.ftl")] = body
	}

	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return err
		}
	}
	return nil
}
