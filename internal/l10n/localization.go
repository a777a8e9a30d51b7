package l10n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResourceLoader loads Fluent resources from a directory per locale. Root
// contains a {locale} placeholder.
type ResourceLoader struct {
	Root string
}

// NewResourceLoader creates a loader rooted at root, e.g. /tmp/l10n/{locale}
func NewResourceLoader(root string) *ResourceLoader {
	return &ResourceLoader{Root: root}
}

// Resources loads the resources of locale that exist on disk
func (l *ResourceLoader) Resources(locale string, resourceIDs []string) ([]*Resource, error) {
	dir := strings.ReplaceAll(l.Root, "{locale}", locale)

	var resources []*Resource
	for _, id := range resourceIDs {
		f, err := os.Open(filepath.Join(dir, id))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res, err := ParseResource(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s for %s: %w", id, locale, err)
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// Localization formats messages through a chain of locale bundles
type Localization struct {
	locales []string
	bundles []*Bundle
}

// NewLocalization builds one bundle per locale of the fallback chain. Locales
// without any resource on disk are left out of the chain.
func NewLocalization(locales, resourceIDs []string, loader *ResourceLoader) (*Localization, error) {
	l := &Localization{locales: locales}
	for _, locale := range locales {
		resources, err := loader.Resources(locale, resourceIDs)
		if err != nil {
			return nil, err
		}
		if len(resources) == 0 {
			continue
		}
		b := NewBundle(locale)
		for _, res := range resources {
			b.AddResource(res)
		}
		l.bundles = append(l.bundles, b)
	}
	return l, nil
}

// Locales returns the fallback chain
func (l *Localization) Locales() []string {
	return l.locales
}

// FormatValue formats message id using the first bundle defining it. When no
// bundle does, id itself is returned.
func (l *Localization) FormatValue(id string) string {
	for _, b := range l.bundles {
		if value, ok := b.FormatValue(id); ok {
			return value
		}
	}
	return id
}

// Localizations maps locales to their Localization, keeping resolution order
type Localizations struct {
	order    []string
	byLocale map[string]*Localization
}

// NewLocalizations creates an empty ordered set
func NewLocalizations() *Localizations {
	return &Localizations{byLocale: make(map[string]*Localization)}
}

// Add registers loc for locale, replacing any earlier entry
func (l *Localizations) Add(locale string, loc *Localization) {
	if _, ok := l.byLocale[locale]; !ok {
		l.order = append(l.order, locale)
	}
	l.byLocale[locale] = loc
}

// Locales returns the registered locales in insertion order
func (l *Localizations) Locales() []string {
	return append([]string(nil), l.order...)
}

// Get returns the Localization for locale
func (l *Localizations) Get(locale string) (*Localization, bool) {
	loc, ok := l.byLocale[locale]
	return loc, ok
}

// Len returns the number of locales
func (l *Localizations) Len() int {
	return len(l.order)
}
