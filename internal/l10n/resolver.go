// Package l10n resolves the localized strings used in the desktop entry:
// it gathers Fluent resources per locale, locally for the default locale and
// over HTTP for the others, and formats messages through fallback chains.
package l10n

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ralt/debrepack/internal/httpx"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrServer is returned when the localization host fails with anything but 404
var ErrServer = errors.New("localization server error")

const (
	// DesktopEntryFileName is the Fluent resource holding desktop entry strings
	DesktopEntryFileName = "linuxDesktopEntry.ftl"

	// DefaultBaseURL serves localization files by revision
	DefaultBaseURL = "https://raw.githubusercontent.com/mozilla-l10n/firefox-l10n"

	// DefaultPlatformPrefix selects locales shipped on Linux
	DefaultPlatformPrefix = "linux"

	logAction = "repackage-deb"

	missingResourceMsg = "Missing {fluent_resource_file_name} for {locale}: received HTTP {status_code} for GET {resource_file_url}"
)

// Paths inside the source checkout
var (
	changesetsPath          = filepath.Join("browser", "locales", "l10n-changesets.json")
	defaultDesktopEntryPath = filepath.Join("browser", "locales", DefaultLocale, "browser", DesktopEntryFileName)
)

// Resolver builds a Localization per supported locale
type Resolver struct {
	// SourceDir is the source checkout holding changesets, en-US and branding files
	SourceDir string
	// WorkDir receives one directory per locale
	WorkDir string

	BaseURL        string
	PlatformPrefix string
	Client         httpx.BasicClient
	Retry          httpx.RetryPolicy
	Log            LogFunc
}

// NewResolver creates a resolver with the default host, platform and retry policy
func NewResolver(sourceDir, workDir string) *Resolver {
	return &Resolver{
		SourceDir:      sourceDir,
		WorkDir:        workDir,
		BaseURL:        DefaultBaseURL,
		PlatformPrefix: DefaultPlatformPrefix,
		Client:         http.DefaultClient,
		Retry:          httpx.DefaultRetryPolicy(),
		Log:            LogrusFunc,
	}
}

// ResourceURL returns where the desktop entry resource of locale lives at revision
func (r *Resolver) ResourceURL(locale, revision string) string {
	return fmt.Sprintf("%s/%s/%s/browser/browser/%s", r.BaseURL, revision, locale, DesktopEntryFileName)
}

// Resolve fetches resources for every locale and returns their localizations.
// Locales missing upstream (HTTP 404) are skipped.
func (r *Resolver) Resolve(ctx context.Context, releaseType, releaseProduct string) (*Localizations, error) {
	brandFile, err := BrandFile(releaseType, releaseProduct)
	if err != nil {
		return nil, err
	}
	brandPath := filepath.Join(r.SourceDir, brandFile)

	changesets, err := LoadChangesets(filepath.Join(r.SourceDir, changesetsPath), r.PlatformPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load changesets: %w", err)
	}

	if err := utils.EnsureDir(r.WorkDir); err != nil {
		return nil, err
	}
	loader := NewResourceLoader(filepath.Join(r.WorkDir, "{locale}"))
	resourceIDs := []string{DesktopEntryFileName, BrandFileName}

	localizations := NewLocalizations()
	for _, locale := range OrderedLocales(changesets) {
		localeDir := filepath.Join(r.WorkDir, locale)
		if err := os.Mkdir(localeDir, 0755); err != nil {
			return nil, err
		}
		resourcePath := filepath.Join(localeDir, DesktopEntryFileName)

		if locale == DefaultLocale {
			if err := utils.CopyFile(filepath.Join(r.SourceDir, defaultDesktopEntryPath), resourcePath); err != nil {
				return nil, fmt.Errorf("failed to copy %s resource: %w", DefaultLocale, err)
			}
		} else {
			found, err := r.fetch(ctx, locale, changesets[locale].Revision, resourcePath)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
		}

		if err := utils.CopyFile(brandPath, filepath.Join(localeDir, BrandFileName)); err != nil {
			return nil, fmt.Errorf("failed to copy brand resource: %w", err)
		}

		fallbacks := []string{locale}
		if locale != DefaultLocale {
			fallbacks = append(fallbacks, DefaultLocale)
		}
		loc, err := NewLocalization(fallbacks, resourceIDs, loader)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("Localization %s resolves through %v", locale, loc.Locales())
		localizations.Add(locale, loc)
	}

	logrus.Infof("Resolved %d desktop entry localizations", localizations.Len())
	return localizations, nil
}

// fetch downloads the desktop entry resource of locale to dst. It reports
// false when the resource does not exist upstream.
func (r *Resolver) fetch(ctx context.Context, locale, revision, dst string) (bool, error) {
	url := r.ResourceURL(locale, revision)
	resp, err := httpx.Get(ctx, r.Client, url, r.Retry)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("%w: %v", ErrServer, err)
	}

	params := logrus.Fields{
		"fluent_resource_file_name": DesktopEntryFileName,
		"locale":                    locale,
		"resource_file_url":         url,
		"status_code":               resp.StatusCode,
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		r.log(logrus.WarnLevel, params)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		r.log(logrus.ErrorLevel, params)
		return false, fmt.Errorf("%w: %s", ErrServer, FormatMessage(missingResourceMsg, params))
	}

	if err := utils.WriteFile(dst, resp.Body, 0644); err != nil {
		return false, err
	}
	logrus.Debugf("Fetched %s for %s", DesktopEntryFileName, locale)
	return true, nil
}

func (r *Resolver) log(level logrus.Level, params logrus.Fields) {
	if r.Log != nil {
		r.Log(level, logAction, params, missingResourceMsg)
	}
}
