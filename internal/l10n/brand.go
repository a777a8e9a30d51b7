package l10n

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownBranding is returned for release type and product combinations
// without a branding
var ErrUnknownBranding = errors.New("no branding for release")

// BrandFileName is the Fluent resource holding brand strings
const BrandFileName = "brand.ftl"

// Brand returns the branding set for a release type and product
func Brand(releaseType, releaseProduct string) (string, error) {
	switch {
	case releaseType == "nightly":
		return "nightly", nil
	case releaseType == "release" || releaseType == "release-rc":
		return "official", nil
	case releaseType == "beta" && releaseProduct == "firefox":
		return "official", nil
	case releaseType == "beta" && releaseProduct == "devedition":
		return "aurora", nil
	case strings.HasPrefix(releaseType, "esr"):
		return "official", nil
	case releaseType == "unofficial":
		return "unofficial", nil
	default:
		return "", fmt.Errorf("%w: type %q, product %q", ErrUnknownBranding, releaseType, releaseProduct)
	}
}

// BrandFile returns the default locale brand resource, relative to the source checkout
func BrandFile(releaseType, releaseProduct string) (string, error) {
	brand, err := Brand(releaseType, releaseProduct)
	if err != nil {
		return "", err
	}
	return filepath.Join("browser", "branding", brand, "locales", DefaultLocale, BrandFileName), nil
}
