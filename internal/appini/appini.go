// Package appini reads application metadata from the application.ini
// descriptor bundled in a browser archive.
package appini

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/gecko"
	"github.com/ralt/debrepack/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// FileName is the descriptor's base name inside the archive
const FileName = "application.ini"

// BuildIDLayout is the time layout of the BuildID field
const BuildIDLayout = "20060102150405"

const appSection = "App"

// field describes one [App] key, with an optional key read when it is absent
type field struct {
	name     string
	key      string
	fallback string
}

var fields = []field{
	{name: "name", key: "Name"},
	{name: "display_name", key: "CodeName", fallback: "Name"},
	{name: "vendor", key: "Vendor"},
	{name: "remoting_name", key: "RemotingName"},
	{name: "build_id", key: "BuildID"},
}

// Extract locates the single application.ini in the tarball and returns its
// raw values keyed by name, display_name, vendor, remoting_name and build_id
func Extract(tarball string) (map[string]string, error) {
	members, err := archive.FindMembers(tarball, "/"+FileName)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("cannot find any %s file in archive %s", FileName, tarball)
	}
	if len(members) > 1 {
		return nil, fmt.Errorf("too many %s files found in archive %s. Found: %s",
			FileName, tarball, strings.Join(members, ", "))
	}

	scratch, err := os.MkdirTemp("", "debrepack-appini-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	path, err := archive.ExtractMember(tarball, members[0], scratch)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", members[0], err)
	}

	logrus.Debugf("Reading %s from %s", members[0], tarball)
	return parseFile(path)
}

func parseFile(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	section, err := cfg.GetSection(appSection)
	if err != nil {
		return nil, fmt.Errorf("%s has no [%s] section", FileName, appSection)
	}

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		key := f.key
		if !section.HasKey(key) && f.fallback != "" {
			key = f.fallback
		}
		if !section.HasKey(key) {
			return nil, fmt.Errorf("%s is missing [%s] %s", FileName, appSection, f.key)
		}
		values[f.name] = section.Key(key).String()
	}
	return values, nil
}

// Load extracts and parses the descriptor, deriving the build timestamp and the
// Debian package version from version and buildNumber
func Load(tarball, version, buildNumber string) (*models.ApplicationMetadata, error) {
	values, err := Extract(tarball)
	if err != nil {
		return nil, err
	}
	return Parse(values, version, buildNumber)
}

// Parse turns raw descriptor values into ApplicationMetadata
func Parse(values map[string]string, version, buildNumber string) (*models.ApplicationMetadata, error) {
	buildID := values["build_id"]
	timestamp, err := time.Parse(BuildIDLayout, buildID)
	if err != nil {
		return nil, fmt.Errorf("invalid BuildID %q: %w", buildID, err)
	}

	debVersion, err := gecko.DebVersion(version, buildID, buildNumber)
	if err != nil {
		return nil, err
	}

	return &models.ApplicationMetadata{
		Name:          values["name"],
		DisplayName:   values["display_name"],
		Vendor:        values["vendor"],
		RemotingName:  strings.ToLower(values["remoting_name"]),
		BuildID:       buildID,
		Timestamp:     timestamp,
		DebPkgVersion: debVersion,
	}, nil
}
