// Package gecko parses browser release versions.
package gecko

import (
	"fmt"
	"regexp"
	"strconv"
)

// Channel is the release channel a version belongs to
type Channel int

const (
	ChannelRelease Channel = iota
	ChannelNightly
	ChannelAurora
	ChannelBeta
	ChannelESR
)

// String returns the string representation of Channel
func (c Channel) String() string {
	switch c {
	case ChannelNightly:
		return "nightly"
	case ChannelAurora:
		return "aurora"
	case ChannelBeta:
		return "beta"
	case ChannelESR:
		return "esr"
	default:
		return "release"
	}
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:(a1)|(a2)|b(\d+)|(esr))?$`)

// Version is a parsed browser version such as 121.0, 122.0a1, 121.0b3 or 115.6.0esr
type Version struct {
	Major   int
	Minor   int
	Patch   int
	Beta    int
	Channel Channel

	raw string
}

// ParseVersion parses a browser version string
func ParseVersion(s string) (*Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", s)
	}

	v := &Version{raw: s}
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}

	switch {
	case m[4] != "":
		v.Channel = ChannelNightly
	case m[5] != "":
		v.Channel = ChannelAurora
	case m[6] != "":
		v.Channel = ChannelBeta
		v.Beta, _ = strconv.Atoi(m[6])
		if v.Beta == 0 {
			return nil, fmt.Errorf("invalid version %q: beta number must start at 1", s)
		}
	case m[7] != "":
		v.Channel = ChannelESR
	}

	return v, nil
}

// IsNightly reports whether the version comes from the nightly channel
func (v *Version) IsNightly() bool {
	return v.Channel == ChannelNightly
}

// String returns the version as it was given
func (v *Version) String() string {
	return v.raw
}

// DebVersion returns the Debian package version: nightly builds embed the
// build id, every other channel embeds the build number
func DebVersion(version, buildID, buildNumber string) (string, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return "", err
	}
	if v.IsNightly() {
		return fmt.Sprintf("%s~%s", v, buildID), nil
	}
	return fmt.Sprintf("%s~build%s", v, buildNumber), nil
}
