package debian

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ChrootRoot is where per-architecture build sysroots are installed
const ChrootRoot = "/srv"

// Maps pipeline architecture names (e.g., "x86_64") to the architectures
// dpkg-buildpackage builds for ("amd64").
var debArch = map[string]string{
	"all":     "all",
	"x86":     "i386",
	"x86_64":  "amd64",
	"aarch64": "arm64",
}

// Architecture of the sysroot dpkg-buildpackage runs on, per target architecture.
var sysrootArch = map[string]string{
	"all":     "amd64",
	"x86":     "i386",
	"x86_64":  "amd64",
	"aarch64": "amd64",
}

// Debian distribution of the sysroot, per target architecture.
var sysrootDist = map[string]string{
	"all":     "jessie",
	"x86":     "jessie",
	"x86_64":  "jessie",
	"aarch64": "buster",
}

// Arch is the resolved set of names for one pipeline architecture
type Arch struct {
	Name        string // Pipeline name, e.g. x86_64
	DebArch     string // Target architecture, e.g. amd64
	SysrootArch string
	SysrootDist string
}

// LookupArch resolves a pipeline architecture name. The name must be known
// to every mapping table.
func LookupArch(name string) (Arch, error) {
	deb, ok1 := debArch[name]
	sysArch, ok2 := sysrootArch[name]
	sysDist, ok3 := sysrootDist[name]
	if !ok1 || !ok2 || !ok3 {
		return Arch{}, fmt.Errorf("unsupported architecture %q (supported: %v)", name, SupportedArches())
	}
	return Arch{
		Name:        name,
		DebArch:     deb,
		SysrootArch: sysArch,
		SysrootDist: sysDist,
	}, nil
}

// SupportedArches returns the pipeline architecture names, sorted
func SupportedArches() []string {
	names := make([]string, 0, len(debArch))
	for name := range debArch {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChrootIn returns the sysroot path for this architecture below root
func (a Arch) ChrootIn(root string) string {
	return filepath.Join(root, fmt.Sprintf("%s-%s", a.SysrootDist, a.SysrootArch))
}
