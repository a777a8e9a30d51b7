// Package templates copies static Debian packaging files and renders the
// parameterized ones into a package source tree.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

// Suffix marks files rendered through Substitute
const Suffix = ".in"

// prefsSuffix marks preference files, injected separately from debian/
const prefsSuffix = ".js"

// DebianDir is where packaging files land inside the source tree
const DebianDir = "debian"

// listFiles returns the sorted names of regular files directly inside dir
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CopyPlain copies every file of templateDir that is neither a template nor a
// preferences file into sourceDir/debian, verbatim
func CopyPlain(templateDir, sourceDir string) error {
	names, err := listFiles(templateDir)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	debianDir := filepath.Join(sourceDir, DebianDir)
	if err := utils.EnsureDir(debianDir); err != nil {
		return err
	}

	for _, name := range names {
		if strings.HasSuffix(name, Suffix) || strings.HasSuffix(name, prefsSuffix) {
			continue
		}
		if err := utils.CopyFile(filepath.Join(templateDir, name), filepath.Join(debianDir, name)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		logrus.Debugf("Copied %s", name)
	}
	return nil
}

// Render substitutes vars into every *.in file of templateDir, except those
// named in exclude, and writes the result to sourceDir/debian without the suffix
func Render(templateDir, sourceDir string, vars models.BuildVariables, exclude ...string) error {
	names, err := listFiles(templateDir)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	debianDir := filepath.Join(sourceDir, DebianDir)
	if err := utils.EnsureDir(debianDir); err != nil {
		return err
	}

	for _, name := range names {
		if !strings.HasSuffix(name, Suffix) || excluded[name] {
			continue
		}

		src := filepath.Join(templateDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}

		rendered, err := Substitute(string(data), vars)
		if err != nil {
			return &models.RepackError{Type: models.ErrTemplate, Path: src, Err: err}
		}

		info, err := os.Stat(src)
		if err != nil {
			return err
		}

		dst := filepath.Join(debianDir, strings.TrimSuffix(name, Suffix))
		if err := utils.WriteFile(dst, []byte(rendered), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
		logrus.Debugf("Rendered %s", dst)
	}
	return nil
}
