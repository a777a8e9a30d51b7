package archive_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/archive/archivetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = []archivetest.File{
	{Name: "firefox/application.ini", Body: "[App]\nName=Firefox\n"},
	{Name: "firefox/firefox", Body: "#!/bin/sh\n", Mode: 0755},
	{Name: "firefox/browser/omni.ja", Body: "omni"},
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   archive.Compression
	}{
		{"gzip", []byte{0x1F, 0x8B, 0x08}, archive.CompressionGzip},
		{"bzip2", []byte("BZh91AY"), archive.CompressionBzip2},
		{"xz", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00, 0x00}, archive.CompressionXz},
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, archive.CompressionZstd},
		{"plain", []byte("firefox/"), archive.CompressionNone},
		{"empty", nil, archive.CompressionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, archive.DetectCompression(tt.header))
		})
	}
}

func TestOpenTarCompressions(t *testing.T) {
	for _, c := range []archive.Compression{
		archive.CompressionNone,
		archive.CompressionGzip,
		archive.CompressionXz,
		archive.CompressionZstd,
	} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in.tar")
			require.NoError(t, archivetest.WriteTarball(path, fixture, c))

			detected, err := archive.DetectFileCompression(path)
			require.NoError(t, err)
			assert.Equal(t, c, detected)
			assert.True(t, archive.IsTarball(path))

			names, err := archive.FindMembers(path, "/application.ini")
			require.NoError(t, err)
			assert.Equal(t, []string{"firefox/application.ini"}, names)
		})
	}
}

func TestIsTarballRejectsOtherFiles(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("definitely not a tarball"), 0644))
	assert.False(t, archive.IsTarball(text))

	zipPath := filepath.Join(dir, "a.zip")
	require.NoError(t, archivetest.WriteZip(zipPath, fixture))
	assert.False(t, archive.IsTarball(zipPath))

	assert.False(t, archive.IsTarball(filepath.Join(dir, "missing.tar")))
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tar.xz")
	require.NoError(t, archivetest.WriteTarball(path, fixture, archive.CompressionXz))

	out := filepath.Join(dir, "out")
	require.NoError(t, archive.ExtractAll(path, out))

	var got []string
	err := filepath.Walk(out, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(out, p)
			got = append(got, rel)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{"firefox/application.ini", "firefox/browser/omni.ja", "firefox/firefox"}, got)

	info, err := os.Stat(filepath.Join(out, "firefox", "firefox"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestExtractAllRefusesTraversal(t *testing.T) {
	outside := t.TempDir()

	for name, files := range map[string][]archivetest.File{
		"parent name": {
			{Name: "../../escape", Body: "x"},
		},
		"absolute symlink": {
			{Name: "firefox/link", Linkname: outside},
			{Name: "firefox/link/evil", Body: "x"},
		},
		"relative symlink": {
			{Name: "firefox/link", Linkname: "../../escape"},
			{Name: "firefox/link/evil", Body: "x"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "evil.tar")
			require.NoError(t, archivetest.WriteTarball(path, files, archive.CompressionNone))

			err := archive.ExtractAll(path, filepath.Join(dir, "out"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "extraction directory")
			assert.NoFileExists(t, filepath.Join(outside, "evil"))
		})
	}
}

func TestExtractAllRefusesExistingSymlinkParent(t *testing.T) {
	outside := t.TempDir()
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "firefox"), 0755))
	require.NoError(t, os.Symlink(outside, filepath.Join(out, "firefox", "link")))

	path := filepath.Join(dir, "in.tar")
	require.NoError(t, archivetest.WriteTarball(path, []archivetest.File{
		{Name: "firefox/link/evil", Body: "x"},
	}, archive.CompressionNone))

	err := archive.ExtractAll(path, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "through a symlink")
	assert.NoFileExists(t, filepath.Join(outside, "evil"))
}

func TestExtractAllKeepsInternalSymlinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tar")
	require.NoError(t, archivetest.WriteTarball(path, []archivetest.File{
		{Name: "firefox/libxul.so", Body: "elf"},
		{Name: "firefox/lib/libxul.so", Linkname: "../libxul.so"},
	}, archive.CompressionNone))

	out := filepath.Join(dir, "out")
	require.NoError(t, archive.ExtractAll(path, out))

	data, err := os.ReadFile(filepath.Join(out, "firefox", "lib", "libxul.so"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
}

func TestExtractMember(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tar.gz")
	require.NoError(t, archivetest.WriteTarball(path, fixture, archive.CompressionGzip))

	written, err := archive.ExtractMember(path, "firefox/application.ini", filepath.Join(dir, "scratch"))
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "[App]\nName=Firefox\n", string(data))

	_, err = archive.ExtractMember(path, "firefox/missing", filepath.Join(dir, "scratch"))
	assert.Error(t, err)
}
