// Package archivetest builds tar and zip fixtures for tests.
package archivetest

import (
	"archive/tar"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/debrepack/internal/archive"
	"github.com/ulikunitz/xz"
)

// File is a regular file entry, or a symlink when Linkname is set;
// directories are implied by the name.
type File struct {
	Name     string
	Body     string
	Mode     int64
	Linkname string
}

// Tar returns an uncompressed tar stream holding files.
func Tar(files []File) ([]byte, error) {
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, f := range files {
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &tar.Header{
			Name:     f.Name,
			Mode:     mode,
			Size:     int64(len(f.Body)),
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}
		if f.Linkname != "" {
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = f.Linkname
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := io.WriteString(tw, f.Body); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compress wraps data in the requested compression.
func Compress(data []byte, c archive.Compression) ([]byte, error) {
	buf := new(bytes.Buffer)
	var w io.WriteCloser
	var err error
	switch c {
	case archive.CompressionGzip:
		w = gzip.NewWriter(buf)
	case archive.CompressionXz:
		w, err = xz.NewWriter(buf)
	case archive.CompressionZstd:
		w, err = zstd.NewWriter(buf)
	default:
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTarball writes files as a tarball at path.
func WriteTarball(path string, files []File, c archive.Compression) error {
	data, err := Tar(files)
	if err != nil {
		return err
	}
	data, err = Compress(data, c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteZip writes files as a zip archive at path.
func WriteZip(path string, files []File) error {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range files {
		fw, err := zw.Create(f.Name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(fw, f.Body); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
