package archive

import (
	"archive/tar"
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// TarFile is an open, possibly compressed, tar archive
type TarFile struct {
	*tar.Reader

	file    *os.File
	closers []func()
}

// OpenTar opens a tar archive, transparently decompressing gzip, bzip2, xz and zstd
func OpenTar(path string) (*TarFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	header, err := br.Peek(16)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, err
	}

	tf := &TarFile{file: f}

	var r io.Reader = br
	switch DetectCompression(header) {
	case CompressionGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		tf.closers = append(tf.closers, func() { gr.Close() })
		r = gr
	case CompressionBzip2:
		r = bzip2.NewReader(br)
	case CompressionXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		r = xr
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		tf.closers = append(tf.closers, zr.Close)
		r = zr
	}

	tf.Reader = tar.NewReader(r)
	return tf, nil
}

// Close releases the decompressor and the underlying file
func (t *TarFile) Close() error {
	for _, c := range t.closers {
		c()
	}
	return t.file.Close()
}

// IsTarball reports whether path is a readable tar archive, compressed or not
func IsTarball(path string) bool {
	tf, err := OpenTar(path)
	if err != nil {
		return false
	}
	defer tf.Close()

	_, err = tf.Next()
	return err == nil
}

// FindMembers returns the names of all regular members whose name ends with suffix
func FindMembers(path, suffix string) ([]string, error) {
	tf, err := OpenTar(path)
	if err != nil {
		return nil, err
	}
	defer tf.Close()

	var names []string
	for {
		header, err := tf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if header.Typeflag != tar.TypeReg && header.Typeflag != tar.TypeRegA {
			continue
		}
		if strings.HasSuffix(header.Name, suffix) {
			names = append(names, header.Name)
		}
	}
	return names, nil
}

// ExtractMember extracts a single member into dir and returns the written path
func ExtractMember(path, name, dir string) (string, error) {
	tf, err := OpenTar(path)
	if err != nil {
		return "", err
	}
	defer tf.Close()

	for {
		header, err := tf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		if header.Name != name {
			continue
		}

		target, err := safeJoin(dir, header.Name)
		if err != nil {
			return "", err
		}
		if err := writeRegular(target, tf, header); err != nil {
			return "", err
		}
		return target, nil
	}
	return "", fmt.Errorf("member %s not found in %s", name, path)
}

// ExtractAll extracts every member of the archive into dir
func ExtractAll(path, dir string) error {
	tf, err := OpenTar(path)
	if err != nil {
		return err
	}
	defer tf.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	count := 0
	for {
		header, err := tf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		target, err := safeJoin(dir, header.Name)
		if err != nil {
			return err
		}
		if err := checkParents(root, dir, target); err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode).Perm()|0700); err != nil {
				return err
			}
		case tar.TypeReg, tar.TypeRegA:
			if err := writeRegular(target, tf, header); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := checkLink(root, dir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := replaceable(target); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(dir, header.Linkname)
			if err != nil {
				return err
			}
			if err := checkParents(root, dir, source); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return err
			}
		default:
			logrus.Debugf("Skipping %s (unsupported tar entry type %q)", header.Name, header.Typeflag)
			continue
		}
		count++
	}

	logrus.Debugf("Extracted %d entries from %s into %s", count, path, dir)
	return nil
}

func writeRegular(target string, r io.Reader, header *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := replaceable(target); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// safeJoin joins name onto dir and refuses names escaping dir
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if !within(dir, target) {
		return "", fmt.Errorf("archive member %s escapes extraction directory", name)
	}
	return target, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkParents resolves the existing ancestors of target, which lives in dir,
// and refuses them when symlinks lead outside root, the resolved dir
func checkParents(root, dir, target string) error {
	for parent := filepath.Dir(target); within(dir, parent); parent = filepath.Dir(parent) {
		resolved, err := filepath.EvalSymlinks(parent)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if !within(root, resolved) {
			return fmt.Errorf("archive member %s escapes extraction directory through a symlink", target)
		}
		return nil
	}
	return nil
}

// checkLink refuses symlinks at target whose destination is absolute or
// resolves outside the extraction directory
func checkLink(root, dir, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %s points to absolute path %s", target, linkname)
	}
	dest := filepath.Join(filepath.Dir(target), linkname)
	if !within(dir, dest) {
		return fmt.Errorf("symlink %s escapes extraction directory", target)
	}
	if resolved, err := filepath.EvalSymlinks(dest); err == nil && !within(root, resolved) {
		return fmt.Errorf("symlink %s escapes extraction directory", target)
	}
	return nil
}

// replaceable removes a symlink already at target so the entry replaces it
// instead of writing through it
func replaceable(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(target)
}
