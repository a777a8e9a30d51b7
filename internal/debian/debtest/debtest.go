// Package debtest writes minimal binary packages for tests.
package debtest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/archive/archivetest"
)

// Control returns a control file for the given package identity
func Control(name, version, arch string) string {
	return fmt.Sprintf("Package: %s\nVersion: %s\nArchitecture: %s\nMaintainer: Mozilla <release@mozilla.com>\nDepends: libc6, libgtk-3-0\nDescription: %s test package\n multi-line\n", name, version, arch, name)
}

// WriteDeb writes a .deb holding control in a control.tar compressed with c
func WriteDeb(path, control string, c archive.Compression) error {
	controlTar, err := archivetest.Tar([]archivetest.File{{Name: "./control", Body: control}})
	if err != nil {
		return err
	}
	controlTar, err = archivetest.Compress(controlTar, c)
	if err != nil {
		return err
	}
	dataTar, err := archivetest.Tar(nil)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("!<arch>\n")
	addMember(&buf, "debian-binary", []byte("2.0\n"))
	addMember(&buf, "control.tar"+extension(c), controlTar)
	addMember(&buf, "data.tar", dataTar)
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func addMember(buf *bytes.Buffer, name string, data []byte) {
	fmt.Fprintf(buf, "%-16s%-12d%-6d%-6d%-8s%-10d`\n", name, 0, 0, 0, "100644", len(data))
	buf.Write(data)
	if len(data)%2 != 0 {
		buf.WriteByte('\n')
	}
}

func extension(c archive.Compression) string {
	switch c {
	case archive.CompressionGzip:
		return ".gz"
	case archive.CompressionXz:
		return ".xz"
	case archive.CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}
