package debian

import (
	"archive/tar"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	arMagic      = "!<arch>\n"
	arHeaderSize = 60
)

// Control holds the fields of a binary package control file
type Control struct {
	Package      string
	Version      string
	Architecture string
	Depends      []string
	Description  string
	Fields       map[string]string
}

// Inspect reads the control file of the .deb at path
func Inspect(path string) (*Control, error) {
	data, err := extractControl(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract control: %w", err)
	}

	control, err := parseControl(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse control: %w", err)
	}
	return control, nil
}

// Verify checks that the package identity matches what was requested
func (c *Control) Verify(name, version, arch string) error {
	var mismatches []string
	if c.Package != name {
		mismatches = append(mismatches, fmt.Sprintf("Package %q != %q", c.Package, name))
	}
	if c.Version != version {
		mismatches = append(mismatches, fmt.Sprintf("Version %q != %q", c.Version, version))
	}
	if c.Architecture != arch {
		mismatches = append(mismatches, fmt.Sprintf("Architecture %q != %q", c.Architecture, arch))
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("package control mismatch: %s", strings.Join(mismatches, ", "))
	}
	return nil
}

// extractControl extracts the control file from a .deb package
func extractControl(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// .deb files are ar archives
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("failed to read ar magic: %w", err)
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("%s is not an ar archive", path)
	}

	header := make([]byte, arHeaderSize)
	for {
		if _, err := io.ReadFull(f, header); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read ar header: %w", err)
		}

		// Member names are space padded, GNU ar appends a slash
		name := strings.TrimRight(strings.TrimSpace(string(header[0:16])), "/")
		size, err := strconv.ParseInt(strings.TrimSpace(string(header[48:58])), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size for ar member %s: %w", name, err)
		}

		if strings.HasPrefix(name, "control.tar") {
			data := make([]byte, size)
			if _, err := io.ReadFull(f, data); err != nil {
				return nil, err
			}
			return extractControlFromTar(data, name)
		}

		// Members are aligned to 2 bytes
		if size%2 != 0 {
			size++
		}
		if _, err := f.Seek(size, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("control.tar not found in package")
}

// extractControlFromTar extracts the control file from control.tar*
func extractControlFromTar(data []byte, name string) ([]byte, error) {
	var r io.Reader = bytes.NewReader(data)

	switch {
	case strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		r = xr
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == "./control" || header.Name == "control" {
			return io.ReadAll(tr)
		}
	}

	return nil, fmt.Errorf("control file not found in %s", name)
}

// parseControl parses the Debian control file format
func parseControl(data []byte) (*Control, error) {
	control := &Control{Fields: make(map[string]string)}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var currentKey string
	var currentValue strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		// Continuation lines start with whitespace
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			currentValue.WriteString("\n")
			currentValue.WriteString(strings.TrimSpace(line))
			continue
		}

		if currentKey != "" {
			control.set(currentKey, currentValue.String())
		}

		currentKey = ""
		if key, value, ok := strings.Cut(line, ":"); ok {
			currentKey = strings.TrimSpace(key)
			currentValue.Reset()
			currentValue.WriteString(strings.TrimSpace(value))
		}
	}

	if currentKey != "" {
		control.set(currentKey, currentValue.String())
	}

	return control, scanner.Err()
}

func (c *Control) set(key, value string) {
	c.Fields[key] = value
	switch key {
	case "Package":
		c.Package = value
	case "Version":
		c.Version = value
	case "Architecture":
		c.Architecture = value
	case "Description":
		c.Description = value
	case "Depends":
		for _, dep := range strings.Split(value, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				c.Depends = append(c.Depends, dep)
			}
		}
	}
}
