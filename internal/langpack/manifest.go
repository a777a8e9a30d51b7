// Package langpack reads the manifest of a language pack extension.
package langpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/ralt/debrepack/internal/models"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ManifestName is the WebExtension manifest at the root of an XPI
const ManifestName = "manifest.json"

// Manifest holds the language pack fields needed for packaging
type Manifest struct {
	LangpackID  string `json:"langpack_id"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`

	BrowserSpecificSettings struct {
		Gecko struct {
			ID string `json:"id"`
		} `json:"gecko"`
	} `json:"browser_specific_settings"`
}

// ExtensionID returns the gecko id naming the installed extension
func (m *Manifest) ExtensionID() string {
	return m.BrowserSpecificSettings.Gecko.ID
}

// PackageNameSuffix returns the suffix appended to the browser package name
func (m *Manifest) PackageNameSuffix() string {
	return "-l10n-" + strings.ToLower(m.LangpackID)
}

// DescriptionSuffix returns the suffix appended to the browser description
func (m *Manifest) DescriptionSuffix() string {
	return " - " + m.Description
}

const manifestSchemaID = "inmemory://langpack-manifest"

const manifestSchema = `{
  "type": "object",
  "required": ["langpack_id", "description", "browser_specific_settings"],
  "properties": {
    "langpack_id": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "browser_specific_settings": {
      "type": "object",
      "required": ["gecko"],
      "properties": {
        "gecko": {
          "type": "object",
          "required": ["id"],
          "properties": {"id": {"type": "string", "minLength": 1}}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString(manifestSchemaID, manifestSchema)

// ReadManifest reads and validates the manifest of the XPI at path
func ReadManifest(path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, models.Wrap(models.ErrInvalidInput, path, fmt.Errorf("failed to open language pack: %w", err))
	}
	defer zr.Close()

	f, err := zr.Open(ManifestName)
	if err != nil {
		return nil, models.Wrap(models.ErrInvalidInput, path, fmt.Errorf("failed to open %s: %w", ManifestName, err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, models.Wrap(models.ErrInvalidInput, path, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, models.Wrap(models.ErrInvalidInput, path, err)
	}
	return m, nil
}

// ParseManifest validates and decodes manifest JSON
func ParseManifest(data []byte) (*Manifest, error) {
	var payload any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
