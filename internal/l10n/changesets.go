package l10n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultLocale is always resolved first and backs every other locale
const DefaultLocale = "en-US"

// Changeset is the translation revision of one locale
type Changeset struct {
	Revision  string   `json:"revision"`
	Platforms []string `json:"platforms"`
	Pin       bool     `json:"pin,omitempty"`
}

const changesetsSchemaID = "inmemory://l10n-changesets"

// Locale codes name directories under the work dir and are restricted to
// language tags
const changesetsSchema = `{
  "type": "object",
  "propertyNames": {"pattern": "^[a-zA-Z]{2,3}(-[A-Za-z0-9]+)*$"},
  "additionalProperties": {
    "type": "object",
    "required": ["revision", "platforms"],
    "properties": {
      "revision": {"type": "string", "minLength": 1},
      "platforms": {"type": "array", "items": {"type": "string"}},
      "pin": {"type": "boolean"}
    }
  }
}`

func validateChangesets(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(changesetsSchemaID, strings.NewReader(changesetsSchema)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(changesetsSchemaID)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var payload any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return fmt.Errorf("decode changesets: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// LoadChangesets reads the changeset manifest at path and keeps the locales
// shipped on a platform starting with platformPrefix
func LoadChangesets(path, platformPrefix string) (map[string]Changeset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateChangesets(data); err != nil {
		return nil, fmt.Errorf("invalid changesets %s: %w", path, err)
	}

	var all map[string]Changeset
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	filtered := make(map[string]Changeset, len(all))
	for locale, cs := range all {
		for _, platform := range cs.Platforms {
			if strings.HasPrefix(platform, platformPrefix) {
				filtered[locale] = cs
				break
			}
		}
	}
	return filtered, nil
}

// OrderedLocales returns the default locale followed by the other locales of
// changesets in sorted order
func OrderedLocales(changesets map[string]Changeset) []string {
	locales := make([]string, 0, len(changesets)+1)
	for locale := range changesets {
		if locale != DefaultLocale {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)
	return append([]string{DefaultLocale}, locales...)
}
