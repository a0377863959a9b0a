package definition

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Loader reads relay.yaml documents from the filesystem.
type Loader struct {
	currentVersion string
}

// NewLoader creates a Loader that enforces the document's minimum-version
// field against currentVersion (a "vX.Y.Z" string).
func NewLoader(currentVersion string) *Loader {
	return &Loader{currentVersion: currentVersion}
}

// Load reads, schema-validates and decodes the document at path.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewDefinitionNotFoundError(path)
		}
		return nil, err
	}
	return l.Parse(path, data)
}

// Parse validates and decodes raw document bytes. The path is used only for
// error context.
func (l *Loader) Parse(path string, data []byte) (*Document, error) {
	// Schema validation runs against the generic YAML tree so structural
	// mistakes surface before typed decoding hides them.
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, NewYAMLParseError(path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewGoLoader(tree),
	)
	if err != nil {
		return nil, NewYAMLParseError(path, err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, NewSchemaError(path, violations)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewYAMLParseError(path, err)
	}

	if err := l.checkVersion(path, doc.Version); err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkVersion enforces the document's minimum relay version.
func (l *Loader) checkVersion(path, required string) error {
	if required == "" {
		return nil
	}
	if !semver.IsValid(required) {
		return NewInvalidDefinitionError(
			fmt.Sprintf("version %q is not a valid semantic version", required),
			`Use the form "vMAJOR.MINOR.PATCH", e.g. v0.2.0.`)
	}
	if l.currentVersion != "" && semver.Compare(required, l.currentVersion) > 0 {
		return NewVersionError(path, required, l.currentVersion)
	}
	return nil
}
