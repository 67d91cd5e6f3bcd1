package mockapi

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abdesslem/cds/internal/domain"
)

// exportDocument is the textual pipeline format. Permissions only appear when
// the export asked for them.
type exportDocument struct {
	Version         string `yaml:"version"`
	domain.Pipeline `yaml:",inline"`
	Permissions     map[string]string `yaml:"permissions,omitempty"`
}

const formatVersion = "v1.0"

// parseDefinition decodes a textual pipeline. Unknown fields are rejected so
// typos surface as a 400 rather than being silently dropped.
func parseDefinition(data []byte) (domain.Pipeline, error) {
	var doc exportDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return domain.Pipeline{}, fmt.Errorf("parsing pipeline: %w", err)
	}
	if doc.Version != "" && doc.Version != formatVersion {
		return domain.Pipeline{}, fmt.Errorf("unsupported version %q", doc.Version)
	}
	return doc.Pipeline, nil
}

// renderDefinition encodes a pipeline into its textual format.
func renderDefinition(pip domain.Pipeline, permissions map[string]string) ([]byte, error) {
	doc := exportDocument{
		Version:     formatVersion,
		Pipeline:    pip,
		Permissions: permissions,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("rendering pipeline: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
