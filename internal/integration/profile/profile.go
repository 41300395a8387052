// Package profile loads import profiles: YAML files holding an import configuration, so a
// recurring statement can be imported from the command line without restating its mappings.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finance-tracker/importer/internal/domain/entity"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/dto"
)

// Parse decodes a profile. Unknown keys are rejected so a misspelt mapping does not go unnoticed.
func Parse(data []byte) (*entity.ImportConfiguration, error) {
	var req dto.ImportConfigurationRequest

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("profile is empty")
		}
		return nil, fmt.Errorf("failed to parse profile (check syntax, indentation, and field names): %w", err)
	}

	cfg, err := req.ToEntity()
	if err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads and decodes the profile at path.
func LoadFromFile(path string) (*entity.ImportConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile from %q: %w", path, err)
	}
	return cfg, nil
}
