// Package snapshotfile reads and writes snapshots as TOML, YAML or JSON files.
package snapshotfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = goerr.New("unsupported snapshot file format")
	ErrInvalidFile       = goerr.New("invalid snapshot file")
)

// Format is a snapshot file encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatOf detects the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", goerr.Wrap(ErrUnsupportedFormat, "unknown file extension", goerr.V("path", path))
	}
}

// Load reads, validates and converts a snapshot file
func Load(path string) (*model.Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot file", goerr.V("path", path))
	}

	snapshot, err := Decode(data, format)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot file", goerr.V("path", path))
	}
	return snapshot, nil
}

// Decode parses and validates data in the given format
func Decode(data []byte, format Format) (*model.Snapshot, error) {
	var f File
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, goerr.Wrap(ErrInvalidFile, "failed to parse TOML", goerr.V("error", err.Error()))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, goerr.Wrap(ErrInvalidFile, "failed to parse YAML", goerr.V("error", err.Error()))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, goerr.Wrap(ErrInvalidFile, "failed to parse JSON", goerr.V("error", err.Error()))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "cannot decode", goerr.V("format", format))
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ToSnapshot(), nil
}

// Validate checks required fields and numeric ranges of every record
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return goerr.Wrap(ErrInvalidFile, "field validation failed",
			goerr.V("field", verrs[0].Namespace()),
			goerr.V("rule", verrs[0].Tag()),
			goerr.V("error_count", len(verrs)))
	}
	return goerr.Wrap(err, "failed to validate snapshot file")
}

// Encode writes the snapshot in the given format
func Encode(snapshot *model.Snapshot, format Format) ([]byte, error) {
	f := FromSnapshot(snapshot)

	switch format {
	case FormatTOML:
		data, err := toml.Marshal(f)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode TOML")
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(f)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode YAML")
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode JSON")
		}
		return data, nil
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "cannot encode", goerr.V("format", format))
	}
}

// Save writes the snapshot to path, choosing the format from the extension
func Save(path string, snapshot *model.Snapshot) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := Encode(snapshot, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write snapshot file", goerr.V("path", path))
	}
	return nil
}
