package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"

	"github.com/nibzard/mazerun/internal/utils"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed config.schema.json
var schemaJSON []byte

const schemaURL = "mem:///config.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Schema returns the embedded JSON schema describing config files.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks cfg against the schema and the cross-field rules. Every
// problem found is reported, wrapped in ErrInvalidConfig.
func Validate(cfg *Config) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	var errs error
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate config: %w", err)
		}
		collectSchemaErrors(ve, &errs)
	}

	errs = multierr.Append(errs, checkEndpoint("start", cfg.Start, cfg.Rows, cfg.Cols))
	errs = multierr.Append(errs, checkEndpoint("goal", cfg.Goal, cfg.Rows, cfg.Cols))

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// collectSchemaErrors appends one error per leaf cause.
func collectSchemaErrors(ve *jsonschema.ValidationError, errs *error) {
	if len(ve.Causes) == 0 {
		key := utils.JSONPointerToPath(ve.InstanceLocation)
		if key == "" {
			key = "config"
		}
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %s", key, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, errs)
	}
}

// checkEndpoint rejects a start or goal outside fixed maze dimensions. A
// dimension of 0 is sized at run time and checked then.
func checkEndpoint(name string, pos []int, rows, cols int) error {
	if len(pos) != 2 {
		return nil
	}
	if rows > 0 && pos[0] >= rows {
		return fmt.Errorf("%s: row %d outside %d rows", name, pos[0], rows)
	}
	if cols > 0 && pos[1] >= cols {
		return fmt.Errorf("%s: col %d outside %d cols", name, pos[1], cols)
	}
	return nil
}
