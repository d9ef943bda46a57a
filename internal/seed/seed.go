// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package seed provides the default-grant profiles stamped onto newly
// created resources. Profiles ship as embedded YAML validated against
// an embedded JSON schema; operators can validate their own profile
// files with the same schema through the validate-seeds command.
package seed

import (
	"encoding/json"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	_ "embed"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

//go:embed profiles.yaml
var profilesYAML []byte

//go:embed schema.json
var schemaJSON []byte

// DefaultProfile is the profile applied when configuration names none.
const DefaultProfile = "standard"

// Profile is one named set of default-grant templates.
type Profile struct {
	Entity   []access.GrantTemplate `yaml:"entity"`
	Location []access.GrantTemplate `yaml:"location"`
}

// DefaultGrants projects the profile into the world service's form.
func (p Profile) DefaultGrants() world.DefaultGrants {
	return world.DefaultGrants{Entity: p.Entity, Location: p.Location}
}

var (
	schemaOnce sync.Once
	schema     *jschema.Schema
	schemaErr  error
)

// compiledSchema compiles the embedded schema once.
func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaData any
		if err := json.Unmarshal(schemaJSON, &schemaData); err != nil {
			schemaErr = oops.Code("SEED_SCHEMA_INVALID").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("schema.json", schemaData); err != nil {
			schemaErr = oops.Code("SEED_SCHEMA_INVALID").Wrap(err)
			return
		}
		schema, schemaErr = c.Compile("schema.json")
	})
	return schema, schemaErr
}

// Validate checks profile YAML against the embedded schema.
func Validate(data []byte) error {
	if len(data) == 0 {
		return oops.Code("SEED_INVALID").Errorf("profile data is empty")
	}

	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return oops.Code("SEED_INVALID").Wrapf(err, "invalid YAML")
	}
	jsonData := toJSONTypes(yamlData)

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(jsonData); err != nil {
		return oops.Code("SEED_INVALID").Wrapf(err, "schema validation failed")
	}
	return nil
}

// Parse validates and decodes profile YAML. Every template's access and
// scope types are checked beyond the schema.
func Parse(data []byte) (map[string]Profile, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	profiles := map[string]Profile{}
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}
	for name, p := range profiles {
		for _, t := range append(append([]access.GrantTemplate{}, p.Entity...), p.Location...) {
			if err := t.Validate(); err != nil {
				return nil, oops.Code("SEED_INVALID").With("profile", name).Wrap(err)
			}
		}
	}
	return profiles, nil
}

// Profiles returns the embedded profile set.
func Profiles() (map[string]Profile, error) {
	return Parse(profilesYAML)
}

// Load resolves one named profile from the embedded set. An empty name
// selects DefaultProfile.
func Load(name string) (world.DefaultGrants, error) {
	if name == "" {
		name = DefaultProfile
	}
	profiles, err := Profiles()
	if err != nil {
		return world.DefaultGrants{}, err
	}
	p, ok := profiles[name]
	if !ok {
		return world.DefaultGrants{}, oops.Code("SEED_UNKNOWN_PROFILE").
			With("profile", name).Errorf("unknown seed profile %q", name)
	}
	return p.DefaultGrants(), nil
}

// toJSONTypes converts YAML-parsed values into JSON-compatible types
// for schema validation.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = toJSONTypes(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = toJSONTypes(item)
		}
		return result
	default:
		return val
	}
}
