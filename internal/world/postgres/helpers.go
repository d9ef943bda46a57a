// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package postgres implements the world repositories over PostgreSQL.
// All methods join an enclosing transaction when the context carries
// one, via store.QuerierFrom.
package postgres

import (
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL parameters.
// Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer into a ULID pointer.
// Returns nil if the input is nil. Wraps parse errors with the field name for context.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// encodeFields marshals a schema field map for the JSONB column. A nil
// map persists as an empty object.
func encodeFields(fields map[string]world.Value) ([]byte, error) {
	if fields == nil {
		fields = map[string]world.Value{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, oops.With("operation", "encode fields").Wrap(err)
	}
	return raw, nil
}

// decodeFields unmarshals the JSONB column back into the field map.
func decodeFields(raw []byte) (map[string]world.Value, error) {
	fields := map[string]world.Value{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, oops.With("operation", "decode fields").Wrap(err)
	}
	return fields, nil
}
