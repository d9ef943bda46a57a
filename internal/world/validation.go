// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength = 100
	MaxBodyLength = 8000
	MaxTagCount   = 20
	MaxTagLength  = 50
)

// ValidateName checks that a name is non-empty, valid UTF-8, free of
// control characters, and within the length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateBody checks a note body.
func ValidateBody(body string) error {
	if body == "" {
		return &ValidationError{Field: "body", Message: "cannot be empty"}
	}
	if !utf8.ValidString(body) {
		return &ValidationError{Field: "body", Message: "must be valid UTF-8"}
	}
	if len(body) > MaxBodyLength {
		return &ValidationError{Field: "body", Message: fmt.Sprintf("exceeds maximum length of %d", MaxBodyLength)}
	}
	return nil
}

// ValidateTags checks a note's tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return &ValidationError{Field: "tags", Message: fmt.Sprintf("exceeds maximum of %d tags", MaxTagCount)}
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			return &ValidationError{Field: "tags", Message: "cannot contain empty tags"}
		}
		if len(tag) > MaxTagLength {
			return &ValidationError{Field: "tags", Message: fmt.Sprintf("tag exceeds maximum length of %d", MaxTagLength)}
		}
		if hasControlChars(tag) {
			return &ValidationError{Field: "tags", Message: "cannot contain control characters"}
		}
		if _, dup := seen[tag]; dup {
			return &ValidationError{Field: "tags", Message: fmt.Sprintf("duplicate tag %q", tag)}
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// ValidateFields checks every field value of an entity or location.
func ValidateFields(fields map[string]Value) error {
	for key, value := range fields {
		if key == "" {
			return &ValidationError{Field: "fields", Message: "cannot contain an empty field key"}
		}
		if err := value.Validate(); err != nil {
			return &ValidationError{Field: "fields." + key, Message: "invalid value"}
		}
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
