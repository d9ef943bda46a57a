// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"fmt"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// The domain shares one error taxonomy with the access engine so callers
// match a single set of sentinels regardless of which layer failed.
var (
	ErrNotFound       = access.ErrNotFound
	ErrForbidden      = access.ErrForbidden
	ErrInvalidRequest = access.ErrInvalidRequest
)

// ValidationError reports one invalid input field. It unwraps to
// ErrInvalidRequest so errors.Is works across the taxonomy.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }
