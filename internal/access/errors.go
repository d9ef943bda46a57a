// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import "errors"

// Sentinel errors for the three terminal conditions the engine raises.
// The route layer is solely responsible for translating them into
// transport responses; per spec, Forbidden must surface identically for
// "does not exist" and "exists but denied" so callers cannot probe for
// existence.
var (
	// ErrNotFound indicates a resource or referenced scope entity
	// (campaign, character) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller lacks read or write authority.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRequest indicates a malformed request: an illegal
	// visibility/context combination, a reparent that would create a
	// cycle, or a share list naming an off-roster character.
	ErrInvalidRequest = errors.New("invalid request")
)

// Error codes attached via oops for structured propagation.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeForbidden      = "FORBIDDEN"
	CodeInvalidRequest = "INVALID_REQUEST"
)
