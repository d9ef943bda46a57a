// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"sort"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// Field keys used for the fixed (non schema-defined) attributes in
// audit diffs.
const (
	fieldKeyName   = "name"
	fieldKeyKind   = "kind"
	fieldKeyParent = "parent_id"
)

// EntityChanges computes the audit diff between two entity revisions.
// Returns nil when nothing changed.
func EntityChanges(old, updated *Entity) []access.FieldChange {
	var changes []access.FieldChange
	if old.Name != updated.Name {
		changes = append(changes, access.FieldChange{FieldKey: fieldKeyName, Label: "Name", From: old.Name, To: updated.Name})
	}
	if old.Kind != updated.Kind {
		changes = append(changes, access.FieldChange{FieldKey: fieldKeyKind, Label: "Kind", From: old.Kind, To: updated.Kind})
	}
	return append(changes, fieldDiffs(old.Fields, updated.Fields)...)
}

// LocationChanges computes the audit diff between two location revisions.
func LocationChanges(old, updated *Location) []access.FieldChange {
	var changes []access.FieldChange
	if old.Name != updated.Name {
		changes = append(changes, access.FieldChange{FieldKey: fieldKeyName, Label: "Name", From: old.Name, To: updated.Name})
	}
	if !ulidPtrEqual(old.ParentID, updated.ParentID) {
		changes = append(changes, access.FieldChange{
			FieldKey: fieldKeyParent,
			Label:    "Parent",
			From:     ulidPtrString(old.ParentID),
			To:       ulidPtrString(updated.ParentID),
		})
	}
	return append(changes, fieldDiffs(old.Fields, updated.Fields)...)
}

// fieldDiffs diffs two schema-defined field maps, in sorted key order so
// audit payloads are deterministic.
func fieldDiffs(old, updated map[string]Value) []access.FieldChange {
	keys := make(map[string]struct{}, len(old)+len(updated))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range updated {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []access.FieldChange
	for _, key := range sorted {
		before, hadBefore := old[key]
		after, hasAfter := updated[key]
		if hadBefore && hasAfter && before.Equal(after) {
			continue
		}
		if !hadBefore && !hasAfter {
			continue
		}
		change := access.FieldChange{FieldKey: key, Label: key}
		if hadBefore {
			change.From = before.String()
		}
		if hasAfter {
			change.To = after.String()
		}
		changes = append(changes, change)
	}
	return changes
}
