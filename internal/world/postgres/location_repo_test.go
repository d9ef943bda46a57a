// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

func locationColumns() []string {
	return []string{"id", "world_id", "name", "parent_id", "location_type_id", "fields", "created_at", "updated_at"}
}

func TestLocationRepository_Get(t *testing.T) {
	id := ulid.Make()
	worldID := ulid.Make()
	parentID := ulid.Make()
	typeID := ulid.Make()
	now := time.Now().UTC()

	t.Run("found with parent", func(t *testing.T) {
		mock := mockPool(t)
		parentStr := parentID.String()
		mock.ExpectQuery(`FROM locations WHERE id`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows(locationColumns()).
				AddRow(id.String(), worldID.String(), "Harbour District", &parentStr,
					typeID.String(), []byte(`{}`), now, now))

		repo := NewLocationRepository(mock)
		got, err := repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Harbour District", got.Name)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, parentID, *got.ParentID)
		assert.Equal(t, typeID, got.LocationTypeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := mockPool(t)
		mock.ExpectQuery(`FROM locations WHERE id`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows(locationColumns()))

		repo := NewLocationRepository(mock)
		_, err := repo.Get(context.Background(), id)
		require.ErrorIs(t, err, world.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLocationRepository_ParentOf(t *testing.T) {
	id := ulid.Make()
	parentID := ulid.Make()

	t.Run("has parent", func(t *testing.T) {
		mock := mockPool(t)
		parentStr := parentID.String()
		mock.ExpectQuery(`SELECT parent_id FROM locations`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow(&parentStr))

		repo := NewLocationRepository(mock)
		got, err := repo.ParentOf(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, parentID, *got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("root has nil parent", func(t *testing.T) {
		mock := mockPool(t)
		mock.ExpectQuery(`SELECT parent_id FROM locations`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow((*string)(nil)))

		repo := NewLocationRepository(mock)
		got, err := repo.ParentOf(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown location", func(t *testing.T) {
		mock := mockPool(t)
		mock.ExpectQuery(`SELECT parent_id FROM locations`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"parent_id"}))

		repo := NewLocationRepository(mock)
		_, err := repo.ParentOf(context.Background(), id)
		require.ErrorIs(t, err, world.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLocationRepository_SetParent(t *testing.T) {
	id := ulid.Make()
	parentID := ulid.Make()

	t.Run("moves under a parent", func(t *testing.T) {
		mock := mockPool(t)
		parentStr := parentID.String()
		mock.ExpectExec(`UPDATE locations SET parent_id`).
			WithArgs(id.String(), &parentStr).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewLocationRepository(mock)
		require.NoError(t, repo.SetParent(context.Background(), id, &parentID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("detaches to a root", func(t *testing.T) {
		mock := mockPool(t)
		mock.ExpectExec(`UPDATE locations SET parent_id`).
			WithArgs(id.String(), (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewLocationRepository(mock)
		require.NoError(t, repo.SetParent(context.Background(), id, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing location is not found", func(t *testing.T) {
		mock := mockPool(t)
		mock.ExpectExec(`UPDATE locations SET parent_id`).
			WithArgs(id.String(), (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewLocationRepository(mock)
		require.ErrorIs(t, repo.SetParent(context.Background(), id, nil), world.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLocationRepository_Delete(t *testing.T) {
	id := ulid.Make()

	mock := mockPool(t)
	mock.ExpectExec(`DELETE FROM access_grants`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM notes`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM locations`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewLocationRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
