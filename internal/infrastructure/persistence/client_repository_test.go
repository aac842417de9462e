package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClient(t *testing.T, name, phone string) *ledger.Client {
	t.Helper()
	c, err := ledger.NewClient(name, phone, "")
	require.NoError(t, err)
	return c
}

// =============================================================================
// Create / FindByID
// =============================================================================

func TestGormClientRepository_CreateAndFind(t *testing.T) {
	repo := NewGormClientRepository(newSQLiteDatabase(t).DB)
	ctx := context.Background()

	client := mustClient(t, "Doña Rosa", "555-0101")
	require.NoError(t, repo.Create(ctx, client))

	found, err := repo.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, found.ID)
	assert.Equal(t, "Doña Rosa", found.Name)
	assert.Equal(t, "555-0101", found.Phone)
	assert.Equal(t, 1, found.Version)
	assert.True(t, found.DeudaActual.IsZero())
	assert.Nil(t, found.UltimaTransaccion)
	assert.Empty(t, found.GetDomainEvents())
}

func TestGormClientRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormClientRepository(newSQLiteDatabase(t).DB)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormClientRepository_Create_Duplicate(t *testing.T) {
	repo := NewGormClientRepository(newSQLiteDatabase(t).DB)
	ctx := context.Background()

	client := mustClient(t, "Juan", "")
	require.NoError(t, repo.Create(ctx, client))

	err := repo.Create(ctx, client)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

// =============================================================================
// Save (optimistic locking)
// =============================================================================

func TestGormClientRepository_Save(t *testing.T) {
	t.Run("persists derived balance including zero values", func(t *testing.T) {
		repo := NewGormClientRepository(newSQLiteDatabase(t).DB)
		ctx := context.Background()

		client := mustClient(t, "Ana", "")
		require.NoError(t, repo.Create(ctx, client))

		last := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		client.DeudaActual = decimal.RequireFromString("150.50")
		client.UltimaTransaccion = &last
		client.IncrementVersion()
		require.NoError(t, repo.Save(ctx, client))

		found, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, found.DeudaActual.Equal(decimal.RequireFromString("150.50")))
		require.NotNil(t, found.UltimaTransaccion)
		assert.True(t, found.UltimaTransaccion.Equal(last))
		assert.Equal(t, 2, found.Version)

		found.DeudaActual = decimal.Zero
		found.UltimaTransaccion = nil
		found.IncrementVersion()
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, again.DeudaActual.IsZero())
		assert.Nil(t, again.UltimaTransaccion)
		assert.Equal(t, 3, again.Version)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		repo := NewGormClientRepository(newSQLiteDatabase(t).DB)
		ctx := context.Background()

		client := mustClient(t, "Pedro", "")
		require.NoError(t, repo.Create(ctx, client))

		first, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)

		require.NoError(t, first.Update("Pedro P.", "", ""))
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.Update("Pedro Pérez", "", ""))
		err = repo.Save(ctx, second)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("issues versioned update", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormClientRepository(db.DB)

		client := mustClient(t, "Luz", "")
		client.IncrementVersion()

		mock.ExpectExec(`UPDATE "clients" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), client)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates driver errors", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormClientRepository(db.DB)

		client := mustClient(t, "Luz", "")
		client.IncrementVersion()

		mock.ExpectExec(`UPDATE "clients"`).WillReturnError(errors.New("connection reset"))

		err := repo.Save(context.Background(), client)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

// =============================================================================
// List
// =============================================================================

func TestGormClientRepository_List(t *testing.T) {
	repo := NewGormClientRepository(newSQLiteDatabase(t).DB)
	ctx := context.Background()

	for i, name := range []string{"Carla", "alberto", "Beatriz", "Alicia"} {
		c := mustClient(t, name, "")
		c.DeudaActual = decimal.NewFromInt(int64(i * 10))
		require.NoError(t, repo.Create(ctx, c))
	}

	names := func(cs []ledger.Client) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	tests := []struct {
		name      string
		filter    ledger.ClientFilter
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "search is case insensitive",
			filter:    ledger.ClientFilter{Search: "AL"},
			wantNames: []string{"Alicia", "alberto"},
			wantTotal: 2,
		},
		{
			name:      "orders by balance descending",
			filter:    ledger.ClientFilter{OrderBy: "deudaActual", OrderDir: "desc"},
			wantNames: []string{"Alicia", "Beatriz", "alberto", "Carla"},
			wantTotal: 4,
		},
		{
			name:      "paginates",
			filter:    ledger.ClientFilter{OrderBy: "deuda_actual", OrderDir: "asc", Page: 2, PageSize: 3},
			wantNames: []string{"Alicia"},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantNames, names(clients))
		})
	}
}
